package download

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/hashing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpen_NotReadable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.csv")

	_, err := Open(missing, "")
	if !errors.IsCode(err, errors.ErrCodeInvalidPath) {
		t.Fatalf("expected INVALID_PATH, got %v", err)
	}
	var derr *errors.Error
	if e, ok := err.(*errors.Error); ok {
		derr = e
	}
	if derr == nil || derr.Message != "File not readable: "+missing {
		t.Errorf("unexpected message: %v", err)
	}

	if _, err := Open(t.TempDir(), ""); !errors.IsCode(err, errors.ErrCodeInvalidPath) {
		t.Errorf("directory must be rejected, got %v", err)
	}
}

func TestOpen_ContentType(t *testing.T) {
	path := writeFile(t, "googlebot_ip_list.csv", "66.249.64.0/27\n157.55.39.0/24")

	tests := []struct {
		name     string
		override string
		want     string
	}{
		{"detected", "", "text/plain"},
		{"override", "text/csv", "text/csv"},
		{"invalid override", "csv", DefaultContentType},
		{"whitespace override", " /x", DefaultContentType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Open(path, tt.override)
			if err != nil {
				t.Fatalf("Open() error: %v", err)
			}
			defer resp.Close()
			if !strings.HasPrefix(resp.ContentType, tt.want) {
				t.Errorf("ContentType = %q, want %q", resp.ContentType, tt.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	content := "203.0.113.0/24\n2001:db8::/32"
	path := writeFile(t, "list.csv", content)

	resp, err := Open(path, "")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Close()

	rec := httptest.NewRecorder()
	if err := resp.Write(rec, httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Body.String() != content {
		t.Errorf("body = %q", rec.Body.String())
	}

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"Content-Length":         "28",
		"Content-Disposition":    `attachment; filename="list.csv"`,
		"Connection":             "close",
		"ETag":                   resp.ETag,
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("header %s = %q, want %q", k, got, v)
		}
	}
	if rec.Header().Get("Content-Type") == "" {
		t.Errorf("missing Content-Type")
	}
}

func TestWrite_ConditionalAndHead(t *testing.T) {
	path := writeFile(t, "list.csv", "10.0.0.0/8")
	resp, err := Open(path, "")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Close()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", resp.ETag)
	rec := httptest.NewRecorder()
	if err := resp.Write(rec, req); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotModified || rec.Body.Len() != 0 {
		t.Errorf("expected 304 without body, got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	if err := resp.Write(rec, httptest.NewRequest(http.MethodHead, "/", nil)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("expected HEAD to send headers only, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestWrite_FileReplacedAfterOpen(t *testing.T) {
	path := writeFile(t, "list.csv", "2.2.2.0/24")
	resp, err := Open(path, "")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Close()

	// Same swap the artifact writer does: write a sibling, rename over.
	next := filepath.Join(filepath.Dir(path), "list.csv.tmp")
	if err := os.WriteFile(next, []byte("1.1.1.0/24\n2.2.2.0/24\n3.3.3.0/24"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(next, path); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	if err := resp.Write(rec, httptest.NewRequest(http.MethodGet, "/", nil)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if rec.Body.String() != "2.2.2.0/24" {
		t.Errorf("body = %q, want the content Open described", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Length"); got != strconv.Itoa(rec.Body.Len()) {
		t.Errorf("Content-Length = %s, body has %d bytes", got, rec.Body.Len())
	}
	if rec.Header().Get("ETag") != `"`+hashing.ChecksumOf(rec.Body.Bytes())+`"` {
		t.Errorf("ETag %s does not match the body", rec.Header().Get("ETag"))
	}

	fresh, err := Open(path, "")
	if err != nil {
		t.Fatal(err)
	}
	defer fresh.Close()
	if fresh.Size != 32 || fresh.ETag == resp.ETag {
		t.Errorf("reopening must describe the new file, got size %d etag %s", fresh.Size, fresh.ETag)
	}
}

func TestWrite_FileRemovedAfterOpen(t *testing.T) {
	path := writeFile(t, "list.csv", "10.0.0.0/8")
	resp, err := Open(path, "")
	if err != nil {
		t.Fatal(err)
	}
	os.Remove(path)

	rec := httptest.NewRecorder()
	if err := resp.Write(rec, nil); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if rec.Body.String() != "10.0.0.0/8" {
		t.Errorf("body = %q", rec.Body.String())
	}

	if err := resp.Close(); err != nil {
		t.Fatal(err)
	}
	err = resp.Write(httptest.NewRecorder(), nil)
	if !errors.IsCode(err, errors.ErrCodeInvalidPath) {
		t.Errorf("expected INVALID_PATH after Close, got %v", err)
	}
}
