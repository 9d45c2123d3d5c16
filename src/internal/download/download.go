// Package download turns a file on disk into an attachment response.
//
// Open validates the file and resolves its headers from an open
// descriptor; Response.Write then streams that descriptor to an
// http.ResponseWriter. The caller closes the Response.
package download

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/hashing"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/utils"
)

const DefaultContentType = "application/octet-stream"

var mimeRegexp = regexp.MustCompile(`\A\S+?/\S+`)

// Response describes a file ready to be sent as an attachment. It holds
// the descriptor Open read the headers from, so the body always matches
// them even if the path is replaced afterwards. Close releases it.
type Response struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
	ETag        string

	file *os.File
}

// Open checks that path is a readable file and resolves its headers.
// contentType overrides detection when non-empty; anything that does not
// look like "type/subtype" falls back to application/octet-stream.
func Open(path, contentType string) (*Response, error) {
	if !utils.IsReadableFile(path) {
		return nil, errors.NewInvalidPathError(path, nil)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInvalidPathError(path, err)
	}
	resp, err := describe(f, path, contentType)
	if err != nil {
		utils.CloseOrWarn(f)
		return nil, err
	}
	return resp, nil
}

func describe(f *os.File, path, contentType string) (*Response, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, errors.NewInvalidPathError(path, err)
	}
	if info.IsDir() {
		return nil, errors.NewInvalidPathError(path, nil)
	}
	size := info.Size()

	if contentType == "" {
		if mime, err := mimetype.DetectReader(io.NewSectionReader(f, 0, size)); err == nil {
			contentType = mime.String()
		} else {
			log.Debugf("MIME detection failed for %s: %v", path, err)
		}
	}
	if !mimeRegexp.MatchString(contentType) {
		contentType = DefaultContentType
	}

	proxy := hashing.NewMD5ReaderProxy(io.NewSectionReader(f, 0, size))
	if _, err := io.Copy(io.Discard, proxy); err != nil {
		return nil, errors.NewInvalidPathError(path, err)
	}
	checksum, _ := proxy.GetChecksum()

	return &Response{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        size,
		ModTime:     info.ModTime(),
		ETag:        `"` + checksum + `"`,
		file:        f,
	}, nil
}

// Close releases the descriptor. Write fails with INVALID_PATH afterwards.
func (r *Response) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Header returns the response headers.
func (r *Response) Header() http.Header {
	h := http.Header{}
	h.Set("Content-Type", r.ContentType)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Length", strconv.FormatInt(r.Size, 10))
	h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, r.Name))
	h.Set("Connection", "close")
	h.Set("ETag", r.ETag)
	h.Set("Last-Modified", r.ModTime.UTC().Format(http.TimeFormat))
	return h
}

// Write sends the headers and streams the opened file. HEAD requests and
// requests whose If-None-Match matches the ETag get headers only. Write may
// be called more than once before Close.
func (r *Response) Write(w http.ResponseWriter, req *http.Request) error {
	if r.file == nil {
		return errors.NewInvalidPathError(r.Path, os.ErrClosed)
	}

	for k, vs := range r.Header() {
		w.Header()[k] = vs
	}

	if req != nil && req.Header.Get("If-None-Match") == r.ETag {
		w.Header().Del("Content-Length")
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	w.WriteHeader(http.StatusOK)
	if req != nil && req.Method == http.MethodHead {
		return nil
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	if _, err := io.Copy(w, io.NewSectionReader(r.file, 0, r.Size)); err != nil {
		return errors.NewInternalError("failed to stream file", err)
	}
	return nil
}
