package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
)

func TestFetchAll_Empty(t *testing.T) {
	results := New().FetchAll(context.Background(), nil)
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil result slice, got %#v", results)
	}
}

func TestFetchAll_PreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Earlier requests answer later.
		delay, _ := time.ParseDuration(r.URL.Query().Get("delay"))
		time.Sleep(delay)
		fmt.Fprint(w, r.URL.Path)
	}))
	defer server.Close()

	var reqs []Request
	for i := 0; i < 5; i++ {
		reqs = append(reqs, Request{
			URL: fmt.Sprintf("%s/item%d?delay=%dms", server.URL, i, (5-i)*10),
		})
	}

	results := New().FetchAll(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("result %d has index %d", i, res.Index)
		}
		if want := fmt.Sprintf("/item%d", i); string(res.Body) != want {
			t.Errorf("result %d body = %q, want %q", i, res.Body, want)
		}
		if !res.OK() {
			t.Errorf("result %d not OK: %d %v", i, res.StatusCode, res.Err)
		}
	}
}

func TestFetchAll_PartialFailure(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"prefixes":[]}`)
	}))
	defer ok.Close()

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL + "/gone.json"
	dead.Close()

	results := New().FetchAll(context.Background(), []Request{
		{URL: deadURL},
		{URL: notFound.URL + "/missing.json"},
		{URL: ok.URL + "/ok.json"},
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	if results[0].StatusCode != 0 || len(results[0].Body) != 0 {
		t.Errorf("transport failure should have status 0 and no body, got %d %q", results[0].StatusCode, results[0].Body)
	}
	if !errors.IsCode(results[0].Err, errors.ErrCodeTransport) {
		t.Errorf("expected transport error, got %v", results[0].Err)
	}
	if results[0].URL != deadURL {
		t.Errorf("failed result should keep the requested URL, got %s", results[0].URL)
	}

	if results[1].StatusCode != http.StatusNotFound || results[1].Err != nil {
		t.Errorf("expected 404 without error, got %d %v", results[1].StatusCode, results[1].Err)
	}
	if results[1].OK() {
		t.Errorf("404 must not be OK")
	}

	if !results[2].OK() || string(results[2].Body) != `{"prefixes":[]}` {
		t.Errorf("unexpected healthy result: %+v", results[2])
	}
}

func TestFetchAll_Redirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var hops int
		fmt.Sscanf(r.URL.Path, "/hop/%d", &hops)
		if hops > 0 {
			http.Redirect(w, r, fmt.Sprintf("%s/hop/%d", server.URL, hops-1), http.StatusFound)
			return
		}
		fmt.Fprint(w, "done")
	}))
	defer server.Close()

	tests := []struct {
		path   string
		wantOK bool
	}{
		{"/hop/3", true},
		{fmt.Sprintf("/hop/%d", MaxRedirects), true},
		{fmt.Sprintf("/hop/%d", MaxRedirects+1), false},
	}

	reqs := make([]Request, len(tests))
	for i, tt := range tests {
		reqs[i] = Request{URL: server.URL + tt.path}
	}
	results := New().FetchAll(context.Background(), reqs)

	for i, tt := range tests {
		res := results[i]
		if !tt.wantOK {
			if res.StatusCode != 0 || res.Err == nil {
				t.Errorf("%s: expected more than %d redirects to fail, got %d %v", tt.path, MaxRedirects, res.StatusCode, res.Err)
			}
			continue
		}
		if !res.OK() || string(res.Body) != "done" {
			t.Errorf("%s: expected redirect chain to be followed, got %+v", tt.path, res)
		}
		if res.URL != server.URL+"/hop/0" {
			t.Errorf("%s: expected final URL %s, got %s", tt.path, server.URL+"/hop/0", res.URL)
		}
	}
}

func TestFetchAll_PostFormAndHeaders(t *testing.T) {
	type seen struct {
		method, contentType, token, field, ua string
	}
	got := make(chan seen, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		got <- seen{
			method:      r.Method,
			contentType: r.Header.Get("Content-Type"),
			token:       r.Header.Get("X-Token"),
			field:       r.PostForm.Get("q"),
			ua:          r.Header.Get("User-Agent"),
		}
	}))
	defer server.Close()

	results := New(WithUserAgent("botiplist-test")).FetchAll(context.Background(), []Request{{
		URL:    server.URL,
		Method: "post",
		Header: http.Header{"X-Token": []string{"abc"}},
		Form:   url.Values{"q": []string{"bots"}},
	}})

	if !results[0].OK() {
		t.Fatalf("request failed: %+v", results[0])
	}
	s := <-got
	if s.method != http.MethodPost {
		t.Errorf("method = %s, want POST", s.method)
	}
	if s.contentType != "application/x-www-form-urlencoded" {
		t.Errorf("content type = %s", s.contentType)
	}
	if s.token != "abc" || s.field != "bots" {
		t.Errorf("header/form not delivered: %+v", s)
	}
	if s.ua != "botiplist-test" {
		t.Errorf("user agent = %s", s.ua)
	}
}

func TestFetchAll_GetFormGoesToQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, r.URL.RawQuery)
	}))
	defer server.Close()

	results := New().FetchAll(context.Background(), []Request{{
		URL:  server.URL + "/?a=1",
		Form: url.Values{"b": []string{"2"}},
	}})

	if string(results[0].Body) != "a=1&b=2" {
		t.Errorf("query = %q, want a=1&b=2", results[0].Body)
	}
}

func TestFetchAll_SelfSignedTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "secure")
	}))
	defer server.Close()

	results := New().FetchAll(context.Background(), []Request{{URL: server.URL}})
	if !results[0].OK() || string(results[0].Body) != "secure" {
		t.Errorf("expected self-signed certificate to be accepted, got %+v", results[0])
	}
}

func TestFetchAll_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "fast")
	}))
	defer fast.Close()

	started := time.Now()
	results := New(WithTimeout(100*time.Millisecond)).FetchAll(context.Background(), []Request{
		{URL: server.URL},
		{URL: fast.URL},
	})

	if time.Since(started) > 5*time.Second {
		t.Errorf("timeout not enforced")
	}
	if results[0].StatusCode != 0 || !errors.IsCode(results[0].Err, errors.ErrCodeTransport) {
		t.Errorf("expected timed out request to be a transport failure, got %+v", results[0])
	}
	if !results[1].OK() {
		t.Errorf("slow request must not affect others: %+v", results[1])
	}
}

func TestFetchAll_InvalidURL(t *testing.T) {
	results := New().FetchAll(context.Background(), []Request{{URL: "://bad"}})
	if results[0].StatusCode != 0 || results[0].Err == nil {
		t.Errorf("expected invalid URL to be reported per result, got %+v", results[0])
	}
}
