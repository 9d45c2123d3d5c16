// Package fetcher issues batches of HTTP requests concurrently and returns
// one Result per Request in input order.
//
// A failing request never fails the batch: transport errors are recorded on
// the corresponding Result with StatusCode 0 and an empty body. Responses are
// not retried. TLS certificate verification is disabled so that feeds stay
// reachable behind intercepting proxies and stale CA bundles; the payloads
// are public IP range lists.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/metrics"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultConcurrency = 8
	MaxRedirects       = 10

	maxResponseBytes = 10 << 20
)

// Request describes one HTTP request. Method defaults to GET.
// Form is sent urlencoded as the body of a POST, or appended to the query of a GET.
type Request struct {
	URL    string
	Method string
	Header http.Header
	Form   url.Values
}

// Result is the outcome of one Request.
type Result struct {
	// Index is the position of the originating Request in the batch.
	Index int
	Body  []byte
	// URL is the effective URL after redirects, or the requested URL on failure.
	URL        string
	StatusCode int
	Err        error
}

// OK reports whether the request completed with HTTP 200.
func (r Result) OK() bool {
	return r.Err == nil && r.StatusCode == http.StatusOK
}

type Option func(*Fetcher)

// WithTimeout bounds each request, including redirects and body read.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithConcurrency limits the number of requests in flight.
func WithConcurrency(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

type Fetcher struct {
	client      *http.Client
	concurrency int
	userAgent   string
}

func New(opts ...Option) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec

	f := &Fetcher{
		client: &http.Client{
			Transport:     transport,
			Timeout:       DefaultTimeout,
			CheckRedirect: checkRedirect,
		},
		concurrency: DefaultConcurrency,
		userAgent:   userAgent(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func checkRedirect(_ *http.Request, via []*http.Request) error {
	if len(via) > MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", MaxRedirects)
	}
	return nil
}

// FetchAll runs all requests concurrently and returns len(reqs) results in input order.
// Cancelling ctx turns outstanding requests into transport failures.
func (f *Fetcher) FetchAll(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	// A plain group: one failed request must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			results[i] = f.fetch(ctx, i, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (f *Fetcher) fetch(ctx context.Context, index int, req Request) Result {
	result := Result{Index: index, URL: req.URL}
	host := hostOf(req.URL)
	started := time.Now()

	httpReq, err := f.buildRequest(ctx, req)
	if err != nil {
		result.Err = errors.NewTransportError(fmt.Sprintf("invalid request to %s", req.URL), err)
		metrics.ObserveFetch(host, metrics.OutcomeTransport, time.Since(started))
		return result
	}

	log.Debugf("Fetching %s %s", httpReq.Method, req.URL)
	resp, err := f.client.Do(httpReq)
	if err != nil {
		result.Err = errors.NewTransportError(fmt.Sprintf("request to %s failed", req.URL), err)
		metrics.ObserveFetch(host, metrics.OutcomeTransport, time.Since(started))
		log.Warnf("Request to %s failed: %v", req.URL, err)
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err == nil && len(body) > maxResponseBytes {
		err = fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}
	if err != nil {
		result.Err = errors.NewTransportError(fmt.Sprintf("reading response from %s failed", req.URL), err)
		metrics.ObserveFetch(host, metrics.OutcomeTransport, time.Since(started))
		log.Warnf("Reading response from %s failed: %v", req.URL, err)
		return result
	}

	result.Body = body
	result.StatusCode = resp.StatusCode
	if resp.Request != nil && resp.Request.URL != nil {
		result.URL = resp.Request.URL.String()
	}

	outcome := metrics.OutcomeOK
	if resp.StatusCode != http.StatusOK {
		outcome = metrics.OutcomeHTTP
	}
	metrics.ObserveFetch(host, outcome, time.Since(started))
	log.Debugf("Fetched %s: %d, %d bytes", result.URL, result.StatusCode, len(body))

	return result
}

func (f *Fetcher) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	target := req.URL
	var body io.Reader
	if len(req.Form) > 0 {
		if method == http.MethodPost {
			body = strings.NewReader(req.Form.Encode())
		} else {
			u, err := url.Parse(req.URL)
			if err != nil {
				return nil, err
			}
			q := u.Query()
			for k, vs := range req.Form {
				for _, v := range vs {
					q.Add(k, v)
				}
			}
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if httpReq.Header.Get("User-Agent") == "" && f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}
	return httpReq, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Hostname()
}

// userAgent identifies botiplist to feed operators.
func userAgent() string {
	const (
		name       = "botiplist"
		importPath = "github.com/kaleidpixel/reliablebot-ip-list"
	)
	version := "unknown"
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Path == importPath && bi.Main.Version != "" {
			version = bi.Main.Version
		}
	}
	return name + "/" + version
}
