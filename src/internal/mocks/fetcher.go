package mocks

import (
	"context"
	"net/netip"
	"sync"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/fetcher"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/verify"
)

// MockFetcher answers requests from Responses, keyed by URL.
// Unknown URLs produce a transport error result.
type MockFetcher struct {
	Responses map[string]fetcher.Result

	mu       sync.Mutex
	Calls    int
	Requests [][]fetcher.Request
}

func NewMockFetcher(responses map[string]fetcher.Result) *MockFetcher {
	return &MockFetcher{Responses: responses}
}

// FetchAll returns one result per request, in order.
func (m *MockFetcher) FetchAll(_ context.Context, reqs []fetcher.Request) []fetcher.Result {
	m.mu.Lock()
	m.Calls++
	m.Requests = append(m.Requests, reqs)
	m.mu.Unlock()

	results := make([]fetcher.Result, len(reqs))
	for i, req := range reqs {
		res, ok := m.Responses[req.URL]
		if !ok {
			res = fetcher.Result{Err: errors.NewTransportError("no canned response for "+req.URL, nil)}
		}
		res.Index = i
		res.URL = req.URL
		results[i] = res
	}
	return results
}

// CallCount returns how many batches were fetched.
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockVerifier returns canned verification results keyed by address.
// Unknown addresses are reported as not verified.
type MockVerifier struct {
	Results map[netip.Addr]*verify.Result
	Err     error
	Calls   int
}

func (m *MockVerifier) Verify(_ context.Context, addr netip.Addr) (*verify.Result, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if res, ok := m.Results[addr]; ok {
		return res, nil
	}
	return &verify.Result{Addr: addr, Reason: "no PTR record"}, nil
}
