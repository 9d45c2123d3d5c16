// Package endpoints holds the registry of remote crawler IP-range feeds.
//
// A Registry is an ordered, immutable list of labelled URLs. Order matters:
// it is the outer order of the assembled artifact.
package endpoints

import (
	"fmt"
	"net/url"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/fetcher"
)

// Endpoint is one remote source of crawler IP ranges.
type Endpoint struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Registry is an ordered set of endpoints with unique labels.
type Registry struct {
	endpoints []Endpoint
	index     map[string]int
}

var defaultEndpoints = []Endpoint{
	{Label: "google", URL: "https://www.gstatic.com/ipranges/goog.json"},
	{Label: "googlebot", URL: "https://developers.google.com/static/search/apis/ipranges/googlebot.json"},
	{Label: "google-special-crawlers", URL: "https://developers.google.com/static/search/apis/ipranges/special-crawlers.json"},
	{Label: "google-user-triggered-fetchers", URL: "https://developers.google.com/static/search/apis/ipranges/user-triggered-fetchers.json"},
	{Label: "google-user-triggered-fetchers-2", URL: "https://developers.google.com/static/search/apis/ipranges/user-triggered-fetchers-google.json"},
	{Label: "bingbot", URL: "https://www.bing.com/toolbox/bingbot.json"},
	{Label: "duckduckgo", URL: "https://duckduckgo.com/duckduckbot.json"},
	{Label: "duckassistbot", URL: "https://duckduckgo.com/duckassistbot.json"},
}

// Default returns the built-in registry of search engine crawler feeds.
func Default() *Registry {
	r, err := New(defaultEndpoints...)
	if err != nil {
		panic(err)
	}
	return r
}

// New builds a registry. Labels must be unique and non-empty, URLs absolute http(s).
func New(endpoints ...Endpoint) (*Registry, error) {
	r := &Registry{
		endpoints: make([]Endpoint, 0, len(endpoints)),
		index:     make(map[string]int, len(endpoints)),
	}
	for _, e := range endpoints {
		if e.Label == "" {
			return nil, errors.NewConfigError("endpoint label cannot be empty", nil)
		}
		if _, dup := r.index[e.Label]; dup {
			return nil, errors.NewConfigError(fmt.Sprintf("duplicate endpoint label: %s", e.Label), nil)
		}
		u, err := url.Parse(e.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, errors.NewConfigError(fmt.Sprintf("invalid URL for endpoint %s: %q", e.Label, e.URL), err)
		}
		r.index[e.Label] = len(r.endpoints)
		r.endpoints = append(r.endpoints, e)
	}
	return r, nil
}

// All returns a copy of the endpoints in registry order.
func (r *Registry) All() []Endpoint {
	out := make([]Endpoint, len(r.endpoints))
	copy(out, r.endpoints)
	return out
}

func (r *Registry) Len() int {
	return len(r.endpoints)
}

// At returns the endpoint at registry position i.
func (r *Registry) At(i int) Endpoint {
	return r.endpoints[i]
}

func (r *Registry) Lookup(label string) (Endpoint, bool) {
	i, ok := r.index[label]
	if !ok {
		return Endpoint{}, false
	}
	return r.endpoints[i], true
}

func (r *Registry) Labels() []string {
	labels := make([]string, len(r.endpoints))
	for i, e := range r.endpoints {
		labels[i] = e.Label
	}
	return labels
}

// Subset returns a registry restricted to labels, keeping this registry's order.
// An empty labels slice returns the registry itself.
func (r *Registry) Subset(labels []string) (*Registry, error) {
	if len(labels) == 0 {
		return r, nil
	}
	want := make(map[string]bool, len(labels))
	for _, label := range labels {
		if _, ok := r.index[label]; !ok {
			return nil, errors.NewConfigError(fmt.Sprintf("unknown endpoint: %s", label), nil)
		}
		want[label] = true
	}
	var kept []Endpoint
	for _, e := range r.endpoints {
		if want[e.Label] {
			kept = append(kept, e)
		}
	}
	return New(kept...)
}

// Requests returns one GET request per endpoint, index-aligned with the registry.
func (r *Registry) Requests() []fetcher.Request {
	reqs := make([]fetcher.Request, len(r.endpoints))
	for i, e := range r.endpoints {
		reqs[i] = fetcher.Request{URL: e.URL}
	}
	return reqs
}
