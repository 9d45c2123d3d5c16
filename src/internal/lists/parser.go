package lists

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/endpoints"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/fetcher"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/metrics"
)

// Reasons an endpoint response is skipped.
var (
	ErrBadStatus     = stderrors.New("unexpected HTTP status")
	ErrMalformedJSON = stderrors.New("malformed JSON")
	ErrNoPrefixes    = stderrors.New("missing or non-array \"prefixes\" field")
)

// feedDocument is the expected top-level shape: {"prefixes": [...]}.
type feedDocument struct {
	Prefixes json.RawMessage `json:"prefixes"`
}

// prefixEntry is one element of "prefixes". Either field may be absent.
type prefixEntry struct {
	IPv4Prefix json.RawMessage `json:"ipv4Prefix"`
	IPv6Prefix json.RawMessage `json:"ipv6Prefix"`
}

// Source is what one endpoint contributed.
type Source struct {
	Label string
	IPv4  []string
	IPv6  []string
}

// PrefixSet holds parsed prefixes per endpoint, in registry order.
// Endpoints that were skipped are present with empty lists and named in Skipped.
type PrefixSet struct {
	Sources []Source
	Skipped []string
}

// Counts returns the total number of IPv4 and IPv6 prefixes.
func (p *PrefixSet) Counts() (ipv4, ipv6 int) {
	for _, s := range p.Sources {
		ipv4 += len(s.IPv4)
		ipv6 += len(s.IPv6)
	}
	return ipv4, ipv6
}

// ParseResponse extracts IPv4 and IPv6 prefix strings from a feed response.
// It returns a PARSE error wrapping ErrBadStatus, ErrMalformedJSON or ErrNoPrefixes
// when the response has to be skipped.
func ParseResponse(res fetcher.Result) (ipv4, ipv6 []string, err error) {
	if res.StatusCode != http.StatusOK {
		return nil, nil, errors.NewParseError(fmt.Sprintf("status %d", res.StatusCode), ErrBadStatus)
	}
	if !json.Valid(res.Body) {
		return nil, nil, errors.NewParseError("invalid body", ErrMalformedJSON)
	}

	var doc feedDocument
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		// Valid JSON, but not an object.
		return nil, nil, errors.NewParseError("unexpected document", ErrNoPrefixes)
	}

	var elements []json.RawMessage
	raw := bytes.TrimSpace(doc.Prefixes)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, nil, errors.NewParseError("unexpected document", ErrNoPrefixes)
	}
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, nil, errors.NewParseError("unexpected document", ErrNoPrefixes)
	}

	for _, element := range elements {
		var entry prefixEntry
		if err := json.Unmarshal(element, &entry); err != nil {
			continue
		}
		if s, ok := stringField(entry.IPv4Prefix); ok {
			ipv4 = append(ipv4, s)
		}
		if s, ok := stringField(entry.IPv6Prefix); ok {
			ipv6 = append(ipv6, s)
		}
	}

	return ipv4, ipv6, nil
}

// stringField decodes an optional JSON string. Absent, null and non-string values report false.
func stringField(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// BuildPrefixSet parses the results of fetching reg.Requests(). Results are
// matched to endpoints by Index; failures are logged and the endpoint is left empty.
func BuildPrefixSet(reg *endpoints.Registry, results []fetcher.Result) *PrefixSet {
	set := &PrefixSet{Sources: make([]Source, reg.Len())}
	for i := range set.Sources {
		set.Sources[i].Label = reg.At(i).Label
	}

	seen := make([]bool, reg.Len())

	for _, res := range results {
		if res.Index < 0 || res.Index >= reg.Len() {
			continue
		}
		label := reg.At(res.Index).Label

		if res.Err != nil {
			metrics.ObserveEndpoint(label, metrics.OutcomeTransport, 0, 0)
			log.With("endpoint", label).Warn("skipping endpoint", "err", res.Err)
			continue
		}

		ipv4, ipv6, err := ParseResponse(res)
		if err != nil {
			outcome := metrics.OutcomeParse
			if stderrors.Is(err, ErrBadStatus) {
				outcome = metrics.OutcomeHTTP
			}
			metrics.ObserveEndpoint(label, outcome, 0, 0)
			log.With("endpoint", label).Warn("skipping endpoint", "url", res.URL, "err", err)
			continue
		}

		seen[res.Index] = true
		set.Sources[res.Index].IPv4 = ipv4
		set.Sources[res.Index].IPv6 = ipv6
		metrics.ObserveEndpoint(label, metrics.OutcomeOK, len(ipv4), len(ipv6))
		log.Debugf("Endpoint %s: %d IPv4, %d IPv6 prefixes", label, len(ipv4), len(ipv6))
	}

	for i, ok := range seen {
		if !ok {
			set.Skipped = append(set.Skipped, set.Sources[i].Label)
		}
	}

	return set
}
