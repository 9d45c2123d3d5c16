package service

import (
	"context"
	"net/netip"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/allowlist"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/domain"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/verify"
)

// CheckResult is the answer for one address.
type CheckResult struct {
	Addr    netip.Addr       `json:"addr"`
	Listed  bool             `json:"listed"`
	Entry   *allowlist.Entry `json:"entry,omitempty"`
	Verify  *verify.Result   `json:"verify,omitempty"`
	Crawler bool             `json:"crawler"`
}

// CheckService answers whether an address is a known crawler.
type CheckService struct {
	index    *allowlist.Index
	verifier domain.Verifier
}

// NewCheckService creates the service. verifier may be nil, which disables verification.
func NewCheckService(index *allowlist.Index, verifier domain.Verifier) *CheckService {
	return &CheckService{index: index, verifier: verifier}
}

func (s *CheckService) Index() *allowlist.Index {
	return s.index
}

// Check looks addr up in the allow-list and, when verifyDNS is set, runs
// forward-confirmed reverse DNS. Crawler is true when every requested check passed.
func (s *CheckService) Check(ctx context.Context, addr netip.Addr, verifyDNS bool) (*CheckResult, error) {
	addr = addr.Unmap()
	res := &CheckResult{Addr: addr}

	if entry, ok := s.index.Contains(addr); ok {
		res.Listed = true
		res.Entry = &entry
	}
	res.Crawler = res.Listed

	if !verifyDNS {
		return res, nil
	}
	if s.verifier == nil {
		return nil, errors.NewConfigError("DNS verification is not configured", nil)
	}

	v, err := s.verifier.Verify(ctx, addr)
	if err != nil {
		return nil, err
	}
	res.Verify = v
	res.Crawler = res.Listed && v.Verified
	return res, nil
}
