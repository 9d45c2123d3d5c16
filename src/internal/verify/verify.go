// Package verify confirms crawler addresses with forward-confirmed reverse DNS.
//
// An address is verified when its PTR name ends in a known crawler domain and
// a forward lookup of that name returns the same address.
package verify

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/utils"
)

const (
	defaultDNSPort = "53"
	defaultTimeout = 5 * time.Second

	DefaultCacheSize = 4096
	DefaultCacheTTL  = time.Hour
)

// DefaultDomains are the reverse DNS suffixes published by the supported crawlers.
var DefaultDomains = []string{
	"googlebot.com",
	"google.com",
	"googleusercontent.com",
	"search.msn.com",
	"duckduckgo.com",
}

// Result is the outcome of verifying one address.
type Result struct {
	Addr      netip.Addr `json:"addr"`
	Hostnames []string   `json:"hostnames,omitempty"`
	Hostname  string     `json:"hostname,omitempty"`
	Domain    string     `json:"domain,omitempty"`
	Verified  bool       `json:"verified"`
	Reason    string     `json:"reason,omitempty"`
}

// Verifier runs FCrDNS checks against a single resolver.
type Verifier struct {
	resolver string
	domains  []string
	timeout  time.Duration
	client   *dns.Client
	cache    *resultCache
}

type Option func(*Verifier)

// WithDomains replaces DefaultDomains. An empty list keeps the defaults.
func WithDomains(domains []string) Option {
	return func(v *Verifier) {
		if len(domains) > 0 {
			v.domains = domains
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithCache keeps up to maxEntries results for ttl. Resolver errors are never cached.
func WithCache(maxEntries int, ttl time.Duration) Option {
	return func(v *Verifier) {
		if maxEntries > 0 && ttl > 0 {
			v.cache = newResultCache(maxEntries, ttl)
		}
	}
}

// New creates a verifier querying resolver ("host" or "host:port") over UDP.
func New(resolver string, opts ...Option) (*Verifier, error) {
	if resolver == "" {
		return nil, errors.NewConfigError("resolver is not set", nil)
	}
	if _, _, err := net.SplitHostPort(resolver); err != nil {
		resolver = net.JoinHostPort(strings.Trim(resolver, "[]"), defaultDNSPort)
	}
	if _, _, err := net.SplitHostPort(resolver); err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid resolver address %q", resolver), err)
	}

	v := &Verifier{
		resolver: resolver,
		domains:  DefaultDomains,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.client = &dns.Client{Net: "udp", Timeout: v.timeout}
	return v, nil
}

func (v *Verifier) Resolver() string {
	return v.resolver
}

func (v *Verifier) Domains() []string {
	return v.domains
}

// Verify checks addr. A negative answer is a Result with Verified false;
// an error is returned only when the resolver could not be queried.
func (v *Verifier) Verify(ctx context.Context, addr netip.Addr) (*Result, error) {
	addr = addr.Unmap()
	if v.cache != nil {
		if res, ok := v.cache.get(addr); ok {
			log.Debugf("Verification of %s served from cache", addr)
			return res, nil
		}
	}

	res, err := v.verify(ctx, addr)
	if err == nil && v.cache != nil {
		v.cache.put(res)
	}
	return res, err
}

func (v *Verifier) verify(ctx context.Context, addr netip.Addr) (*Result, error) {
	res := &Result{Addr: addr}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	arpa, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return nil, errors.NewDNSError(fmt.Sprintf("cannot build reverse name for %s", addr), err)
	}

	answers, err := v.query(ctx, arpa, dns.TypePTR)
	if err != nil {
		return nil, err
	}
	for _, rr := range answers {
		if ptr, ok := rr.(*dns.PTR); ok {
			res.Hostnames = append(res.Hostnames, ptr.Ptr)
		}
	}
	if len(res.Hostnames) == 0 {
		res.Reason = "no PTR record"
		return res, nil
	}

	qtype := dns.TypeA
	if addr.Is6() {
		qtype = dns.TypeAAAA
	}

	res.Reason = "hostname is not in a known crawler domain"
	for _, host := range res.Hostnames {
		domain := v.matchDomain(host)
		if domain == "" {
			continue
		}
		res.Hostname = strings.TrimSuffix(host, ".")
		res.Domain = domain

		answers, err := v.query(ctx, host, qtype)
		if err != nil {
			return nil, err
		}
		if containsAddr(answers, addr) {
			res.Verified = true
			res.Reason = ""
			log.Debugf("Verified %s as %s (%s)", addr, res.Hostname, domain)
			return res, nil
		}
		res.Reason = "forward lookup does not return the address"
	}

	log.Debugf("Not verified %s: %s", addr, res.Reason)
	return res, nil
}

// matchDomain returns the most specific configured domain host belongs to.
func (v *Verifier) matchDomain(host string) string {
	best := ""
	var bestSpecificity uint8
	for _, domain := range v.domains {
		if ok, specificity := utils.MatchDomain(host, domain); ok && specificity > bestSpecificity {
			best, bestSpecificity = domain, specificity
		}
	}
	return best
}

func (v *Verifier) query(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	req := new(dns.Msg)
	req.SetQuestion(dns.Fqdn(name), qtype)
	req.RecursionDesired = true

	resp, _, err := v.client.ExchangeContext(ctx, req, v.resolver)
	if err != nil {
		return nil, errors.NewDNSError(fmt.Sprintf("%s %s query failed", name, dns.TypeToString[qtype]), err)
	}
	switch resp.Rcode {
	case dns.RcodeSuccess:
		return resp.Answer, nil
	case dns.RcodeNameError:
		return nil, nil
	default:
		return nil, errors.NewDNSError(fmt.Sprintf("%s %s query: %s", name, dns.TypeToString[qtype], dns.RcodeToString[resp.Rcode]), nil)
	}
}

func containsAddr(answers []dns.RR, addr netip.Addr) bool {
	for _, rr := range answers {
		var ip net.IP
		switch r := rr.(type) {
		case *dns.A:
			ip = r.A
		case *dns.AAAA:
			ip = r.AAAA
		default:
			continue
		}
		if got, ok := netip.AddrFromSlice(ip); ok && got.Unmap() == addr {
			return true
		}
	}
	return false
}
