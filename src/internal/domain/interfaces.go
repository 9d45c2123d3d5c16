// Package domain defines core interfaces for dependency injection and abstraction.
//
// This package contains the interfaces that decouple services from network
// access, the firewall and DNS, plus the container that wires production
// implementations from the configuration.
package domain

import (
	"context"
	"net/netip"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/fetcher"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/verify"
)

// Fetcher issues a batch of HTTP requests.
type Fetcher interface {
	// FetchAll returns exactly one result per request, in request order.
	// Per-request failures are reported in the result, never as a panic or early return.
	FetchAll(ctx context.Context, reqs []fetcher.Request) []fetcher.Result
}

// IPSetManager defines the interface for managing Linux ipsets.
//
// This interface abstracts ipset operations, allowing for testing without
// requiring actual ipset commands or root privileges.
type IPSetManager interface {
	// Create creates a new ipset with the specified name and IP family.
	// If the ipset already exists, this should be a no-op.
	Create(name string, family config.IPFamily) error

	// Flush removes all entries from the specified ipset.
	Flush(name string) error

	// Destroy removes the ipset.
	Destroy(name string) error

	// Import adds networks of the family to the ipset and returns how many were added.
	Import(name string, family config.IPFamily, networks []netip.Prefix, flush bool) (int, error)
}

// NetworkManager defines the interface for managing firewall rules.
type NetworkManager interface {
	// ApplyRules adds the configured iptables rules for every configured ipset.
	ApplyRules(fw *config.FirewallConfig) error

	// UndoRules removes the configured iptables rules.
	UndoRules(fw *config.FirewallConfig) error
}

// Verifier confirms that an address belongs to a crawler.
type Verifier interface {
	Verify(ctx context.Context, addr netip.Addr) (*verify.Result, error)
}
