package mocks

import (
	"net/netip"
	"sync"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
)

// MockNetworkManager is a mock implementation of the NetworkManager interface.
//
// This allows testing components that depend on firewall rules without
// actually modifying iptables.
type MockNetworkManager struct {
	// ApplyRulesFunc is called by ApplyRules if not nil
	ApplyRulesFunc func(fw *config.FirewallConfig) error

	// UndoRulesFunc is called by UndoRules if not nil
	UndoRulesFunc func(fw *config.FirewallConfig) error

	// Track calls for verification in tests
	ApplyRulesCalls int
	UndoRulesCalls  int
}

// NewMockNetworkManager creates a new mock network manager with default behavior.
func NewMockNetworkManager() *MockNetworkManager {
	return &MockNetworkManager{}
}

// ApplyRules adds firewall rules.
func (m *MockNetworkManager) ApplyRules(fw *config.FirewallConfig) error {
	m.ApplyRulesCalls++
	if m.ApplyRulesFunc != nil {
		return m.ApplyRulesFunc(fw)
	}
	return nil
}

// UndoRules removes firewall rules.
func (m *MockNetworkManager) UndoRules(fw *config.FirewallConfig) error {
	m.UndoRulesCalls++
	if m.UndoRulesFunc != nil {
		return m.UndoRulesFunc(fw)
	}
	return nil
}

// MockIPSetManager is a mock implementation of the IPSetManager interface.
//
// This allows testing ipset operations without actually creating ipsets.
// Without overrides it keeps created sets and imported networks in memory.
type MockIPSetManager struct {
	// CreateFunc is called by Create if not nil
	CreateFunc func(name string, family config.IPFamily) error

	// FlushFunc is called by Flush if not nil
	FlushFunc func(name string) error

	// DestroyFunc is called by Destroy if not nil
	DestroyFunc func(name string) error

	// ImportFunc is called by Import if not nil
	ImportFunc func(name string, family config.IPFamily, networks []netip.Prefix, flush bool) (int, error)

	// Track calls for verification in tests
	CreateCalls  int
	FlushCalls   int
	DestroyCalls int
	ImportCalls  int

	// State
	CreatedIPSets    map[string]config.IPFamily
	ImportedNetworks map[string][]netip.Prefix

	mu sync.Mutex
}

// NewMockIPSetManager creates a new mock ipset manager with default behavior.
func NewMockIPSetManager() *MockIPSetManager {
	return &MockIPSetManager{
		CreatedIPSets:    make(map[string]config.IPFamily),
		ImportedNetworks: make(map[string][]netip.Prefix),
	}
}

// Create records a new ipset.
func (m *MockIPSetManager) Create(name string, family config.IPFamily) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(name, family)
	}
	m.CreatedIPSets[name] = family
	return nil
}

// Flush removes all entries from an ipset.
func (m *MockIPSetManager) Flush(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCalls++
	if m.FlushFunc != nil {
		return m.FlushFunc(name)
	}
	delete(m.ImportedNetworks, name)
	return nil
}

// Destroy removes an ipset.
func (m *MockIPSetManager) Destroy(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DestroyCalls++
	if m.DestroyFunc != nil {
		return m.DestroyFunc(name)
	}
	delete(m.CreatedIPSets, name)
	delete(m.ImportedNetworks, name)
	return nil
}

// Import adds the networks of the family to an ipset.
func (m *MockIPSetManager) Import(name string, family config.IPFamily, networks []netip.Prefix, flush bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ImportCalls++
	if m.ImportFunc != nil {
		return m.ImportFunc(name, family, networks, flush)
	}
	if flush {
		delete(m.ImportedNetworks, name)
	}
	added := 0
	for _, network := range networks {
		if network.Addr().Is4() == (family == config.Ipv4) {
			m.ImportedNetworks[name] = append(m.ImportedNetworks[name], network)
			added++
		}
	}
	return added, nil
}
