package networking

import (
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
)

// Manager implements domain.NetworkManager on top of iptables.
type Manager struct {
	newIPTables IPTablesFactory
}

func NewManager() *Manager {
	return &Manager{newIPTables: DefaultIPTablesFactory}
}

// NewManagerWithFactory creates a manager using factory for iptables handles.
func NewManagerWithFactory(factory IPTablesFactory) *Manager {
	return &Manager{newIPTables: factory}
}

// BuildRules renders the rules of every configured ipset.
func (m *Manager) BuildRules(fw *config.FirewallConfig) ([]*IPTableRules, error) {
	if fw == nil {
		return nil, errors.NewConfigError("firewall section is not configured", nil)
	}

	var all []*IPTableRules
	for _, ref := range fw.IPSets() {
		ipt, err := m.newIPTables(ref.Family)
		if err != nil {
			return nil, errors.NewFirewallError("failed to initialize iptables", err)
		}
		all = append(all, NewIPTableRules(ipt, ref, fw.IPTablesRules))
	}
	return all, nil
}

// ApplyRules adds missing rules for all configured ipsets.
func (m *Manager) ApplyRules(fw *config.FirewallConfig) error {
	all, err := m.BuildRules(fw)
	if err != nil {
		return err
	}
	for _, rules := range all {
		if err := rules.AddIfNotExists(); err != nil {
			return err
		}
	}
	return nil
}

// UndoRules removes the rules of all configured ipsets.
func (m *Manager) UndoRules(fw *config.FirewallConfig) error {
	all, err := m.BuildRules(fw)
	if err != nil {
		return err
	}
	for _, rules := range all {
		if err := rules.DelIfExists(); err != nil {
			return err
		}
	}
	return nil
}
