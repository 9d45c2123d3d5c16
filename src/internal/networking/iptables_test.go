package networking

import (
	"fmt"
	"testing"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
)

func TestProcessRulePart_TemplateSubstitution(t *testing.T) {
	v4 := config.IPSetRef{Name: "reliable_bots_v4", Family: config.Ipv4}
	v6 := config.IPSetRef{Name: "reliable_bots_v6", Family: config.Ipv6}

	tests := []struct {
		name     string
		ipset    config.IPSetRef
		template string
		expected string
	}{
		{"No template variables", v4, "-j ACCEPT", "-j ACCEPT"},
		{"ipset_name", v4, "{{ipset_name}}", "reliable_bots_v4"},
		{"family IPv4", v4, "{{family}}", "inet"},
		{"family IPv6", v6, "{{family}}", "inet6"},
		{"Both variables", v6, "{{ipset_name}}-{{family}}", "reliable_bots_v6-inet6"},
		{"Unknown variable is removed", v4, "x{{fwmark}}y", "xy"},
		{"Unclosed braces are kept", v4, "{{ipset_name", "{{ipset_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := processRulePart(tt.template, tt.ipset); got != tt.expected {
				t.Errorf("processRulePart(%q) = %q, want %q", tt.template, got, tt.expected)
			}
		})
	}
}

func exampleRules() []*config.IPTablesRule {
	return []*config.IPTablesRule{
		{
			Table: "filter",
			Chain: "INPUT",
			Rule:  []string{"-m", "set", "--match-set", "{{ipset_name}}", "src", "-p", "tcp", "--dport", "443", "-j", "ACCEPT"},
		},
	}
}

func TestIPTableRules_AddAndDelete(t *testing.T) {
	ipt := newFakeIPTables()
	rules := NewIPTableRules(ipt, config.IPSetRef{Name: "bots", Family: config.Ipv4}, exampleRules())

	if got := rules.Rules()[0].Rule[3]; got != "bots" {
		t.Fatalf("rendered ipset name = %q, want bots", got)
	}

	if err := rules.AddIfNotExists(); err != nil {
		t.Fatalf("AddIfNotExists() error: %v", err)
	}
	if err := rules.AddIfNotExists(); err != nil {
		t.Fatalf("second AddIfNotExists() error: %v", err)
	}
	if len(ipt.appended) != 1 {
		t.Errorf("rule appended %d times, want 1", len(ipt.appended))
	}

	exists, err := rules.CheckRulesExists()
	if err != nil {
		t.Fatal(err)
	}
	for rule, ok := range exists {
		if !ok {
			t.Errorf("rule %v should exist", rule)
		}
	}

	if err := rules.DelIfExists(); err != nil {
		t.Fatalf("DelIfExists() error: %v", err)
	}
	if err := rules.DelIfExists(); err != nil {
		t.Fatalf("second DelIfExists() error: %v", err)
	}
	if len(ipt.deleted) != 1 || len(ipt.rules) != 0 {
		t.Errorf("deleted = %v, remaining = %v", ipt.deleted, ipt.rules)
	}
}

func TestIPTableRules_ExistsError(t *testing.T) {
	ipt := newFakeIPTables()
	ipt.existsErr = fmt.Errorf("permission denied")
	rules := NewIPTableRules(ipt, config.IPSetRef{Name: "bots", Family: config.Ipv4}, exampleRules())

	if err := rules.AddIfNotExists(); !errors.IsCode(err, errors.ErrCodeFirewall) {
		t.Errorf("expected firewall error, got %v", err)
	}
}

func TestManager_ApplyAndUndo(t *testing.T) {
	tables := map[config.IPFamily]*fakeIPTables{
		config.Ipv4: newFakeIPTables(),
		config.Ipv6: newFakeIPTables(),
	}
	mgr := NewManagerWithFactory(func(family config.IPFamily) (IPTables, error) {
		return tables[family], nil
	})

	fw := &config.FirewallConfig{
		IPSetV4:       "bots4",
		IPSetV6:       "bots6",
		IPTablesRules: exampleRules(),
	}

	if err := mgr.ApplyRules(fw); err != nil {
		t.Fatalf("ApplyRules() error: %v", err)
	}
	if len(tables[config.Ipv4].appended) != 1 || len(tables[config.Ipv6].appended) != 1 {
		t.Fatalf("expected one rule per family, got v4=%v v6=%v", tables[config.Ipv4].appended, tables[config.Ipv6].appended)
	}
	if want := ruleKey("filter", "INPUT", "-m", "set", "--match-set", "bots6", "src", "-p", "tcp", "--dport", "443", "-j", "ACCEPT"); tables[config.Ipv6].appended[0] != want {
		t.Errorf("IPv6 rule = %s, want %s", tables[config.Ipv6].appended[0], want)
	}

	if err := mgr.UndoRules(fw); err != nil {
		t.Fatalf("UndoRules() error: %v", err)
	}
	for family, ipt := range tables {
		if len(ipt.rules) != 0 {
			t.Errorf("IPv%d rules left after undo: %v", family, ipt.rules)
		}
	}
}

func TestManager_OnlyIPv4(t *testing.T) {
	calls := 0
	mgr := NewManagerWithFactory(func(family config.IPFamily) (IPTables, error) {
		calls++
		if family != config.Ipv4 {
			t.Errorf("unexpected family %d", family)
		}
		return newFakeIPTables(), nil
	})

	if err := mgr.ApplyRules(&config.FirewallConfig{IPSetV4: "bots4", IPTablesRules: exampleRules()}); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("factory called %d times, want 1", calls)
	}
}

func TestManager_NoFirewallSection(t *testing.T) {
	mgr := NewManagerWithFactory(func(config.IPFamily) (IPTables, error) { return newFakeIPTables(), nil })
	if err := mgr.ApplyRules(nil); !errors.IsCode(err, errors.ErrCodeConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}
