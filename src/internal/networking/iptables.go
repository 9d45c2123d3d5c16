package networking

import (
	"fmt"
	"strings"

	"github.com/coreos/go-iptables/iptables"
	"github.com/valyala/fasttemplate"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
)

// IPTables is the subset of *iptables.IPTables used here.
type IPTables interface {
	Exists(table, chain string, rulespec ...string) (bool, error)
	Append(table, chain string, rulespec ...string) error
	Delete(table, chain string, rulespec ...string) error
}

// IPTablesFactory returns an iptables handle for the family.
type IPTablesFactory func(family config.IPFamily) (IPTables, error)

// DefaultIPTablesFactory uses iptables for IPv4 and ip6tables for IPv6.
func DefaultIPTablesFactory(family config.IPFamily) (IPTables, error) {
	protocol := iptables.ProtocolIPv4
	if family == config.Ipv6 {
		protocol = iptables.ProtocolIPv6
	}
	return iptables.NewWithProtocol(protocol)
}

// IPTableRules are the rendered rules of one ipset.
type IPTableRules struct {
	ipt   IPTables
	ipset config.IPSetRef
	rules []*config.IPTablesRule
}

func NewIPTableRules(ipt IPTables, ipset config.IPSetRef, templates []*config.IPTablesRule) *IPTableRules {
	return &IPTableRules{ipt: ipt, ipset: ipset, rules: processRules(templates, ipset)}
}

// Rules returns the rendered rules.
func (i *IPTableRules) Rules() []*config.IPTablesRule {
	return i.rules
}

func processRules(templates []*config.IPTablesRule, ipset config.IPSetRef) []*config.IPTablesRule {
	rules := make([]*config.IPTablesRule, len(templates))

	for i, rule := range templates {
		ruleSpecs := make([]string, len(rule.Rule))
		for j, ruleSpec := range rule.Rule {
			ruleSpecs[j] = processRulePart(ruleSpec, ipset)
		}

		rules[i] = &config.IPTablesRule{
			Chain: processRulePart(rule.Chain, ipset),
			Table: processRulePart(rule.Table, ipset),
			Rule:  ruleSpecs,
		}
	}

	return rules
}

func processRulePart(template string, ipset config.IPSetRef) string {
	if !strings.Contains(template, "{{") {
		return template
	}

	t, err := fasttemplate.NewTemplate(template, "{{", "}}")
	if err != nil {
		log.Warnf("Keeping malformed iptables template %q as is: %v", template, err)
		return template
	}
	return t.ExecuteString(map[string]interface{}{
		config.IPTABLES_TMPL_IPSET:  ipset.Name,
		config.IPTABLES_TMPL_FAMILY: ipset.Family.IPSetFamily(),
	})
}

func describe(rule *config.IPTablesRule) string {
	return fmt.Sprintf("-t %s -A %s %s", rule.Table, rule.Chain, strings.Join(rule.Rule, " "))
}

func (i *IPTableRules) AddIfNotExists() error {
	for _, rule := range i.rules {
		exists, err := i.ipt.Exists(rule.Table, rule.Chain, rule.Rule...)
		if err != nil {
			return errors.NewFirewallError(fmt.Sprintf("failed to check iptables rule [%s]", describe(rule)), err)
		}
		if exists {
			log.Debugf("iptables rule [%s] already exists", describe(rule))
			continue
		}

		log.Infof("Adding iptables rule [%s]", describe(rule))
		if err := i.ipt.Append(rule.Table, rule.Chain, rule.Rule...); err != nil {
			return errors.NewFirewallError(fmt.Sprintf("failed to add iptables rule [%s]", describe(rule)), err)
		}
	}
	return nil
}

func (i *IPTableRules) DelIfExists() error {
	for _, rule := range i.rules {
		exists, err := i.ipt.Exists(rule.Table, rule.Chain, rule.Rule...)
		if err != nil {
			return errors.NewFirewallError(fmt.Sprintf("failed to check iptables rule [%s]", describe(rule)), err)
		}
		if !exists {
			continue
		}

		log.Infof("Deleting iptables rule [%s]", describe(rule))
		if err := i.ipt.Delete(rule.Table, rule.Chain, rule.Rule...); err != nil {
			return errors.NewFirewallError(fmt.Sprintf("failed to delete iptables rule [%s]", describe(rule)), err)
		}
	}
	return nil
}

// CheckRulesExists reports the presence of every rendered rule.
func (i *IPTableRules) CheckRulesExists() (map[*config.IPTablesRule]bool, error) {
	rules := make(map[*config.IPTablesRule]bool, len(i.rules))

	for _, rule := range i.rules {
		exists, err := i.ipt.Exists(rule.Table, rule.Chain, rule.Rule...)
		if err != nil {
			log.Errorf("Checking iptables rule presence [%s] failed: %v", describe(rule), err)
			return nil, errors.NewFirewallError("failed to check iptables rule", err)
		}
		log.Debugf("Checking iptables rule presence [%s]: exists=%v", describe(rule), exists)
		rules[rule] = exists
	}

	return rules, nil
}
