package service

import (
	"net/netip"
	"strings"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/domain"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/utils"
)

// FirewallService loads the artifact into ipsets and manages the iptables rules using them.
type FirewallService struct {
	ipsetManager   domain.IPSetManager
	networkManager domain.NetworkManager
}

// ApplyResult reports how many networks went into each ipset.
type ApplyResult struct {
	Imported map[string]int `json:"imported"`
	Skipped  int            `json:"skipped"`
}

func NewFirewallService(ipsetManager domain.IPSetManager, networkManager domain.NetworkManager) *FirewallService {
	return &FirewallService{
		ipsetManager:   ipsetManager,
		networkManager: networkManager,
	}
}

// Apply creates the configured ipsets, imports lines into them and adds the iptables rules.
// Lines that are not a CIDR or an address are skipped.
func (s *FirewallService) Apply(fw *config.FirewallConfig, lines []string) (*ApplyResult, error) {
	if fw == nil || len(fw.IPSets()) == 0 {
		return nil, errors.NewConfigError("firewall section is not configured", nil)
	}

	networks, skipped := splitNetworks(lines)
	if skipped > 0 {
		log.Warnf("Skipped %d artifact lines that are not networks", skipped)
	}

	result := &ApplyResult{Imported: make(map[string]int), Skipped: skipped}
	for _, ref := range fw.IPSets() {
		log.Infof("Populating ipset %s...", ref.Name)
		if err := s.ipsetManager.Create(ref.Name, ref.Family); err != nil {
			return nil, err
		}
		added, err := s.ipsetManager.Import(ref.Name, ref.Family, networks, fw.FlushBeforeApplying)
		if err != nil {
			return nil, err
		}
		result.Imported[ref.Name] = added
	}

	if err := s.networkManager.ApplyRules(fw); err != nil {
		return nil, err
	}

	log.Infof("Firewall configuration applied")
	return result, nil
}

// Undo removes the iptables rules, then destroys the ipsets. Destroy failures are logged only.
func (s *FirewallService) Undo(fw *config.FirewallConfig) error {
	if fw == nil {
		return errors.NewConfigError("firewall section is not configured", nil)
	}

	if err := s.networkManager.UndoRules(fw); err != nil {
		return err
	}
	for _, ref := range fw.IPSets() {
		if err := s.ipsetManager.Destroy(ref.Name); err != nil {
			log.Warnf("Failed to destroy ipset %s: %v", ref.Name, err)
		}
	}

	log.Infof("Firewall configuration removed")
	return nil
}

// splitNetworks parses artifact lines, dropping the label and duplicates.
func splitNetworks(lines []string) ([]netip.Prefix, int) {
	seen := make(map[netip.Prefix]struct{}, len(lines))
	networks := make([]netip.Prefix, 0, len(lines))
	skipped := 0

	for _, line := range lines {
		cidr, _, _ := strings.Cut(line, ",")
		pfx, err := utils.ParsePrefixOrAddr(strings.TrimSpace(cidr))
		if err != nil {
			skipped++
			continue
		}
		if _, ok := seen[pfx]; ok {
			continue
		}
		seen[pfx] = struct{}{}
		networks = append(networks, pfx)
	}
	return networks, skipped
}
