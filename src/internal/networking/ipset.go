package networking

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/netip"
	"os/exec"
	"strings"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
)

const ipsetCommand = "ipset"

type IPSet struct {
	Name   string
	Family config.IPFamily
	exec   Executor
}

func BuildIPSet(name string, family config.IPFamily, executor Executor) *IPSet {
	if executor == nil {
		executor = ExecExecutor{}
	}
	return &IPSet{Name: name, Family: family, exec: executor}
}

func (s *IPSet) String() string {
	return fmt.Sprintf("ipset %s (IPv%d)", s.Name, s.Family)
}

func (s *IPSet) run(stdin io.Reader, args ...string) error {
	output, err := s.exec.Run(stdin, ipsetCommand, args...)
	if err != nil {
		msg := fmt.Sprintf("%s %s failed", ipsetCommand, args[0])
		if out := strings.TrimSpace(string(output)); out != "" {
			msg += ": " + out
		}
		return errors.NewFirewallError(msg, err)
	}
	return nil
}

// CreateIfNotExists creates a hash:net set for the family; an existing set is kept.
func (s *IPSet) CreateIfNotExists() error {
	log.Debugf("Creating %s if absent", s)
	return s.run(nil, "create", s.Name, "hash:net", "family", s.Family.IPSetFamily(), "-exist")
}

// IsExists reports whether the set exists. A non-zero exit means it does not.
func (s *IPSet) IsExists() (bool, error) {
	err := s.run(nil, "-n", "list", s.Name)
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return false, nil
	}
	return false, err
}

func (s *IPSet) Flush() error {
	return s.run(nil, "flush", s.Name)
}

func (s *IPSet) Destroy() error {
	return s.run(nil, "destroy", s.Name)
}

// Import adds networks of the set's family through a single "ipset restore".
// Networks of the other family and invalid ones are skipped.
func (s *IPSet) Import(networks []netip.Prefix, flush bool) (int, error) {
	var script strings.Builder
	if flush {
		fmt.Fprintf(&script, "flush %s\n", s.Name)
	}

	added := 0
	for _, network := range networks {
		if !network.IsValid() {
			log.Warnf("Skipping invalid network %v", network)
			continue
		}
		if network.Addr().Is4() != (s.Family == config.Ipv4) {
			continue
		}
		fmt.Fprintf(&script, "add %s %s\n", s.Name, network.String())
		added++
	}
	if script.Len() == 0 {
		return 0, nil
	}
	if err := s.run(strings.NewReader(script.String()), "restore", "-exist"); err != nil {
		return 0, err
	}
	return added, nil
}
