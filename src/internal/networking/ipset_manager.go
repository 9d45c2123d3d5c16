package networking

import (
	"net/netip"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
)

// IPSetManagerImpl implements the domain.IPSetManager interface.
type IPSetManagerImpl struct {
	exec Executor
}

// NewIPSetManager creates a manager that runs the ipset binary.
func NewIPSetManager() *IPSetManagerImpl {
	return &IPSetManagerImpl{exec: ExecExecutor{}}
}

// NewIPSetManagerWithExecutor creates a manager with a custom command executor.
func NewIPSetManagerWithExecutor(executor Executor) *IPSetManagerImpl {
	return &IPSetManagerImpl{exec: executor}
}

// Create creates a new ipset with the specified name and IP family.
// If the ipset already exists, this is a no-op.
func (m *IPSetManagerImpl) Create(name string, family config.IPFamily) error {
	return BuildIPSet(name, family, m.exec).CreateIfNotExists()
}

// Flush removes all entries from the specified ipset.
func (m *IPSetManagerImpl) Flush(name string) error {
	return BuildIPSet(name, config.Ipv4, m.exec).Flush()
}

// Destroy removes the ipset. It fails while iptables rules still reference it.
func (m *IPSetManagerImpl) Destroy(name string) error {
	return BuildIPSet(name, config.Ipv4, m.exec).Destroy()
}

// Import loads networks of the given family into the ipset, optionally flushing it first.
func (m *IPSetManagerImpl) Import(name string, family config.IPFamily, networks []netip.Prefix, flush bool) (int, error) {
	added, err := BuildIPSet(name, family, m.exec).Import(networks, flush)
	if err != nil {
		return 0, err
	}
	log.Infof("Imported %d networks into ipset %s", added, name)
	return added, nil
}
