// Package networking exports the crawler list to the Linux firewall.
//
// The artifact's prefixes are loaded into ipsets (hash:net, one per address
// family) and iptables rules referencing those sets are added from templates.
//
// # Key Components
//
//   - IPSet: wraps the ipset command (create, flush, destroy, bulk restore)
//   - IPSetManagerImpl: facade over IPSet used by the service layer
//   - IPTableRules: templated iptables rules for one ipset
//   - Manager: adds and removes the rules of every configured ipset
//
// # Example Usage
//
//	ipsets := networking.NewIPSetManager()
//	if err := ipsets.Create("reliable_bots_v4", config.Ipv4); err != nil {
//	    log.Fatal(err)
//	}
//
//	mgr := networking.NewManager()
//	if err := mgr.ApplyRules(cfg.Firewall); err != nil {
//	    log.Fatal(err)
//	}
//
// Commands are run through an Executor and iptables through an IPTables
// factory, so both can be replaced in tests.
package networking
