// Package config handles configuration file parsing and validation for botiplist.
//
// The configuration is a TOML file decoded strictly: unknown keys and type
// mismatches are errors. In particular add_comment accepts only a TOML
// boolean; 1 or "1" is rejected instead of being coerced.
//
// # Configuration Structure
//
//   - [general]: output artifact path, IP version mode (4, 6 or 46),
//     provenance comments, fetch timeout and concurrency, endpoint subset
//   - [[static_list]]: user-supplied labelled CIDR lists, kept in file order
//   - [server]: HTTP listen address and background refresh interval
//   - [verify]: resolver used for crawler reverse-DNS verification
//   - [firewall]: optional ipset names and iptables rule templates
//
// # Example Usage
//
//	cfg, err := config.LoadConfig("/etc/botiplist.toml")
//	if err != nil {
//	    log.Fatalf("%v", err)
//	}
//	if err := cfg.ValidateConfig(); err != nil {
//	    log.Fatalf("%v", err)
//	}
//	fmt.Println(cfg.GetAbsOutputPath())
//
// Relative paths inside the file are resolved against the directory that
// contains the configuration file.
package config
