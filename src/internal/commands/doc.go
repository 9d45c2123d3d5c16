// Package commands implements the botiplist subcommands.
//
// Every command implements Runner:
//   - Init(): parse arguments, load and validate configuration, build dependencies
//   - Run(): execute through the service layer
//   - Name(): command name used for dispatch
//
// # Available Commands
//
//   - read: regenerate the list if it is stale and print its path (or content with -echo)
//   - serve: HTTP API with periodic refresh and a live address lookup index
//   - apply: load the list into ipsets and add iptables rules
//   - undo: remove the iptables rules and ipsets created by apply
//   - verify: check addresses against the list and reverse DNS
//   - endpoints: print the endpoint registry
//   - config: print the effective configuration
package commands
