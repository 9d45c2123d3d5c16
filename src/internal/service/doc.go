// Package service orchestrates list regeneration, reads and firewall export.
//
// Services sit between the command layer (CLI and HTTP API) and the lower level
// packages (fetcher, lists, cache, networking). Both front ends call the same
// service methods, so behavior is identical regardless of how it is triggered.
//
// # Key Services
//
// BotListService: freshness-gated regeneration and the read operation.
//
// CheckService: allow-list lookups with optional reverse DNS verification.
//
// FirewallService: ipset import and iptables rules for the artifact.
//
// # Example Usage
//
//	svc, err := service.NewBotListService(service.BotListOptions{
//	    Registry: endpoints.Default(),
//	    Fetcher:  fetcher.New(),
//	    Artifact: artifact,
//	    Version:  lists.DualStack,
//	})
//	if err != nil {
//	    log.Fatalf("%v", err)
//	}
//	err = svc.Read(ctx, false, false, sink)
package service
