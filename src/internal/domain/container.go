package domain

import (
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/cache"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/endpoints"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/fetcher"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/networking"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/verify"
)

// AppDependencies is a dependency injection container that holds all application dependencies.
//
// Usage:
//
//	deps, err := domain.NewAppDependencies(cfg)
//	if err != nil {
//	    return err
//	}
//	results := deps.Fetcher().FetchAll(ctx, deps.Registry().Requests())
type AppDependencies struct {
	registry *endpoints.Registry
	fetcher  Fetcher
	artifact *cache.Artifact

	ipsetManager   IPSetManager
	networkManager NetworkManager
	verifier       Verifier
}

// NewAppDependencies creates a container with production implementations
// configured from cfg. cfg must already be validated.
func NewAppDependencies(cfg *config.Config) (*AppDependencies, error) {
	if cfg == nil || cfg.General == nil || cfg.Verify == nil {
		return nil, errors.NewConfigError("configuration is not loaded", nil)
	}

	registry, err := endpoints.Default().Subset(cfg.General.Endpoints)
	if err != nil {
		return nil, err
	}

	artifact, err := cache.New(cfg.GetAbsOutputPath())
	if err != nil {
		return nil, err
	}

	verifier, err := verify.New(cfg.Verify.Resolver,
		verify.WithDomains(cfg.Verify.Domains),
		verify.WithTimeout(cfg.VerifyTimeout()),
		verify.WithCache(verify.DefaultCacheSize, verify.DefaultCacheTTL),
	)
	if err != nil {
		return nil, err
	}

	return &AppDependencies{
		registry: registry,
		fetcher: fetcher.New(
			fetcher.WithTimeout(cfg.FetchTimeout()),
			fetcher.WithConcurrency(cfg.General.FetchConcurrency),
		),
		artifact:       artifact,
		ipsetManager:   networking.NewIPSetManager(),
		networkManager: networking.NewManager(),
		verifier:       verifier,
	}, nil
}

// NewTestDependencies creates a container from the given implementations.
// Nil firewall and verifier collaborators stay nil.
func NewTestDependencies(
	registry *endpoints.Registry,
	fetcher Fetcher,
	artifact *cache.Artifact,
	ipsetManager IPSetManager,
	networkManager NetworkManager,
	verifier Verifier,
) *AppDependencies {
	return &AppDependencies{
		registry:       registry,
		fetcher:        fetcher,
		artifact:       artifact,
		ipsetManager:   ipsetManager,
		networkManager: networkManager,
		verifier:       verifier,
	}
}

func (d *AppDependencies) Registry() *endpoints.Registry {
	return d.registry
}

func (d *AppDependencies) Fetcher() Fetcher {
	return d.fetcher
}

func (d *AppDependencies) Artifact() *cache.Artifact {
	return d.artifact
}

// IPSetManager returns the ipset manager.
func (d *AppDependencies) IPSetManager() IPSetManager {
	return d.ipsetManager
}

// NetworkManager returns the iptables rules manager.
func (d *AppDependencies) NetworkManager() NetworkManager {
	return d.networkManager
}

// Verifier returns the reverse DNS verifier.
func (d *AppDependencies) Verifier() Verifier {
	return d.verifier
}
