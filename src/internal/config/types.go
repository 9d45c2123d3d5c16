package config

import (
	"path/filepath"
	"time"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/utils"
)

type Config struct {
	// General holds general configuration.
	General *GeneralConfig `toml:"general"`
	// StaticLists are appended after endpoint prefixes, in file order.
	StaticLists []*StaticListConfig `toml:"static_list,omitempty"`
	// Server holds settings for the "serve" command.
	Server *ServerConfig `toml:"server"`
	// Verify holds crawler verification settings.
	Verify *VerifyConfig `toml:"verify"`
	// Firewall is optional; "apply" refuses to run without it.
	Firewall *FirewallConfig `toml:"firewall,omitempty"`

	_absConfigFilePath string
}

type GeneralConfig struct {
	// OutputPath is the artifact path, relative to the config directory unless absolute.
	OutputPath string `toml:"output_path" json:"output_path" validate:"required"`
	// IPVersion selects which endpoint prefixes are written: 4, 6 or 46 (both).
	IPVersion int `toml:"ip_version" json:"ip_version" validate:"oneof=4 6 46"`
	// AddComment appends ",label" to every line.
	AddComment bool `toml:"add_comment" json:"add_comment"`
	// FetchTimeoutSeconds bounds each endpoint request.
	FetchTimeoutSeconds int `toml:"fetch_timeout_seconds" json:"fetch_timeout_seconds" validate:"min=10,max=30"`
	// FetchConcurrency limits parallel endpoint requests.
	FetchConcurrency int `toml:"fetch_concurrency" json:"fetch_concurrency" validate:"min=1,max=32"`
	// Endpoints restricts the registry to these labels. Empty means all.
	Endpoints []string `toml:"endpoints,omitempty" json:"endpoints,omitempty" validate:"dive,required"`
}

type StaticListConfig struct {
	Name  string   `toml:"name" json:"name" validate:"required"`
	CIDRs []string `toml:"cidrs" json:"cidrs"`
}

type ServerConfig struct {
	ListenAddr           string `toml:"listen_addr" json:"listen_addr" validate:"hostport_or_empty"`
	RefreshIntervalHours int    `toml:"refresh_interval_hours" json:"refresh_interval_hours" validate:"min=0"`
	// WatchArtifact reloads the lookup index when the artifact changes on disk.
	WatchArtifact *bool `toml:"watch_artifact" json:"watch_artifact"`
}

type VerifyConfig struct {
	Resolver       string   `toml:"resolver" json:"resolver" validate:"required,hostport_or_empty"`
	TimeoutSeconds int      `toml:"timeout_seconds" json:"timeout_seconds" validate:"min=1,max=60"`
	Domains        []string `toml:"domains,omitempty" json:"domains,omitempty" validate:"dive,required"`
}

type FirewallConfig struct {
	IPSetV4 string `toml:"ipset_v4" json:"ipset_v4" validate:"omitempty,ipset_name"`
	IPSetV6 string `toml:"ipset_v6" json:"ipset_v6" validate:"omitempty,ipset_name"`
	// FlushBeforeApplying clears the ipsets before importing the artifact.
	FlushBeforeApplying bool `toml:"flush_before_applying" json:"flush_before_applying"`
	// IPTablesRules are added once per configured ipset. Available variables: {{ipset_name}}, {{family}}.
	IPTablesRules []*IPTablesRule `toml:"iptables_rule,omitempty" json:"iptables_rule,omitempty"`
}

type IPTablesRule struct {
	Chain string   `toml:"chain" json:"chain"`
	Table string   `toml:"table" json:"table"`
	Rule  []string `toml:"rule" json:"rule"`
}

func (c *Config) GetConfigDir() string {
	return filepath.Dir(c._absConfigFilePath)
}

// GetAbsOutputPath returns the artifact path resolved against the config directory.
func (c *Config) GetAbsOutputPath() string {
	return utils.GetAbsolutePath(c.General.OutputPath, c.GetConfigDir())
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.General.FetchTimeoutSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Server.RefreshIntervalHours) * time.Hour
}

// WatchEnabled reports whether the artifact watcher should run. Defaults to true.
func (s *ServerConfig) WatchEnabled() bool {
	return s.WatchArtifact == nil || *s.WatchArtifact
}

func (c *Config) VerifyTimeout() time.Duration {
	return time.Duration(c.Verify.TimeoutSeconds) * time.Second
}

// IPFamily is the address family of an ipset.
type IPFamily uint8

const (
	Ipv4 IPFamily = 4
	Ipv6 IPFamily = 6
)

// IPSetFamily returns "inet" or "inet6", as ipset and the {{family}} template expect.
func (f IPFamily) IPSetFamily() string {
	if f == Ipv6 {
		return "inet6"
	}
	return "inet"
}

// IPSetRef names one configured ipset.
type IPSetRef struct {
	Name   string
	Family IPFamily
}

// IPSets returns the configured ipsets, IPv4 first.
func (f *FirewallConfig) IPSets() []IPSetRef {
	var refs []IPSetRef
	if f.IPSetV4 != "" {
		refs = append(refs, IPSetRef{Name: f.IPSetV4, Family: Ipv4})
	}
	if f.IPSetV6 != "" {
		refs = append(refs, IPSetRef{Name: f.IPSetV6, Family: Ipv6})
	}
	return refs
}
