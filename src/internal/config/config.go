package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	domainerrors "github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
)

var (
	ipsetRegexp = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

const (
	DefaultOutputFile          = "googlebot_ip_list.csv"
	DefaultIPVersion           = 46
	DefaultFetchTimeoutSeconds = 30
	DefaultFetchConcurrency    = 8
	DefaultListenAddr          = "127.0.0.1:8080"
	DefaultRefreshHours        = 24
	DefaultResolver            = "1.1.1.1:53"
	DefaultVerifyTimeout       = 5
)

const (
	IPTABLES_TMPL_IPSET  = "ipset_name"
	IPTABLES_TMPL_FAMILY = "family"
)

// LoadConfig reads, decodes and fills defaults for the configuration at configPath.
// It does not validate; call ValidateConfig for that.
func LoadConfig(configPath string) (*Config, error) {
	configFile, err := absPath(configPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, domainerrors.NewConfigError(fmt.Sprintf("configuration file not found: %s", configFile), err)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, domainerrors.NewConfigError("failed to read config file", err)
	}

	var config Config
	dec := toml.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			log.Errorf("%s", derr.String())
			row, col := derr.Position()
			return nil, domainerrors.NewConfigError(fmt.Sprintf("failed to parse config file at line %d, column %d", row, col), err)
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			log.Errorf("%s", serr.String())
			return nil, domainerrors.NewConfigError("unknown keys in config file", err)
		}
		return nil, domainerrors.NewConfigError("failed to parse config file", err)
	}

	config._absConfigFilePath = configFile
	config.applyDefaults()

	log.Debugf("Configuration file path: %s", configFile)
	log.Debugf("Output path: %s", config.GetAbsOutputPath())

	return &config, nil
}

// Default returns a configuration with every default applied, as if an empty
// file named botiplist.toml existed in baseDir.
func Default(baseDir string) (*Config, error) {
	configFile, err := absPath(filepath.Join(baseDir, "botiplist.toml"))
	if err != nil {
		return nil, err
	}
	config := &Config{_absConfigFilePath: configFile}
	config.applyDefaults()
	return config, nil
}

func absPath(configPath string) (string, error) {
	configFile := filepath.Clean(configPath)
	if filepath.IsAbs(configFile) {
		return configFile, nil
	}
	path, err := filepath.Abs(configFile)
	if err != nil {
		return "", domainerrors.NewConfigError("failed to get absolute path", err)
	}
	return path, nil
}

func (c *Config) applyDefaults() {
	if c.General == nil {
		c.General = &GeneralConfig{}
	}
	g := c.General
	if g.OutputPath == "" {
		g.OutputPath = DefaultOutputFile
	}
	if g.IPVersion == 0 {
		g.IPVersion = DefaultIPVersion
	}
	if g.FetchTimeoutSeconds == 0 {
		g.FetchTimeoutSeconds = DefaultFetchTimeoutSeconds
	}
	if g.FetchConcurrency == 0 {
		g.FetchConcurrency = DefaultFetchConcurrency
	}

	if c.Server == nil {
		c.Server = &ServerConfig{}
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.RefreshIntervalHours == 0 {
		c.Server.RefreshIntervalHours = DefaultRefreshHours
	}

	if c.Verify == nil {
		c.Verify = &VerifyConfig{}
	}
	if c.Verify.Resolver == "" {
		c.Verify.Resolver = DefaultResolver
	}
	if c.Verify.TimeoutSeconds == 0 {
		c.Verify.TimeoutSeconds = DefaultVerifyTimeout
	}
}

// SerializeConfig renders the effective configuration as TOML.
func (c *Config) SerializeConfig() (*bytes.Buffer, error) {
	buf := bytes.Buffer{}
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return &buf, nil
}
