package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/api"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/domain"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/lists"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/service"
)

type Runner interface {
	Init(args []string, globalArgs *AppContext) error
	Run() error
	Name() string
}

type AppContext struct {
	ConfigPath string
	// ConfigExplicit is set when the path came from a flag or the environment.
	// A missing file is an error then; otherwise defaults are used.
	ConfigExplicit bool
	Verbose        bool
	Version        api.VersionInfo
	// Stdout receives command output. Defaults to os.Stdout.
	Stdout io.Writer
}

func (c *AppContext) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// loadAndValidateConfigOrFail loads configuration from file and validates it.
func loadAndValidateConfigOrFail(ctx *AppContext) (*config.Config, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.ValidateConfig(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadConfig(ctx *AppContext) (*config.Config, error) {
	if _, err := os.Stat(ctx.ConfigPath); errors.Is(err, os.ErrNotExist) && !ctx.ConfigExplicit {
		log.Debugf("Configuration file %s not found, using defaults", ctx.ConfigPath)
		return config.Default(filepath.Dir(ctx.ConfigPath))
	}
	return config.LoadConfig(ctx.ConfigPath)
}

// newBotListService wires the list pipeline from cfg and deps.
func newBotListService(cfg *config.Config, deps *domain.AppDependencies) (*service.BotListService, error) {
	version, err := lists.ParseIPVersion(cfg.General.IPVersion)
	if err != nil {
		return nil, err
	}

	return service.NewBotListService(service.BotListOptions{
		Registry: deps.Registry(),
		Fetcher:  deps.Fetcher(),
		Artifact: deps.Artifact(),
		Version:  version,
		Comment:  cfg.General.AddComment,
		Static:   staticEntries(cfg),
	})
}

func staticEntries(cfg *config.Config) []lists.StaticEntry {
	entries := make([]lists.StaticEntry, 0, len(cfg.StaticLists))
	for _, s := range cfg.StaticLists {
		entries = append(entries, lists.StaticEntry{Label: s.Name, CIDRs: s.CIDRs})
	}
	return entries
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
