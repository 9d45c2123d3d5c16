package commands

import (
	"flag"
	"fmt"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/domain"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/service"
)

func CreateApplyCommand() *ApplyCommand {
	gc := &ApplyCommand{
		fs: flag.NewFlagSet("apply", flag.ContinueOnError),
	}

	gc.fs.BoolVar(&gc.Refresh, "refresh", false, "Refresh the list before loading it into ipsets")

	return gc
}

// ApplyCommand loads the artifact into the configured ipsets and adds the iptables rules.
type ApplyCommand struct {
	fs   *flag.FlagSet
	ctx  *AppContext
	cfg  *config.Config
	deps *domain.AppDependencies

	Refresh bool
}

func (g *ApplyCommand) Name() string {
	return g.fs.Name()
}

func (g *ApplyCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx

	if err := g.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	if cfg.Firewall == nil || len(cfg.Firewall.IPSets()) == 0 {
		return fmt.Errorf("no ipsets configured in the [firewall] section, nothing to apply")
	}
	g.cfg = cfg

	if g.deps == nil {
		if g.deps, err = domain.NewAppDependencies(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (g *ApplyCommand) Run() error {
	botList, err := newBotListService(g.cfg, g.deps)
	if err != nil {
		return err
	}

	if g.Refresh {
		ctx, stop := signalContext()
		_, err := botList.Refresh(ctx, false)
		stop()
		if err != nil {
			log.Warnf("Refresh failed, applying the existing list: %v", err)
		}
	}

	lines, err := botList.Lines()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", botList.Artifact().Path(), err)
	}
	if len(lines) == 0 {
		return fmt.Errorf("%s is empty, run \"read\" first", botList.Artifact().Path())
	}

	fw := service.NewFirewallService(g.deps.IPSetManager(), g.deps.NetworkManager())
	res, err := fw.Apply(g.cfg.Firewall, lines)
	if err != nil {
		return fmt.Errorf("failed to apply firewall configuration: %w", err)
	}

	for name, n := range res.Imported {
		log.Infof("ipset %s: %d networks", name, n)
	}
	return nil
}
