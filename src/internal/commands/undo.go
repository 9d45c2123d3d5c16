package commands

import (
	"flag"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/domain"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/service"
)

func CreateUndoCommand() *UndoCommand {
	gc := &UndoCommand{
		fs: flag.NewFlagSet("undo", flag.ContinueOnError),
	}
	return gc
}

// UndoCommand reverts "apply".
type UndoCommand struct {
	fs   *flag.FlagSet
	cfg  *config.Config
	deps *domain.AppDependencies
}

func (g *UndoCommand) Name() string {
	return g.fs.Name()
}

func (g *UndoCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	if cfg.Firewall == nil {
		return errors.NewConfigError("no [firewall] section in the configuration, nothing to undo", nil)
	}
	g.cfg = cfg

	if g.deps == nil {
		if g.deps, err = domain.NewAppDependencies(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (g *UndoCommand) Run() error {
	log.Infof("Removing iptables rules and ipsets...")

	fw := service.NewFirewallService(g.deps.IPSetManager(), g.deps.NetworkManager())
	if err := fw.Undo(g.cfg.Firewall); err != nil {
		log.Errorf("Failed to undo firewall configuration: %v", err)
		return err
	}

	log.Infof("Undo completed successfully")
	return nil
}
