package commands

import (
	"flag"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
)

func CreateConfigCommand() *ConfigCommand {
	gc := &ConfigCommand{
		fs: flag.NewFlagSet("config", flag.ContinueOnError),
	}
	return gc
}

// ConfigCommand prints the effective configuration with defaults filled in.
type ConfigCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func (g *ConfigCommand) Name() string {
	return g.fs.Name()
}

func (g *ConfigCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx

	if err := g.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	g.cfg = cfg
	return nil
}

func (g *ConfigCommand) Run() error {
	buf, err := g.cfg.SerializeConfig()
	if err != nil {
		return err
	}
	_, err = buf.WriteTo(g.ctx.stdout())
	return err
}
