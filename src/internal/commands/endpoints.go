package commands

import (
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/endpoints"
)

func CreateEndpointsCommand() *EndpointsCommand {
	gc := &EndpointsCommand{
		fs: flag.NewFlagSet("endpoints", flag.ContinueOnError),
	}

	gc.fs.BoolVar(&gc.All, "all", false, "List every built-in endpoint, not only the configured ones")

	return gc
}

// EndpointsCommand prints the endpoint registry in artifact order.
type EndpointsCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config

	All bool
}

func (g *EndpointsCommand) Name() string {
	return g.fs.Name()
}

func (g *EndpointsCommand) Init(args []string, ctx *AppContext) error {
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

func (g *EndpointsCommand) Run() error {
	reg := endpoints.Default()
	if !g.All {
		var err error
		if reg, err = reg.Subset(g.cfg.General.Endpoints); err != nil {
			return err
		}
	}

	w := tabwriter.NewWriter(g.ctx.stdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tURL")
	for _, e := range reg.All() {
		fmt.Fprintf(w, "%s\t%s\n", e.Label, e.URL)
	}
	return w.Flush()
}
