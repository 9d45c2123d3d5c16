package commands

import (
	"flag"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/domain"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/service"
)

func CreateReadCommand() *ReadCommand {
	gc := &ReadCommand{
		fs: flag.NewFlagSet("read", flag.ContinueOnError),
	}

	gc.fs.BoolVar(&gc.Force, "force", false, "Regenerate the list even if it is fresh")
	gc.fs.BoolVar(&gc.Echo, "echo", false, "Print the list instead of its path")

	return gc
}

// ReadCommand regenerates the artifact when needed and reports its path.
type ReadCommand struct {
	fs   *flag.FlagSet
	ctx  *AppContext
	cfg  *config.Config
	deps *domain.AppDependencies

	Force bool
	Echo  bool
}

func (g *ReadCommand) Name() string {
	return g.fs.Name()
}

func (g *ReadCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx

	if err := g.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	g.cfg = cfg

	if g.deps == nil {
		if g.deps, err = domain.NewAppDependencies(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (g *ReadCommand) Run() error {
	svc, err := newBotListService(g.cfg, g.deps)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	// WriterSink is headless and would only print the path.
	if g.Echo {
		return svc.Read(ctx, g.Force, true, echoSink{service.NewWriterSink(g.ctx.stdout())})
	}
	return svc.Read(ctx, g.Force, false, service.NewWriterSink(g.ctx.stdout()))
}

// echoSink prints the content instead of the path.
type echoSink struct {
	*service.WriterSink
}

func (echoSink) Headless() bool { return false }
