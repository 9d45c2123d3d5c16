package commands

import (
	"flag"
	"fmt"
	"net/netip"
	"strings"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/allowlist"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/domain"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/service"
)

func CreateVerifyCommand() *VerifyCommand {
	gc := &VerifyCommand{
		fs: flag.NewFlagSet("verify", flag.ContinueOnError),
	}

	gc.fs.BoolVar(&gc.SkipDNS, "skip-dns", false, "Only look the address up in the list")

	return gc
}

// VerifyCommand checks addresses against the artifact and reverse DNS.
type VerifyCommand struct {
	fs    *flag.FlagSet
	ctx   *AppContext
	cfg   *config.Config
	deps  *domain.AppDependencies
	addrs []netip.Addr

	SkipDNS bool
}

func (g *VerifyCommand) Name() string {
	return g.fs.Name()
}

func (g *VerifyCommand) Init(args []string, ctx *AppContext) error {
	g.ctx = ctx

	if err := g.fs.Parse(args); err != nil {
		return err
	}
	if g.fs.NArg() == 0 {
		return fmt.Errorf("usage: verify [-skip-dns] <ip> [<ip>...]")
	}
	g.addrs = g.addrs[:0]
	for _, arg := range g.fs.Args() {
		addr, err := netip.ParseAddr(arg)
		if err != nil {
			return fmt.Errorf("invalid IP address %q: %w", arg, err)
		}
		g.addrs = append(g.addrs, addr)
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

func (g *VerifyCommand) Run() error {
	lines, err := g.deps.Artifact().Lines()
	if err != nil {
		log.Warnf("Failed to read %s, only DNS verification is possible: %v", g.deps.Artifact().Path(), err)
	}
	index := allowlist.Build(lines)
	if index.Size() == 0 {
		log.Warnf("The allow-list is empty, run \"read\" first")
	}

	checker := service.NewCheckService(index, g.deps.Verifier())
	runCtx, stop := signalContext()
	defer stop()

	out := g.ctx.stdout()
	for _, addr := range g.addrs {
		res, err := checker.Check(runCtx, addr, !g.SkipDNS)
		if err != nil {
			return fmt.Errorf("failed to verify %s: %w", addr, err)
		}
		fmt.Fprintln(out, formatCheckResult(res))
	}
	return nil
}

func formatCheckResult(res *service.CheckResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", res.Addr)
	if res.Crawler {
		b.WriteString("crawler")
	} else {
		b.WriteString("not a crawler")
	}

	if res.Entry != nil {
		fmt.Fprintf(&b, " (listed in %s", res.Entry.Prefix)
		if res.Entry.Label != "" {
			fmt.Fprintf(&b, " as %s", res.Entry.Label)
		}
		b.WriteString(")")
	} else {
		b.WriteString(" (not listed)")
	}

	if v := res.Verify; v != nil {
		if v.Verified {
			fmt.Fprintf(&b, ", verified as %s", v.Hostname)
		} else {
			fmt.Fprintf(&b, ", DNS check failed: %s", v.Reason)
		}
	}
	return b.String()
}
