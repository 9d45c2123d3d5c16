package commands

import (
	"context"
	"flag"
	"fmt"
	"net"
	"time"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/allowlist"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/api"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/cache"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/config"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/domain"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/service"
)

const shutdownTimeout = 30 * time.Second

func CreateServeCommand() *ServeCommand {
	sc := &ServeCommand{
		fs: flag.NewFlagSet("serve", flag.ContinueOnError),
	}

	sc.fs.StringVar(&sc.bindAddr, "bind", "", "Address to bind the HTTP server (default: server.listen_addr from config)")

	return sc
}

// ServeCommand runs the HTTP API, refreshes the artifact periodically and
// keeps the address lookup index in sync with it.
type ServeCommand struct {
	fs   *flag.FlagSet
	ctx  *AppContext
	cfg  *config.Config
	deps *domain.AppDependencies

	bindAddr string
}

func (s *ServeCommand) Name() string {
	return s.fs.Name()
}

func (s *ServeCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAndValidateConfigOrFail(ctx)
	if err != nil {
		return err
	}
	s.cfg = cfg

	if s.bindAddr == "" {
		s.bindAddr = cfg.Server.ListenAddr
	}

	if s.deps == nil {
		if s.deps, err = domain.NewAppDependencies(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServeCommand) Run() error {
	ln, err := net.Listen("tcp", s.bindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.bindAddr, err)
	}

	ctx, stop := signalContext()
	defer stop()

	return s.serve(ctx, ln)
}

// serve runs until ctx is cancelled or the HTTP server fails. It owns ln.
func (s *ServeCommand) serve(ctx context.Context, ln net.Listener) error {
	botList, err := newBotListService(s.cfg, s.deps)
	if err != nil {
		_ = ln.Close()
		return err
	}
	artifact := botList.Artifact()

	index := allowlist.NewIndex()
	var watcher *allowlist.Watcher
	if s.cfg.Server.WatchEnabled() {
		if watcher, err = allowlist.Watch(artifact.Path(), index, artifact.Lines); err != nil {
			log.Warnf("Failed to watch %s, reloading on refresh only: %v", artifact.Path(), err)
		}
	}
	if watcher == nil {
		reloadIndex(index, artifact)
		botList.OnWrite(func(*cache.WriteResult) { reloadIndex(index, artifact) })
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Warnf("Failed to stop the artifact watcher: %v", err)
			}
		}()
	}

	refresher := NewRestartableRunner(RunnerConfig{Name: "refresh"}, refreshLoop(botList, s.cfg.RefreshInterval()))
	if err := refresher.Start(ctx); err != nil {
		_ = ln.Close()
		return err
	}

	checker := service.NewCheckService(index, s.deps.Verifier())
	server := api.NewServer(s.bindAddr, api.NewRouter(api.NewHandler(botList, checker, s.ctx.Version)))

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Serve(ln)
	}()

	var runErr error
	select {
	case runErr = <-serverErrors:
	case <-ctx.Done():
		log.Infof("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	if err := refresher.Stop(shutdownTimeout); err != nil {
		log.Errorf("Failed to stop refresh loop: %v", err)
	}
	if runErr == nil {
		log.Infof("Server stopped gracefully")
	}
	return runErr
}

// refreshLoop refreshes the artifact at start and then every interval.
// A non-positive interval only refreshes once.
func refreshLoop(botList *service.BotListService, interval time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		refresh := func() {
			outcome, err := botList.Refresh(ctx, false)
			if err != nil {
				log.Errorf("Refresh failed: %v", err)
				return
			}
			log.Debugf("Refresh finished: state=%s regenerated=%v", outcome.State, outcome.Regenerated)
		}

		refresh()
		if interval <= 0 {
			<-ctx.Done()
			return nil
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				refresh()
			}
		}
	}
}

func reloadIndex(index *allowlist.Index, artifact *cache.Artifact) {
	lines, err := artifact.Lines()
	if err != nil {
		log.Warnf("Failed to load the allow-list: %v", err)
		return
	}
	index.Load(lines)
}
