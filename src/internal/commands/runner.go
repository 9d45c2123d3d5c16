package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
)

// RestartableRunner keeps a background task alive, restarting it with
// exponential backoff when it fails or panics. A nil return ends it.
type RestartableRunner struct {
	name       string
	task       func(ctx context.Context) error
	backoff    time.Duration
	maxBackoff time.Duration

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	restarts int
	lastErr  error
}

// RunnerConfig contains configuration for RestartableRunner.
type RunnerConfig struct {
	Name           string
	RestartBackoff time.Duration // default 1s
	MaxBackoff     time.Duration // default 30s
}

func NewRestartableRunner(cfg RunnerConfig, task func(ctx context.Context) error) *RestartableRunner {
	if cfg.RestartBackoff <= 0 {
		cfg.RestartBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &RestartableRunner{
		name:       cfg.Name,
		task:       task,
		backoff:    cfg.RestartBackoff,
		maxBackoff: cfg.MaxBackoff,
	}
}

// Start runs the task in a goroutine until ctx is cancelled or Stop is called.
func (r *RestartableRunner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done != nil {
		return fmt.Errorf("%s is already running", r.name)
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(runCtx, r.done)
	return nil
}

// Stop cancels the task and waits up to timeout for it to return.
func (r *RestartableRunner) Stop(timeout time.Duration) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if done == nil {
		return nil
	}

	cancel()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%s: timeout waiting for stop", r.name)
	}
}

// Done is closed when the task has ended for good.
func (r *RestartableRunner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *RestartableRunner) Restarts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.restarts
}

func (r *RestartableRunner) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

func (r *RestartableRunner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	backoff := r.backoff
	for {
		err := r.runOnce(ctx)

		r.mu.Lock()
		r.lastErr = err
		r.mu.Unlock()

		if ctx.Err() != nil {
			log.Debugf("%s: stopped", r.name)
			return
		}
		if err == nil {
			log.Infof("%s: exited cleanly", r.name)
			return
		}

		r.mu.Lock()
		r.restarts++
		n := r.restarts
		r.mu.Unlock()

		log.Errorf("%s: failed: %v. Restarting in %v (restart #%d)", r.name, err, backoff, n)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > r.maxBackoff {
			backoff = r.maxBackoff
		}
	}
}

func (r *RestartableRunner) runOnce(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return r.task(ctx)
}
