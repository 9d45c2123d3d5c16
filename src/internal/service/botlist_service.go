package service

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/cache"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/domain"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/download"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/endpoints"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/lists"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/metrics"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/utils"
)

// NoContentMessage is reported when the artifact is empty and no regeneration was forced.
const NoContentMessage = "File is not contents."

// BotListOptions holds the collaborators and settings of a BotListService.
type BotListOptions struct {
	Registry *endpoints.Registry
	Fetcher  domain.Fetcher
	Artifact *cache.Artifact
	Version  lists.IPVersion
	Comment  bool
	Static   []lists.StaticEntry
}

// Outcome describes what a Refresh did.
type Outcome struct {
	// State is the artifact state observed before regenerating.
	State cache.State `json:"state"`
	// Regenerated is true when endpoints were fetched.
	Regenerated bool `json:"regenerated"`
	// Written is true when the artifact was replaced or its modification time refreshed.
	Written bool               `json:"written"`
	Write   *cache.WriteResult `json:"write,omitempty"`
	// Skipped lists endpoints that contributed nothing to this regeneration.
	Skipped []string `json:"skipped,omitempty"`
}

// BotListService regenerates the crawler IP list and serves reads of it.
type BotListService struct {
	registry *endpoints.Registry
	fetcher  domain.Fetcher
	artifact *cache.Artifact
	version  lists.IPVersion
	comment  bool
	static   []lists.StaticEntry

	group singleflight.Group

	mu        sync.RWMutex
	listeners []func(*cache.WriteResult)
}

// NewBotListService validates opts and creates the service.
func NewBotListService(opts BotListOptions) (*BotListService, error) {
	if opts.Registry == nil || opts.Registry.Len() == 0 {
		return nil, errors.NewConfigError("endpoint registry is empty", nil)
	}
	if opts.Fetcher == nil {
		return nil, errors.NewConfigError("fetcher is not set", nil)
	}
	if opts.Artifact == nil {
		return nil, errors.NewConfigError("artifact is not set", nil)
	}
	if _, err := lists.ParseIPVersion(int(opts.Version)); err != nil {
		return nil, err
	}

	return &BotListService{
		registry: opts.Registry,
		fetcher:  opts.Fetcher,
		artifact: opts.Artifact,
		version:  opts.Version,
		comment:  opts.Comment,
		static:   opts.Static,
	}, nil
}

func (s *BotListService) Registry() *endpoints.Registry {
	return s.registry
}

func (s *BotListService) Artifact() *cache.Artifact {
	return s.artifact
}

// OnWrite registers fn to be called after every successful artifact write.
func (s *BotListService) OnWrite(fn func(*cache.WriteResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Refresh regenerates the artifact when it is missing, stale or force is set.
// Concurrent calls with the same force value share one regeneration. The
// shared run ignores ctx cancellation; each request stays bounded by the
// fetcher timeout.
//
// Endpoint failures and an empty assembled list are not errors: the former are
// skipped, the latter leaves the existing artifact untouched.
func (s *BotListService) Refresh(ctx context.Context, force bool) (*Outcome, error) {
	key := "refresh"
	if force {
		key = "refresh-force"
	}
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.refresh(flightCtx, force)
	})
	if v == nil {
		return nil, err
	}
	return v.(*Outcome), err
}

func (s *BotListService) refresh(ctx context.Context, force bool) (*Outcome, error) {
	regenerate, state := s.artifact.NeedsRegeneration(force)
	outcome := &Outcome{State: state}
	if !regenerate {
		log.Debugf("Artifact %s is %s, regeneration is not needed", s.artifact.Path(), state)
		metrics.ObserveRegeneration(metrics.OutcomeSkipped)
		return outcome, nil
	}

	log.Infof("Regenerating %s (state: %s, force: %v)", s.artifact.Path(), state, force)
	outcome.Regenerated = true

	results := s.fetcher.FetchAll(ctx, s.registry.Requests())
	set := lists.BuildPrefixSet(s.registry, results)
	outcome.Skipped = set.Skipped

	lines, err := lists.Assemble(set, s.version, s.static, s.comment)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeEmptyResult) {
			log.Warnf("Nothing to write, keeping existing artifact %s", s.artifact.Path())
			metrics.ObserveRegeneration(metrics.OutcomeEmpty)
			return outcome, nil
		}
		metrics.ObserveRegeneration(metrics.OutcomeFailed)
		return outcome, err
	}

	res, err := s.artifact.Write(lists.Render(lines))
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeEmptyResult) {
			metrics.ObserveRegeneration(metrics.OutcomeEmpty)
			return outcome, nil
		}
		log.Errorf("Failed to write artifact %s: %v", s.artifact.Path(), err)
		metrics.ObserveRegeneration(metrics.OutcomeFailed)
		return outcome, err
	}

	outcome.Written = true
	outcome.Write = res
	metrics.ObserveRegeneration(metrics.OutcomeOK)
	metrics.SetArtifact(res.Lines, res.ModTime)

	s.mu.RLock()
	listeners := append([]func(*cache.WriteResult){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(res)
	}

	return outcome, nil
}

// Read refreshes the artifact if needed and reports it to sink.
//
// An empty artifact without force reports NoContent. Otherwise a headless sink
// receives the artifact path, echo renders the content inline, and anything
// else is served as a file download. Only an unreadable artifact on the
// download path is returned as an error; regeneration failures are logged.
func (s *BotListService) Read(ctx context.Context, force, echo bool, sink Sink) error {
	if _, err := s.Refresh(ctx, force); err != nil {
		log.Warnf("Refresh failed, serving the existing artifact: %v", err)
	}

	content, err := s.artifact.Read()
	if err != nil {
		log.Warnf("Failed to read artifact: %v", err)
		content = nil
	}

	switch {
	case len(content) == 0 && !force:
		return sink.NoContent()
	case sink.Headless():
		return sink.Path(s.artifact.Path())
	case echo:
		return sink.Inline(content)
	}

	resp, err := download.Open(s.artifact.Path(), "")
	if err != nil {
		return err
	}
	defer utils.CloseOrWarn(resp)
	return sink.Download(resp)
}

// Status returns a snapshot of the artifact.
func (s *BotListService) Status() (*cache.Status, error) {
	return s.artifact.Status()
}

// Lines returns the current artifact lines without refreshing.
func (s *BotListService) Lines() ([]string, error) {
	return s.artifact.Lines()
}
