package cache

import (
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/errors"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/hashing"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/utils"
)

type State int

const (
	NoArtifact State = iota
	Fresh
	Stale
	Unknown
)

func (s State) String() string {
	switch s {
	case NoArtifact:
		return "no_artifact"
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Option func(*Artifact)

func WithClock(c Clock) Option {
	return func(a *Artifact) { a.clock = c }
}

// WithLineSeparator overrides LineSeparator.
func WithLineSeparator(sep string) Option {
	return func(a *Artifact) { a.separator = sep }
}

// Artifact is the allow-list file at a fixed path.
type Artifact struct {
	path      string
	clock     Clock
	separator string
	mu        sync.Mutex
}

// New returns an Artifact for path. The file does not need to exist.
func New(path string, opts ...Option) (*Artifact, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewConfigError("artifact path cannot be empty", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to resolve artifact path", err)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return nil, errors.NewConfigError(fmt.Sprintf("artifact path is a directory: %s", abs), nil)
	}

	a := &Artifact{path: abs, clock: SystemClock(), separator: LineSeparator}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Artifact) Path() string {
	return a.path
}

func (a *Artifact) Now() time.Time {
	return a.clock.Now()
}

// State classifies the artifact. A DATE error accompanies Unknown.
func (a *Artifact) State() (State, error) {
	info, err := os.Stat(a.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return NoArtifact, nil
	}
	if err != nil {
		return Unknown, errors.NewDateError("cannot read artifact modification time", err)
	}
	if sameDay(info.ModTime(), a.clock.Now()) {
		return Fresh, nil
	}
	return Stale, nil
}

// NeedsRegeneration applies the freshness rules. It never fails: an Unknown
// state is logged and only regenerates when forced.
func (a *Artifact) NeedsRegeneration(force bool) (bool, State) {
	state, err := a.State()
	if err != nil {
		log.Warnf("Artifact %s: %v", a.path, err)
	}
	switch {
	case force:
		return true, state
	case state == NoArtifact, state == Stale:
		return true, state
	default:
		return false, state
	}
}

// WriteResult describes a successful Write.
type WriteResult struct {
	Lines    int    `json:"lines"`
	Bytes    int64  `json:"bytes"`
	Checksum string `json:"checksum"`
	// Changed is false when identical content was already on disk; only the
	// modification time was refreshed in that case.
	Changed bool      `json:"changed"`
	ModTime time.Time `json:"mod_time"`
}

// Write replaces the artifact with lines. An empty slice is rejected with
// EMPTY_RESULT and leaves any existing artifact untouched.
func (a *Artifact) Write(lines []string) (*WriteResult, error) {
	if len(lines) == 0 {
		return nil, errors.NewEmptyResultError("refusing to write an empty artifact")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewInvalidPathError(a.path, err)
	}

	unlock, err := lockFile(utils.SiblingPath(a.path, ".lock"))
	if err != nil {
		return nil, errors.NewInternalError("failed to lock artifact", err)
	}
	defer unlock()

	content := strings.Join(lines, a.separator)
	checksum := hashing.ChecksumOf([]byte(content))
	now := a.clock.Now()

	changed, err := hashing.IsFileChanged(hashing.StaticChecksum(checksum), a.path)
	if err != nil {
		changed = true
	}
	if !changed {
		if err := os.Chtimes(a.path, now, now); err != nil {
			return nil, errors.NewInvalidPathError(a.path, err)
		}
		log.Infof("Artifact %s is not changed, refreshed modification time", a.path)
		return &WriteResult{Lines: len(lines), Bytes: int64(len(content)), Checksum: checksum, ModTime: now}, nil
	}

	written, err := a.writeAtomic(content, now)
	if err != nil {
		return nil, err
	}

	log.Infof("Artifact %s written: %d lines", a.path, len(lines))
	return &WriteResult{Lines: len(lines), Bytes: written, Checksum: checksum, Changed: true, ModTime: now}, nil
}

func (a *Artifact) writeAtomic(content string, mtime time.Time) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(a.path), "."+filepath.Base(a.path)+".*.tmp")
	if err != nil {
		return 0, errors.NewInvalidPathError(a.path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	proxy := hashing.NewMD5WriterProxy(tmp)
	if _, err := io.WriteString(proxy, content); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, errors.NewInternalError("failed to write artifact", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return 0, errors.NewInternalError("failed to sync artifact", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, errors.NewInternalError("failed to close artifact", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		cleanup()
		return 0, errors.NewInternalError("failed to set artifact permissions", err)
	}
	if err := os.Chtimes(tmpPath, mtime, mtime); err != nil {
		cleanup()
		return 0, errors.NewInternalError("failed to set artifact modification time", err)
	}
	if err := os.Rename(tmpPath, a.path); err != nil {
		cleanup()
		return 0, errors.NewInvalidPathError(a.path, err)
	}
	return proxy.Written(), nil
}

// Read returns the current artifact content. A missing artifact reads as empty.
func (a *Artifact) Read() ([]byte, error) {
	b, err := os.ReadFile(a.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInvalidPathError(a.path, err)
	}
	return b, nil
}

// Lines returns the artifact split into lines. Either separator is accepted.
func (a *Artifact) Lines() ([]string, error) {
	b, err := a.Read()
	if err != nil || len(b) == 0 {
		return nil, err
	}
	return SplitLines(string(b)), nil
}

// SplitLines splits artifact content on "\n" or "\r\n", dropping empty lines.
func SplitLines(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := raw[:0]
	for _, l := range raw {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Status is a snapshot of the artifact.
type Status struct {
	Path     string    `json:"path"`
	Exists   bool      `json:"exists"`
	State    State     `json:"state"`
	ModTime  time.Time `json:"mod_time,omitempty"`
	Size     int64     `json:"size"`
	Lines    int       `json:"lines"`
	Checksum string    `json:"checksum,omitempty"`
}

// Status reads the artifact once, counting lines and hashing its content.
func (a *Artifact) Status() (*Status, error) {
	st := &Status{Path: a.path}
	state, stateErr := a.State()
	st.State = state
	if state == NoArtifact {
		return st, nil
	}

	f, err := os.Open(a.path)
	if err != nil {
		if stateErr != nil {
			return st, stateErr
		}
		return st, errors.NewInvalidPathError(a.path, err)
	}
	defer utils.CloseOrWarn(f)

	if info, err := f.Stat(); err == nil {
		st.ModTime = info.ModTime()
	}

	proxy := hashing.NewMD5ReaderProxy(f)
	b, err := io.ReadAll(proxy)
	if err != nil {
		return st, errors.NewInvalidPathError(a.path, err)
	}
	st.Exists = true
	st.Size = int64(len(b))
	st.Lines = len(SplitLines(string(b)))
	st.Checksum, _ = proxy.GetChecksum()
	return st, nil
}
