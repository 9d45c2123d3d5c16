package allowlist

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kaleidpixel/reliablebot-ip-list/src/internal/log"
)

// reloadDelay lets a writer finish before the file is read back.
const reloadDelay = 100 * time.Millisecond

// LineSource returns the current artifact lines.
type LineSource func() ([]string, error)

// Watcher reloads an Index whenever the artifact file changes on disk.
// The directory is watched, not the file, so atomic renames are seen.
type Watcher struct {
	path      string
	index     *Index
	source    LineSource
	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Watch loads idx from source and keeps it in sync with the file at path.
func Watch(path string, idx *Index, source LineSource) (*Watcher, error) {
	w := &Watcher{
		path:   path,
		index:  idx,
		source: source,
		done:   make(chan struct{}),
	}
	w.reload()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	w.watcher = fw

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) reload() {
	lines, err := w.source()
	if err != nil {
		log.Warnf("Allow-list reload failed: %v", err)
		return
	}
	w.index.Load(lines)
	log.Infof("Allow-list loaded: %d prefixes", w.index.Size())
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	filename := filepath.Base(w.path)

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				log.Debugf("Artifact changed (%s), reloading allow-list", event.Op)
				select {
				case <-w.done:
					return
				case <-time.After(reloadDelay):
				}
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Artifact watcher error: %v", err)
		}
	}
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
