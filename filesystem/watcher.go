package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DebounceDuration is how long the watcher waits for a burst of changes to
// settle before reporting one.
const DebounceDuration = 200 * time.Millisecond

// Watcher monitors directory trees for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	// Events carries the last changed path of each settled burst. It is
	// closed when the watcher stops.
	Events   chan string
	ignorers []*Ignorer
	done     chan struct{}
	once     sync.Once
}

// NewWatcher creates a Watcher over every root.
func NewWatcher(roots ...string) (*Watcher, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		Events:    make(chan string, 10),
		done:      make(chan struct{}),
	}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		if !info.IsDir() {
			fsWatcher.Close()
			return nil, fmt.Errorf("watch path %s is not a directory", root)
		}

		ign := NewIgnorer(abs)
		w.ignorers = append(w.ignorers, ign)
		for _, dir := range WatchDirs(abs, ign) {
			if err := fsWatcher.Add(dir); err != nil {
				fsWatcher.Close()
				return nil, fmt.Errorf("watch %s: %w", dir, err)
			}
		}
		log.Debug().Str("root", abs).Msg("Watching for changes")
	}

	go w.startLoop()

	return w, nil
}

// Close stops the watcher and releases resources. It is safe to call twice.
func (w *Watcher) Close() {
	w.once.Do(func() {
		close(w.done)
		w.fsWatcher.Close()
	})
}

// shouldIgnore checks path against the ignorer of the root it lives under.
func (w *Watcher) shouldIgnore(path string) bool {
	var best *Ignorer
	for _, ign := range w.ignorers {
		root := ign.Root()
		if path == root || strings.HasPrefix(path, root+string(os.PathSeparator)) {
			if best == nil || len(root) > len(best.Root()) {
				best = ign
			}
		}
	}
	if best == nil {
		return NewIgnorer(filepath.Dir(path)).ShouldIgnore(path)
	}
	return best.ShouldIgnore(path)
}

func (w *Watcher) startLoop() {
	defer close(w.Events)

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldIgnore(event.Name) || !Relevant(event.Name) {
				continue
			}
			// CHMOD events are noisy and never change the catalog.
			if event.Op == fsnotify.Chmod {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if err := w.fsWatcher.Add(event.Name); err != nil {
						log.Warn().Err(err).Str("dir", event.Name).Msg("Could not watch new directory")
					}
				}
			}

			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(DebounceDuration)
			} else {
				timer.Reset(DebounceDuration)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			select {
			case w.Events <- pending:
			default:
				// A reload is already queued.
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("Watcher error")
		}
	}
}
