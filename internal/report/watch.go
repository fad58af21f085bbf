package report

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fusion-energy/neutronics.report/internal/materials"
	"github.com/fusion-energy/neutronics.report/internal/monitoring"
)

// debounceWindow coalesces the burst of filesystem events editors fire for
// a single save.
const debounceWindow = 100 * time.Millisecond

// DeckWatcher reports changes to a single material deck file. The watch is
// installed on the containing directory so that editors which replace the
// file via rename are still observed; events for sibling files are dropped.
type DeckWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewDeckWatcher starts watching the deck at path. The deck path arrives on
// Events after each observed change, at most once per debounce window.
func NewDeckWatcher(path string) (*DeckWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &DeckWatcher{
		watcher: fsw,
		path:    abs,
		Events:  make(chan string, 8),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watch. Safe to call more than once. Events and Errors are
// closed once the event loop has wound down.
func (w *DeckWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// run is the only sender on Events and Errors, and closes both on exit.
func (w *DeckWatcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	base := filepath.Base(w.path)
	var lastTrigger time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if now := time.Now(); now.Sub(lastTrigger) >= debounceWindow {
				lastTrigger = now
				select {
				case w.Events <- w.path:
				default:
					// Consumer is behind; the next change re-triggers.
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// WatchDeck reloads the material deck whenever the file it was loaded from
// changes on disk. A deck that fails to parse is logged and skipped so the
// previously loaded deck stays active. Blocks until ctx is cancelled.
func (ws *WebServer) WatchDeck(ctx context.Context) error {
	if ws.deckPath == "" {
		return fmt.Errorf("no deck path configured")
	}

	watcher, err := NewDeckWatcher(ws.deckPath)
	if err != nil {
		return fmt.Errorf("failed to watch deck %s: %w", ws.deckPath, err)
	}
	defer watcher.Close()

	monitoring.Logf("[DeckWatcher] watching %s", ws.deckPath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			deck, err := materials.LoadDeck(path)
			if err != nil {
				monitoring.Logf("[DeckWatcher] reload of %s failed, keeping previous deck: %v", path, err)
				continue
			}
			ws.SetDeck(deck)
			monitoring.Logf("[DeckWatcher] reloaded %s (%d materials)", path, len(deck.Names()))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			monitoring.Logf("[DeckWatcher] watch error: %v", err)
		}
	}
}
