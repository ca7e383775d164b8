package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/vanderheijden86/sectionview/pkg/loader"
	"github.com/vanderheijden86/sectionview/pkg/model"
)

// CatalogChangedMsg is sent when the catalog file changed on disk and parsed
// cleanly.
type CatalogChangedMsg struct {
	Catalog *model.Catalog
	Hash    string
}

// CatalogErrorMsg is sent when the changed catalog could not be loaded. The
// list keeps showing the previous catalog.
type CatalogErrorMsg struct {
	Err error
}

// CatalogWatcher reloads the catalog file when it changes. It watches the
// file's directory because editors usually replace files instead of writing
// them in place.
type CatalogWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	sender   Sender
	debounce time.Duration
	log      *zap.Logger

	mu       sync.Mutex
	lastHash string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCatalogWatcher creates a watcher for the catalog at path. lastHash is the
// hash of the catalog already shown; identical content is not re-sent.
func NewCatalogWatcher(path, lastHash string, sender Sender, log *zap.Logger) (*CatalogWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CatalogWatcher{
		path:     filepath.Clean(path),
		watcher:  fw,
		sender:   sender,
		debounce: 200 * time.Millisecond,
		log:      log,
		lastHash: lastHash,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching.
func (w *CatalogWatcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	go w.watchLoop()
	return nil
}

// Stop halts the watcher. It is safe to call more than once.
func (w *CatalogWatcher) Stop() {
	w.cancel()
	_ = w.watcher.Close()
	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
	}
}

func (w *CatalogWatcher) watchLoop() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Only reload on content changes (not chmod, etc)
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Trailing debounce: reload once the burst is over
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

// reload loads the catalog and notifies the program unless nothing changed.
func (w *CatalogWatcher) reload() {
	cat, hash, err := loader.LoadCatalog(w.path)
	if err != nil {
		w.log.Warn("catalog reload failed", zap.String("path", w.path), zap.Error(err))
		w.send(CatalogErrorMsg{Err: err})
		return
	}

	w.mu.Lock()
	same := hash == w.lastHash
	w.lastHash = hash
	w.mu.Unlock()
	if same {
		w.log.Debug("catalog unchanged", zap.String("hash", hashPrefix(hash)))
		return
	}

	w.log.Info("catalog changed", zap.Int("sections", len(cat.Sections)), zap.String("hash", hashPrefix(hash)))
	w.send(CatalogChangedMsg{Catalog: cat, Hash: hash})
}

func (w *CatalogWatcher) send(msg any) {
	if w.sender != nil {
		w.sender.Send(msg)
	}
}

// SetLastHash records a catalog the program loaded by other means, so the
// watcher does not send it again.
func (w *CatalogWatcher) SetLastHash(hash string) {
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()
}

// hashPrefix returns up to 16 characters of a hash for logging.
func hashPrefix(hash string) string {
	if len(hash) > 16 {
		return hash[:16]
	}
	return hash
}
