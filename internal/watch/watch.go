// Package watch reloads a definition from the file store whenever its file
// changes on disk, for example when another process or editor saves it.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

const defaultDebounce = 100 * time.Millisecond

// Event reports the state of the watched key after a change settles.
type Event struct {
	Key        string
	Definition *model.Definition
	Output     codegen.Output
	// Removed is set when the file was deleted; Definition is then empty.
	Removed bool
	// Err is set when the file could not be parsed. Definition is empty.
	Err error
}

// Handler receives events on the watcher goroutine.
type Handler func(Event)

// Option customises a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithGenerator sets the generator used for Event.Output.
func WithGenerator(gen *codegen.Generator) Option {
	return func(w *Watcher) {
		if gen != nil {
			w.generator = gen
		}
	}
}

// Watcher observes one key of a file store.
type Watcher struct {
	store     *store.File
	key       string
	path      string
	generator *codegen.Generator
	logger    *zap.Logger
	debounce  time.Duration
	fsw       *fsnotify.Watcher
}

// New starts watching the directory of fs for changes to key. The watch is
// active when New returns; Run delivers the events.
func New(fs *store.File, key string, opts ...Option) (*Watcher, error) {
	if fs == nil {
		return nil, errors.New("watch: file store is required")
	}
	if strings.TrimSpace(key) == "" {
		return nil, store.ErrEmptyKey
	}
	w := &Watcher{
		store:     fs,
		key:       key,
		path:      filepath.Clean(fs.Path(key)),
		generator: codegen.New(),
		logger:    zap.NewNop(),
		debounce:  defaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fsw.Add(fs.Dir()); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch: add %s: %w", fs.Dir(), err)
	}
	w.fsw = fsw
	return w, nil
}

// Path returns the file being watched.
func (w *Watcher) Path() string { return w.path }

// Run delivers events to fn until ctx is cancelled, then releases the
// underlying watcher. It must be called at most once.
func (w *Watcher) Run(ctx context.Context, fn Handler) error {
	defer w.fsw.Close()
	w.logger.Info("watching", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("file event", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))

		case <-timer.C:
			if fn != nil {
				fn(w.reload(ctx))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload(ctx context.Context) Event {
	ev := Event{Key: w.key, Definition: model.NewDefinition()}
	raw, ok, err := w.store.Get(ctx, w.key)
	switch {
	case err != nil:
		ev.Err = err
	case !ok:
		ev.Removed = true
	case raw != "":
		def, err := model.FromJSON([]byte(raw))
		if err != nil {
			w.logger.Warn("stored definition is corrupt", zap.String("key", w.key), zap.Error(err))
			ev.Err = fmt.Errorf("watch: %s: %w", w.path, err)
			break
		}
		ev.Definition = def
	}
	ev.Output = w.generator.Generate(ev.Definition)
	return ev
}
