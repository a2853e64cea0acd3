package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/codegen"
	"github.com/goliatone/go-formbuilder/pkg/controls"
	"github.com/goliatone/go-formbuilder/pkg/dragdrop"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/store"
)

// Snapshot is an immutable view of the session after a gesture.
type Snapshot struct {
	Revision   uint64
	Definition *model.Definition
	Output     codegen.Output
	Layout     string
	Valid      bool
	Errors     map[string][]controls.ValidationError
}

// Listener receives snapshots after each committed gesture.
type Listener func(Snapshot)

// Option customises a Session.
type Option func(*Session)

// WithKey sets the store key. Defaults to store.DefaultKey.
func WithKey(key string) Option {
	return func(s *Session) {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			s.key = trimmed
		}
	}
}

// WithLogger sets the session logger. It is shared with the control builder
// and the reconciler.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGenerator sets the code generator used for snapshots.
func WithGenerator(gen *codegen.Generator) Option {
	return func(s *Session) {
		if gen != nil {
			s.generator = gen
		}
	}
}

// Session serialises gestures over one definition. It is safe for
// concurrent use.
type Session struct {
	mu         sync.Mutex
	store      store.Store
	key        string
	def        *model.Definition
	form       *controls.GroupControl
	builder    *controls.Builder
	reconciler *dragdrop.Reconciler
	generator  *codegen.Generator
	logger     *zap.Logger
	revision   uint64

	subsMu  sync.Mutex
	subs    map[int]Listener
	nextSub int
}

// New creates a session over an empty definition. Call Load to restore the
// stored one.
func New(st store.Store, opts ...Option) *Session {
	s := &Session{
		store:  st,
		key:    store.DefaultKey,
		logger: zap.NewNop(),
		subs:   make(map[int]Listener),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.store == nil {
		s.store = store.NewMemory()
	}
	if s.generator == nil {
		s.generator = codegen.New()
	}
	s.builder = controls.NewBuilder(controls.WithLogger(s.logger))
	s.reconciler = dragdrop.New(dragdrop.WithBuilder(s.builder), dragdrop.WithLogger(s.logger))
	s.def = model.NewDefinition()
	s.form = s.builder.BuildForm(s.def)
	return s
}

// Key returns the store key of the session.
func (s *Session) Key() string { return s.key }

// Load replaces the session state with the stored definition. A missing key
// loads an empty definition. A corrupt blob also loads an empty definition
// and returns an error wrapping ErrCorruptDefinition.
func (s *Session) Load(ctx context.Context) error {
	def, err := store.Load(ctx, s.store, s.key)
	switch {
	case err == nil:
	case errors.Is(err, model.ErrInvalidDefinition):
		s.logger.Warn("stored definition is corrupt, starting empty", zap.String("key", s.key), zap.Error(err))
		err = fmt.Errorf("%w: %w", ErrCorruptDefinition, err)
	default:
		return err
	}

	s.mu.Lock()
	s.def = def
	s.form = s.builder.BuildForm(def)
	s.reconciler.Cancel()
	s.revision++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return err
}

// Snapshot returns a cloned view of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Definition returns a deep copy of the definition.
func (s *Session) Definition() *model.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.def.Clone()
}

// Form returns the live control tree. It is only stable between gestures;
// use SetValue to change control values.
func (s *Session) Form() *controls.GroupControl {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetValue sets the value of the control bound to a field and returns its
// validation errors. The definition is not changed.
func (s *Session) SetValue(id string, value any) ([]controls.ValidationError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctrl, ok := s.form.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ctrl.SetValue(value)
	return ctrl.Errors(), nil
}

// Subscribe registers fn for snapshots of committed gestures and returns a
// function that removes it.
func (s *Session) Subscribe(fn Listener) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// commit runs fn under the lock and, when it succeeds, saves and notifies.
// A save failure is returned after subscribers are notified, since the
// in-memory state has already changed.
func (s *Session) commit(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if err := fn(); err != nil {
		s.mu.Unlock()
		s.logger.Debug("gesture failed", zap.String("op", op), zap.Error(err))
		return err
	}
	s.revision++
	saveErr := store.Save(ctx, s.store, s.key, s.def)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("gesture committed", zap.String("op", op), zap.Uint64("revision", snap.Revision))
	s.notify(snap)
	if saveErr != nil {
		s.logger.Error("save failed", zap.String("key", s.key), zap.Error(saveErr))
		return fmt.Errorf("editor: %s: %w", op, saveErr)
	}
	return nil
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Revision:   s.revision,
		Definition: s.def.Clone(),
		Output:     s.generator.Generate(s.def),
		Layout:     s.form.String(),
		Valid:      s.form.Valid(),
		Errors:     s.form.Errors(),
	}
}

func (s *Session) notify(snap Snapshot) {
	s.subsMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]Listener, 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}
