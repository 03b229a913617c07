// Package analysis holds the most recent statement analysis and keeps it in
// sync with the durable key-value store.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/cashraaga/internal/model"
	"github.com/theirongolddev/cashraaga/internal/store"
)

// StorageKey is the durable key the analysis is persisted under.
const StorageKey = "cashraaga-analysis"

// ErrAlreadyRehydrated is returned by a second Rehydrate on the same Store.
var ErrAlreadyRehydrated = errors.New("analysis: store already rehydrated")

// Listener receives a copy of the analysis after every successful Set.
// A nil argument means the analysis was cleared.
type Listener func(*model.AnalysisResult)

// Store is the single owner of the current analysis. Construct it once at
// startup and hand it to every consumer.
type Store struct {
	kv  store.KV
	log *zap.Logger

	mu         sync.RWMutex
	value      *model.AnalysisResult
	rehydrated bool

	// notifyMu is taken before mu is released so listeners see values in
	// the order they were stored.
	notifyMu sync.Mutex

	subMu  sync.Mutex
	subs   map[int]Listener
	nextID int
}

// New returns an empty store backed by kv. Call Rehydrate before serving reads.
func New(kv store.KV, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		kv:   kv,
		log:  log,
		subs: make(map[int]Listener),
	}
}

// Open builds a store and rehydrates it from kv. A rehydration I/O error is
// returned alongside a usable, empty store.
func Open(ctx context.Context, kv store.KV, log *zap.Logger) (*Store, error) {
	s := New(kv, log)
	return s, s.Rehydrate(ctx)
}

// Get returns a copy of the current analysis, or nil when none is loaded.
func (s *Store) Get() *model.AnalysisResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value.Clone()
}

// Projection returns the advisor inputs derived from the current analysis.
func (s *Store) Projection() model.Projection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value.Project()
}

// Set replaces the current analysis and persists it. A nil value clears both
// memory and the durable entry. Values that cannot be serialized or do not
// validate are rejected and leave the store unchanged.
func (s *Store) Set(ctx context.Context, v *model.AnalysisResult) error {
	var (
		data []byte
		next *model.AnalysisResult
	)
	if v != nil {
		var err error
		data, err = Encode(v)
		if err != nil {
			return err
		}
		// Re-decoding gives the exact value a later Rehydrate would produce.
		next, err = Decode(data)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	if next == nil {
		if err := s.kv.Delete(ctx, StorageKey); err != nil {
			s.mu.Unlock()
			s.log.Error("clearing persisted analysis", zap.String("key", StorageKey), zap.Error(err))
			return fmt.Errorf("clearing analysis: %w", err)
		}
	} else {
		if err := s.kv.Put(ctx, StorageKey, data); err != nil {
			s.mu.Unlock()
			s.log.Error("persisting analysis", zap.String("key", StorageKey), zap.Error(err))
			return fmt.Errorf("persisting analysis: %w", err)
		}
	}
	s.value = next
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.log.Debug("analysis updated", zap.Bool("cleared", next == nil), zap.Int("bytes", len(data)))
	s.notify(next)
	return nil
}

// Loaded reports whether an analysis is currently held.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value != nil
}

// SavedAt returns when the analysis was last persisted, if the backend
// records write times.
func (s *Store) SavedAt(ctx context.Context) (time.Time, bool) {
	ts, ok := s.kv.(store.Timestamper)
	if !ok {
		return time.Time{}, false
	}
	at, err := ts.UpdatedAt(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("reading analysis timestamp", zap.Error(err))
		}
		return time.Time{}, false
	}
	return at, true
}

// Rehydrate loads the persisted analysis. It may run once per Store.
// A corrupt entry is deleted and the store starts empty.
func (s *Store) Rehydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rehydrated {
		return ErrAlreadyRehydrated
	}
	s.rehydrated = true

	data, err := s.kv.Get(ctx, StorageKey)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		s.log.Error("reading persisted analysis", zap.String("key", StorageKey), zap.Error(err))
		return fmt.Errorf("reading analysis: %w", err)
	}

	a, err := Decode(data)
	if err != nil {
		s.log.Warn("discarding corrupt persisted analysis",
			zap.String("key", StorageKey),
			zap.Int("bytes", len(data)),
			zap.Error(err),
		)
		if derr := s.kv.Delete(ctx, StorageKey); derr != nil {
			s.log.Error("deleting corrupt analysis", zap.String("key", StorageKey), zap.Error(derr))
		}
		return nil
	}

	s.value = a
	return nil
}

// Subscribe registers fn for change notifications. Listeners run one at a
// time in store order and must not call Set. The returned func
// unregisters it and is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(v *model.AnalysisResult) {
	s.subMu.Lock()
	fns := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(v.Clone())
	}
}
