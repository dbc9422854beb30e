package settings

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-settings/home"
	"github.com/goliatone/go-settings/layering"
	"github.com/goliatone/go-settings/pathresolve"
	"github.com/goliatone/go-settings/pkg/activity"
	"github.com/goliatone/go-settings/pkg/state"
)

// Store is a named settings map with a chain of default layers.
type Store struct {
	name     string
	defaults Layer
	homeDir  string
	library  string
	backend  state.Store[map[string]any]
	logger   *slog.Logger
	emitter  *activity.Emitter

	evaluator  Evaluator
	evalLogger EvaluatorLogger

	mu       sync.RWMutex
	own      map[string]any
	lastLoad ReturnValue
	lastSave ReturnValue
}

// New builds a Store. Without WithHomeDir the base directory is discovered
// through the process-wide home cache and New fails with
// ErrHomeDirectoryUnresolved when that is impossible.
func New(opts ...Option) (*Store, error) {
	cfg := applyOptions(opts)
	if cfg.dataErr != nil {
		return nil, cfg.dataErr
	}
	if cfg.functionErr != nil {
		return nil, cfg.functionErr
	}

	name := strings.TrimSpace(cfg.name)
	if name == "" {
		name = uuid.NewString()
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("store", name)

	homeDir := cfg.homeDir
	if homeDir == "" {
		cache := cfg.homeCache
		if cache == nil {
			cache = home.Default
		}
		dir, err := cache.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("settings: new %q: %w", name, err)
		}
		homeDir = dir
	}

	library := cfg.library
	if library == "" {
		library = pathresolve.LibraryLocation()
	}

	backend := cfg.backend
	if backend == nil {
		fileOpts := append([]state.FileStoreOption{state.WithLogger(logger)}, cfg.fileOpts...)
		backend = state.NewFileStore[map[string]any](cfg.fs, fileOpts...)
	}

	own := cfg.data
	if own == nil {
		own = map[string]any{}
	}

	s := &Store{
		name:       name,
		defaults:   cfg.defaults,
		homeDir:    homeDir,
		library:    library,
		backend:    backend,
		logger:     logger,
		emitter:    activity.NewEmitter(cfg.hooks, activity.Config{Enabled: true, Channel: cfg.channel}),
		evaluator:  resolveEvaluator(cfg),
		evalLogger: cfg.evalLogger,
		own:        own,
	}
	if s.evalLogger == nil {
		s.evalLogger = slogEvaluatorLogger{logger: logger}
	}
	return s, nil
}

// Name returns the store name.
func (s *Store) Name() string { return s.name }

// Defaults returns the fallback layer, or nil.
func (s *Store) Defaults() Layer { return s.defaults }

// HomeDir returns the base directory used when no location is given.
func (s *Store) HomeDir() string { return s.homeDir }

// LastLoad returns the outcome of the most recent Load.
func (s *Store) LastLoad() ReturnValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastLoad
}

// LastSave returns the outcome of the most recent Save.
func (s *Store) LastSave() ReturnValue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSave
}

// LayerLookup implements Layer over the store's own values.
func (s *Store) LayerLookup(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.own[key]
	return value, ok
}

// LayerKeys implements Layer over the store's own values.
func (s *Store) LayerKeys() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.own))
}

// Fallback implements Layer.
func (s *Store) Fallback() Layer {
	if s == nil {
		return nil
	}
	return s.defaults
}

// Get returns the value for key from the first layer holding it. Reserved
// names are answered from the store's internal fields.
func (s *Store) Get(key any) (any, error) {
	k := Key(key)
	if IsReserved(k) {
		return s.internal(k), nil
	}
	value, _, ok := lookupChain(chainOf(s), k)
	if !ok {
		return nil, keyNotFound(k)
	}
	return value, nil
}

// Set writes value on the store's own layer, shadowing any default.
func (s *Store) Set(key, value any) error {
	k := Key(key)
	if IsReserved(k) {
		return reservedKey(k)
	}
	s.mu.Lock()
	s.own[k] = value
	s.mu.Unlock()
	s.emit(context.Background(), activity.KeyEvent(s.name, k, false))
	return nil
}

// Delete removes key from the store's own layer. Keys that only resolve
// through defaults cannot be deleted.
func (s *Store) Delete(key any) error {
	k := Key(key)
	if IsReserved(k) {
		return reservedKey(k)
	}
	s.mu.Lock()
	if _, ok := s.own[k]; !ok {
		s.mu.Unlock()
		return keyNotFound(k)
	}
	delete(s.own, k)
	s.mu.Unlock()
	s.emit(context.Background(), activity.KeyEvent(s.name, k, true))
	return nil
}

// Contains reports whether key resolves anywhere in the chain.
func (s *Store) Contains(key any) bool {
	k := Key(key)
	if IsReserved(k) {
		return false
	}
	_, _, ok := lookupChain(chainOf(s), k)
	return ok
}

// Lookup returns the value for key asserted to T. No conversion is applied.
func Lookup[T any](s *Store, key any) (T, error) {
	var zero T
	value, err := s.Get(key)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T, not %T", ErrTypeMismatch, Key(key), value, zero)
	}
	return typed, nil
}

// Snapshot returns a deep copy of the resolved view of every layer.
func (s *Store) Snapshot() map[string]any {
	return layering.CloneMap(s.resolved())
}

// resolved flattens the chain, own values winning.
func (s *Store) resolved() map[string]any {
	return snapshotChain(chainOf(s)).Merge()
}

// snapshotChain copies the values of each layer, keeping the chain order.
func snapshotChain(layers []Layer) layering.Chain {
	chain := make(layering.Chain, len(layers))
	for i, layer := range layers {
		chain[i] = layerValues(layer)
	}
	return chain
}

func layerValues(layer Layer) map[string]any {
	if store, ok := layer.(*Store); ok {
		store.mu.RLock()
		defer store.mu.RUnlock()
		return maps.Clone(store.own)
	}
	out := map[string]any{}
	for _, key := range layer.LayerKeys() {
		if IsReserved(key) {
			continue
		}
		if value, ok := layer.LayerLookup(key); ok {
			out[key] = value
		}
	}
	return out
}

func (s *Store) internal(name string) any {
	switch name {
	case KeyName:
		return s.name
	case KeyMap:
		s.mu.RLock()
		defer s.mu.RUnlock()
		return layering.CloneMap(s.own)
	case KeyDefaults:
		return s.defaults
	case KeySavedTo:
		return s.LastSave()
	case KeyLoadedFrom:
		return s.LastLoad()
	}
	return nil
}

func (s *Store) emit(ctx context.Context, event activity.Event) {
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.Warn("settings activity hook failed", "verb", event.Verb, "error", err)
	}
}
