package settings

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/goliatone/go-settings/pathresolve"
	"github.com/goliatone/go-settings/pkg/activity"
	"github.com/goliatone/go-settings/pkg/state"
)

// ReturnValue reports the outcome of Load or Save. On success Path is set
// and Err is nil; on failure Path is empty and Err is set.
type ReturnValue struct {
	Path string
	Err  error
}

// OK reports whether the operation succeeded.
func (r ReturnValue) OK() bool {
	return r.Err == nil && r.Path != ""
}

// PersistOption configures a single Load or Save call.
type PersistOption func(*persistConfig)

type persistConfig struct {
	preset   map[string]any
	location string
	caller   string
	ignored  mapset.Set[string]
	keys     []string
	hasKeys  bool
}

// WithPreset applies values before the file is read, so file contents win.
// Load only.
func WithPreset[K comparable](values map[K]any) PersistOption {
	return func(cfg *persistConfig) {
		if cfg.preset == nil {
			cfg.preset = map[string]any{}
		}
		for key, value := range values {
			cfg.preset[Key(key)] = value
		}
	}
}

// WithLocation reads or writes under dir instead of the home directory.
func WithLocation(dir string) PersistOption {
	return func(cfg *persistConfig) {
		cfg.location = dir
	}
}

// WithCallerLocation sets the caller source location hashed into the file
// name. Without it the "undefined" sentinel is used.
func WithCallerLocation(path string) PersistOption {
	return func(cfg *persistConfig) {
		cfg.caller = path
	}
}

// WithCaller uses the source file of the function calling WithCaller as the
// caller location.
func WithCaller() PersistOption {
	caller := pathresolve.CallerLocation(1)
	return WithCallerLocation(caller)
}

// WithIgnoredKeys skips keys when reading from or writing to the file.
func WithIgnoredKeys(keys ...any) PersistOption {
	return func(cfg *persistConfig) {
		for _, key := range keys {
			cfg.ignored.Add(Key(key))
		}
	}
}

// WithKeys limits Save to keys. They are resolved through the whole chain.
// Save only.
func WithKeys(keys ...any) PersistOption {
	return func(cfg *persistConfig) {
		cfg.hasKeys = true
		for _, key := range keys {
			cfg.keys = append(cfg.keys, Key(key))
		}
	}
}

func applyPersistOptions(opts []PersistOption) persistConfig {
	cfg := persistConfig{ignored: mapset.NewThreadUnsafeSet[string]()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Path returns the file Load and Save would use with the same options.
func (s *Store) Path(opts ...PersistOption) (string, error) {
	return s.ref(applyPersistOptions(opts)).Identifier()
}

func (s *Store) ref(cfg persistConfig) state.Ref {
	location := cfg.location
	if location == "" {
		location = s.homeDir
	}
	return state.Ref{
		Name:            s.name,
		Location:        location,
		LibraryLocation: s.library,
		CallerLocation:  cfg.caller,
	}
}

// Load merges the persisted file into the store.
func (s *Store) Load(opts ...PersistOption) ReturnValue {
	return s.LoadContext(context.Background(), opts...)
}

// LoadContext applies preset values, then reads the file and sets every key
// not ignored. Failures are reported through the result only.
func (s *Store) LoadContext(ctx context.Context, opts ...PersistOption) ReturnValue {
	cfg := applyPersistOptions(opts)

	s.mu.Lock()
	for key, value := range cfg.preset {
		if !IsReserved(key) {
			s.own[key] = value
		}
	}
	s.mu.Unlock()

	result, applied := s.load(ctx, cfg)

	s.mu.Lock()
	s.lastLoad = result
	s.mu.Unlock()

	if result.Err != nil {
		s.logger.Debug("settings load failed", "error", result.Err)
	} else {
		s.logger.Debug("settings loaded", "path", result.Path, "keys", applied)
	}
	s.emit(ctx, activity.PersistEvent(s.name, result.Path, false, applied, result.Err))
	return result
}

func (s *Store) load(ctx context.Context, cfg persistConfig) (ReturnValue, int) {
	ref := s.ref(cfg)
	path, err := ref.Identifier()
	if err != nil {
		return ReturnValue{Err: &FileError{Kind: ErrFileRead, Err: err}}, 0
	}

	snapshot, _, ok, err := s.backend.Load(ctx, ref)
	switch {
	case err != nil && errors.Is(err, state.ErrDecode):
		return ReturnValue{Err: &FileError{Kind: ErrFileParse, Path: path, Err: err}}, 0
	case err != nil:
		return ReturnValue{Err: &FileError{Kind: ErrFileRead, Path: path, Err: err}}, 0
	case !ok:
		return ReturnValue{Err: &FileError{Kind: ErrFileRead, Path: path, Err: fs.ErrNotExist}}, 0
	case snapshot == nil:
		return ReturnValue{Err: &FileError{Kind: ErrFileParse, Path: path, Err: errors.New("document is not an object")}}, 0
	}

	applied := 0
	s.mu.Lock()
	for key, value := range snapshot {
		if IsReserved(key) || cfg.ignored.Contains(key) {
			continue
		}
		s.own[key] = value
		applied++
	}
	s.mu.Unlock()
	return ReturnValue{Path: path}, applied
}

// Save writes the store to its file.
func (s *Store) Save(opts ...PersistOption) ReturnValue {
	return s.SaveContext(context.Background(), opts...)
}

// SaveContext persists the selected keys, backing up any existing file
// first. Failures are reported through the result only.
func (s *Store) SaveContext(ctx context.Context, opts ...PersistOption) ReturnValue {
	cfg := applyPersistOptions(opts)
	result, written := s.save(ctx, cfg)

	s.mu.Lock()
	s.lastSave = result
	s.mu.Unlock()

	if result.Err != nil {
		s.logger.Warn("settings save failed", "error", result.Err)
	} else {
		s.logger.Debug("settings saved", "path", result.Path, "keys", written)
	}
	s.emit(ctx, activity.PersistEvent(s.name, result.Path, true, written, result.Err))
	return result
}

func (s *Store) save(ctx context.Context, cfg persistConfig) (ReturnValue, int) {
	ref := s.ref(cfg)
	path, err := ref.Identifier()
	if err != nil {
		return ReturnValue{Err: &FileError{Kind: ErrFileWrite, Err: err}}, 0
	}

	snapshot, err := s.selectForSave(cfg)
	if err != nil {
		return ReturnValue{Err: &FileError{Kind: ErrFileWrite, Path: path, Err: err}}, 0
	}

	meta, err := s.backend.Save(ctx, ref, snapshot)
	if err != nil {
		return ReturnValue{Err: &FileError{Kind: ErrFileWrite, Path: path, Err: err}}, 0
	}
	if meta.BackupPath != "" {
		s.logger.Debug("settings backup kept", "path", meta.BackupPath)
	}
	if meta.Path != "" {
		path = meta.Path
	}
	return ReturnValue{Path: path}, len(snapshot)
}

func (s *Store) selectForSave(cfg persistConfig) (map[string]any, error) {
	snapshot := map[string]any{}
	if !cfg.hasKeys {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for key, value := range s.own {
			if IsReserved(key) || cfg.ignored.Contains(key) {
				continue
			}
			snapshot[key] = value
		}
		return snapshot, nil
	}

	layers := chainOf(s)
	for _, key := range cfg.keys {
		if IsReserved(key) || cfg.ignored.Contains(key) {
			continue
		}
		value, _, ok := lookupChain(layers, key)
		if !ok {
			return nil, fmt.Errorf("settings: save: %w", keyNotFound(key))
		}
		snapshot[key] = value
	}
	return snapshot, nil
}

