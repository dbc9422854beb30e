package settings

import (
	"log/slog"
	"os"

	billy "github.com/go-git/go-billy/v5"

	"github.com/goliatone/go-settings/home"
	"github.com/goliatone/go-settings/pkg/activity"
	"github.com/goliatone/go-settings/pkg/state"
)

// Option configures a Store.
type Option func(*config)

type config struct {
	name         string
	data         map[string]any
	dataErr      error
	defaults     Layer
	homeDir      string
	homeCache    *home.Cache
	library      string
	fs           billy.Filesystem
	backend      state.Store[map[string]any]
	fileOpts     []state.FileStoreOption
	logger       *slog.Logger
	hooks        activity.Hooks
	channel      string
	evaluator    Evaluator
	functions    *FunctionRegistry
	functionErr  error
	programCache ProgramCache
	evalLogger   EvaluatorLogger
}

func applyOptions(opts []Option) config {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithName sets the store name. It is also the file name prefix.
func WithName(name string) Option {
	return func(cfg *config) {
		cfg.name = name
	}
}

// WithData seeds the store's own values. Keys are stringified.
func WithData[K comparable](data map[K]any) Option {
	return func(cfg *config) {
		values, err := stringifyKeys(data)
		if err != nil {
			cfg.dataErr = err
			return
		}
		if cfg.data == nil {
			cfg.data = make(map[string]any, len(values))
		}
		for key, value := range values {
			cfg.data[key] = value
		}
	}
}

// WithDefaults sets the fallback layer, usually another *Store or a
// MapLayer.
func WithDefaults(layer Layer) Option {
	return func(cfg *config) {
		cfg.defaults = layer
	}
}

// WithDefaultValues uses a plain map as the fallback layer.
func WithDefaultValues[K comparable](values map[K]any) Option {
	return func(cfg *config) {
		cfg.defaults = NewMapLayer(values)
	}
}

// WithHomeDir sets the base directory used when Load or Save get no explicit
// location, skipping home directory discovery.
func WithHomeDir(dir string) Option {
	return func(cfg *config) {
		cfg.homeDir = dir
	}
}

// WithHomeCache replaces the process-wide home directory cache.
func WithHomeCache(cache *home.Cache) Option {
	return func(cfg *config) {
		cfg.homeCache = cache
	}
}

// WithLibraryLocation overrides the library source location hashed into
// file names.
func WithLibraryLocation(path string) Option {
	return func(cfg *config) {
		cfg.library = path
	}
}

// WithFilesystem persists through fs instead of the host filesystem. It is
// ignored when WithBackend is also given.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(cfg *config) {
		cfg.fs = fs
	}
}

// WithBackup toggles the "<path>.bak" copy kept by the default file backend.
// It is on by default.
func WithBackup(enabled bool) Option {
	return func(cfg *config) {
		cfg.fileOpts = append(cfg.fileOpts, state.WithBackup(enabled))
	}
}

// WithFileMode sets the permission bits of files written by the default
// file backend.
func WithFileMode(mode os.FileMode) Option {
	return func(cfg *config) {
		cfg.fileOpts = append(cfg.fileOpts, state.WithFileMode(mode))
	}
}

// WithBackend replaces the persistence backend. WithFilesystem, WithBackup
// and WithFileMode do not apply to it.
func WithBackend(backend state.Store[map[string]any]) Option {
	return func(cfg *config) {
		cfg.backend = backend
	}
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithActivityHooks attaches hooks notified on load, save and key changes.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	return func(cfg *config) {
		cfg.hooks = append(cfg.hooks, hooks...)
	}
}

// WithActivityChannel sets the channel stamped on emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *config) {
		cfg.channel = channel
	}
}
