// Package home resolves the directory settings files are written to when the
// caller does not pass an explicit location.
//
// Resolution tries an ordered list of strategies and keeps the first
// success. The result is computed once per Cache and reused until Reset is
// called, which callers do after changing the environment the strategies
// read from.
package home

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-homedir"
)

// ErrUnresolved is returned when every strategy failed.
var ErrUnresolved = errors.New("home: cannot reliably determine user's home directory")

// errSkipped marks a strategy that does not apply on this platform.
var errSkipped = errors.New("not available")

// Strategy is one way of locating the home directory for an application.
type Strategy interface {
	Name() string
	Resolve(appName string) (string, error)
}

// StrategyFunc adapts a function to Strategy.
type StrategyFunc struct {
	Label string
	Fn    func(appName string) (string, error)
}

// Name implements Strategy.
func (s StrategyFunc) Name() string { return s.Label }

// Resolve implements Strategy.
func (s StrategyFunc) Resolve(appName string) (string, error) {
	if s.Fn == nil {
		return "", errSkipped
	}
	return s.Fn(appName)
}

// DefaultStrategies returns the built-in strategies in the order they are
// tried: user data directory convention, platform shell folder, POSIX user
// database, USERPROFILE, and "~" expansion.
func DefaultStrategies() []Strategy {
	return []Strategy{
		StrategyFunc{Label: "user-data-dir", Fn: userDataDir},
		StrategyFunc{Label: "shell-folder", Fn: shellFolder},
		StrategyFunc{Label: "user-database", Fn: userDatabase},
		StrategyFunc{Label: "userprofile-env", Fn: userProfileEnv},
		StrategyFunc{Label: "home-expansion", Fn: homeExpansion},
	}
}

// Resolve walks strategies in order and returns the first non-empty result.
// When all of them fail the returned error wraps ErrUnresolved and carries
// each strategy's failure.
func Resolve(appName string, strategies ...Strategy) (string, error) {
	var errs *multierror.Error
	for _, strategy := range strategies {
		if strategy == nil {
			continue
		}
		dir, err := strategy.Resolve(appName)
		if err == nil && strings.TrimSpace(dir) != "" {
			return dir, nil
		}
		if err == nil {
			err = errors.New("empty result")
		}
		errs = multierror.Append(errs, fmt.Errorf("%s: %w", strategy.Name(), err))
	}
	if errs == nil {
		return "", ErrUnresolved
	}
	return "", fmt.Errorf("%w: %w", ErrUnresolved, errs.ErrorOrNil())
}

// Cache holds a single resolved directory guarded by a computed flag.
type Cache struct {
	mu         sync.Mutex
	strategies []Strategy
	computed   bool
	dir        string
}

// NewCache builds a cache over strategies. With no strategies the defaults
// are used.
func NewCache(strategies ...Strategy) *Cache {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Cache{strategies: strategies}
}

// Default is the process-wide cache used by settings stores.
var Default = NewCache()

// Resolve returns the cached directory, computing it on first use. The app
// name only matters for that first computation. Failures are not cached.
func (c *Cache) Resolve(appName string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.computed {
		return c.dir, nil
	}
	dir, err := Resolve(appName, c.strategies...)
	if err != nil {
		return "", err
	}
	c.dir = dir
	c.computed = true
	return dir, nil
}

// Computed reports whether a directory has been resolved and cached.
func (c *Cache) Computed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computed
}

// Reset drops the cached directory so the next Resolve recomputes it.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.computed = false
	c.dir = ""
	c.mu.Unlock()
}

// userDataDir follows the per-platform application data conventions:
// XDG_DATA_HOME or ~/.local/share on Unix, Application Support on macOS and
// LOCALAPPDATA on Windows.
func userDataDir(appName string) (string, error) {
	if appName == "" {
		return "", errors.New("application name is empty")
	}
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			return "", errors.New("LOCALAPPDATA is not set")
		}
		return filepath.Join(base, appName, appName), nil
	case "darwin":
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(userHome, "Library", "Application Support", appName), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(userHome, ".local", "share", appName), nil
	}
}

func userDatabase(string) (string, error) {
	if runtime.GOOS == "windows" {
		return "", errSkipped
	}
	current, err := user.Current()
	if err != nil {
		return "", err
	}
	return current.HomeDir, nil
}

func userProfileEnv(string) (string, error) {
	profile := os.Getenv("USERPROFILE")
	if profile == "" {
		return "", errors.New("USERPROFILE is not set")
	}
	return profile, nil
}

func homeExpansion(string) (string, error) {
	return homedir.Expand("~")
}
