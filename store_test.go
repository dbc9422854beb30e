package settings_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/home"
)

func newStore(t *testing.T, opts ...settings.Option) *settings.Store {
	t.Helper()
	base := []settings.Option{settings.WithName("myapp"), settings.WithHomeDir("/home/test")}
	s, err := settings.New(append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func TestSetThenGet(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.Set("theme", "dark"))
	require.NoError(t, s.Set(1, 1))

	got, err := s.Get("theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", got)

	got, err = s.Get("1")
	require.NoError(t, err)
	assert.Equal(t, 1, got, "numeric keys are stored under their string form")
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains("missing"))

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, settings.ErrKeyNotFound)
}

func TestNewSeedsDataWithStringKeys(t *testing.T) {
	s := newStore(t,
		settings.WithData(map[any]any{1: 1, 2: 2, "c": "c"}),
		settings.WithDefaultValues(map[string]any{"d": "d"}),
	)
	for key, want := range map[string]any{"1": 1, "2": 2, "c": "c", "d": "d"} {
		got, err := s.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}
	assert.Equal(t, "Settings(1: 1, 2: 2, c: c, d: d)", s.String())
}

func TestNewRejectsReservedSeedKeys(t *testing.T) {
	_, err := settings.New(
		settings.WithHomeDir("/home/test"),
		settings.WithData(map[string]any{settings.KeyName: "x"}),
	)
	assert.ErrorIs(t, err, settings.ErrReservedKey)
}

func TestNewGeneratesName(t *testing.T) {
	a, err := settings.New(settings.WithHomeDir("/home/test"))
	require.NoError(t, err)
	b, err := settings.New(settings.WithHomeDir("/home/test"))
	require.NoError(t, err)
	assert.NotEmpty(t, a.Name())
	assert.NotEqual(t, a.Name(), b.Name())
}

func TestNewFailsWithoutHomeDirectory(t *testing.T) {
	cache := home.NewCache(home.StrategyFunc{Label: "broken", Fn: func(string) (string, error) {
		return "", errors.New("no home here")
	}})
	_, err := settings.New(settings.WithName("myapp"), settings.WithHomeCache(cache))
	require.Error(t, err)
	assert.ErrorIs(t, err, settings.ErrHomeDirectoryUnresolved)
	assert.Contains(t, err.Error(), "no home here")
}

func TestNewUsesCachedHomeDirectory(t *testing.T) {
	calls := 0
	cache := home.NewCache(home.StrategyFunc{Label: "fixed", Fn: func(string) (string, error) {
		calls++
		return "/srv/home", nil
	}})
	for range 3 {
		s, err := settings.New(settings.WithName("myapp"), settings.WithHomeCache(cache))
		require.NoError(t, err)
		assert.Equal(t, "/srv/home", s.HomeDir())
	}
	assert.Equal(t, 1, calls)
}

func TestDefaultsAreReadOnly(t *testing.T) {
	s := newStore(t, settings.WithDefaultValues(map[string]any{"d": "default"}))

	got, err := s.Get("d")
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	assert.ErrorIs(t, s.Delete("d"), settings.ErrKeyNotFound)

	require.NoError(t, s.Set("d", "mine"))
	got, err = s.Get("d")
	require.NoError(t, err)
	assert.Equal(t, "mine", got)

	defaults := s.Defaults().(settings.MapLayer)
	assert.Equal(t, "default", defaults["d"], "writes shadow defaults")
}

func TestDeleteThenRead(t *testing.T) {
	s := newStore(t, settings.WithDefaultValues(map[string]any{"shared": "default"}))
	require.NoError(t, s.Set("solo", 1))
	require.NoError(t, s.Set("shared", "mine"))

	require.NoError(t, s.Delete("solo"))
	_, err := s.Get("solo")
	assert.ErrorIs(t, err, settings.ErrKeyNotFound)

	require.NoError(t, s.Delete("shared"))
	got, err := s.Get("shared")
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	assert.ErrorIs(t, s.Delete("solo"), settings.ErrKeyNotFound)
}

func TestStoreAsDefaultsOfStore(t *testing.T) {
	parent := newStore(t, settings.WithName("parent"), settings.WithData(map[string]any{"a": "parent"}))
	child := newStore(t, settings.WithName("child"), settings.WithDefaults(parent))

	got, err := child.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "parent", got)

	require.NoError(t, parent.Set("a", "changed"))
	got, err = child.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "changed", got, "defaults are read through, not copied")
}

func TestNilStoreAsDefaultsEndsChain(t *testing.T) {
	var parent *settings.Store
	s := newStore(t, settings.WithData(map[string]any{"a": 1}), settings.WithDefaults(parent))

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, settings.ErrKeyNotFound)
	assert.False(t, s.Contains("missing"))
	assert.Equal(t, []any{1}, s.Values(settings.IncludeDefaultsOfDefaults(true)))
	assert.Equal(t, "Settings(a: 1)", s.String())

	_, ok := parent.LayerLookup("a")
	assert.False(t, ok)
	assert.Empty(t, parent.LayerKeys())
}

func TestNewRejectsBadCustomFunctions(t *testing.T) {
	noop := func(...any) (any, error) { return nil, nil }

	_, err := settings.New(
		settings.WithHomeDir("/home/test"),
		settings.WithCustomFunction("twice", noop),
		settings.WithCustomFunction("TWICE", noop),
	)
	assert.ErrorContains(t, err, "already registered")

	_, err = settings.New(settings.WithHomeDir("/home/test"), settings.WithCustomFunction("", noop))
	assert.ErrorContains(t, err, "must not be empty")

	_, err = settings.New(settings.WithHomeDir("/home/test"), settings.WithCustomFunction("missing", nil))
	assert.ErrorContains(t, err, "is nil")
}

func TestReservedNames(t *testing.T) {
	s := newStore(t, settings.WithData(map[string]any{"a": 1}))

	for _, name := range []string{settings.KeyName, settings.KeyMap, settings.KeyDefaults, settings.KeySavedTo, settings.KeyLoadedFrom} {
		assert.ErrorIs(t, s.Set(name, "x"), settings.ErrReservedKey, name)
		assert.ErrorIs(t, s.Delete(name), settings.ErrReservedKey, name)
		assert.False(t, s.Contains(name), name)
	}

	name, err := s.Get(settings.KeyName)
	require.NoError(t, err)
	assert.Equal(t, "myapp", name)

	own, err := s.Get(settings.KeyMap)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1}, own)

	saved, err := s.Get(settings.KeySavedTo)
	require.NoError(t, err)
	assert.Equal(t, settings.ReturnValue{}, saved)

	assert.False(t, s.Keys().Contains(settings.KeyName))
	assert.NotContains(t, s.String(), "__")
}

func TestLookupAssertsType(t *testing.T) {
	s := newStore(t, settings.WithData(map[string]any{"port": 8080, "host": "localhost"}))

	port, err := settings.Lookup[int](s, "port")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	_, err = settings.Lookup[string](s, "port")
	assert.ErrorIs(t, err, settings.ErrTypeMismatch)

	_, err = settings.Lookup[string](s, "missing")
	assert.ErrorIs(t, err, settings.ErrKeyNotFound)
}

func TestSnapshotIsDetached(t *testing.T) {
	s := newStore(t,
		settings.WithData(map[string]any{"nested": map[string]any{"x": 1}}),
		settings.WithDefaultValues(map[string]any{"d": true}),
	)
	snap := s.Snapshot()
	assert.Equal(t, map[string]any{"nested": map[string]any{"x": 1}, "d": true}, snap)

	snap["nested"].(map[string]any)["x"] = 2
	got, err := s.Get("nested")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"x": 1}, got)
}
