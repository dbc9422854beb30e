package settings_test

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	settings "github.com/goliatone/go-settings"
)

func TestKeysIncludeNested(t *testing.T) {
	s := newStore(t,
		settings.WithData(map[any]any{1: 1, 2: 2, "c": "c"}),
		settings.WithDefaultValues(map[any]any{3: 3}),
	)

	assert.True(t, mapset.NewSet("1", "2", "c").Equal(s.Keys(settings.IncludeNested(false))))
	assert.True(t, mapset.NewSet("1", "2", "c", "3").Equal(s.Keys()))
}

// chainOfFour builds own -> mid -> parent -> grand so every layer selection
// gives a different answer.
func chainOfFour(t *testing.T) *settings.Store {
	t.Helper()
	grand := settings.MapLayer{"g": "grand"}
	parent := newStore(t, settings.WithName("parent"), settings.WithData(map[string]any{"p": "parent"}), settings.WithDefaults(grand))
	mid := newStore(t, settings.WithName("mid"), settings.WithData(map[string]any{"m": "mid"}), settings.WithDefaults(parent))
	return newStore(t, settings.WithData(map[string]any{"o": "own"}), settings.WithDefaults(mid))
}

func TestKeysLayerSelection(t *testing.T) {
	s := chainOfFour(t)

	cases := []struct {
		name               string
		nested             bool
		defaultsOfDefaults bool
		want               []string
	}{
		{"own only", false, false, []string{"o"}},
		{"own and direct defaults", true, false, []string{"o", "m"}},
		{"all but the last ancestor", false, true, []string{"o", "m", "p"}},
		{"full chain", true, true, []string{"o", "m", "p", "g"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Keys(settings.IncludeNested(tc.nested), settings.IncludeDefaultsOfDefaults(tc.defaultsOfDefaults))
			assert.True(t, mapset.NewSet(tc.want...).Equal(got), "got %v", got.ToSlice())
		})
	}
}

func TestKeysSelectionOnShortChains(t *testing.T) {
	alone := newStore(t, settings.WithData(map[string]any{"o": 1}))
	for _, nested := range []bool{false, true} {
		for _, dd := range []bool{false, true} {
			got := alone.Keys(settings.IncludeNested(nested), settings.IncludeDefaultsOfDefaults(dd))
			assert.True(t, mapset.NewSet("o").Equal(got))
		}
	}

	two := newStore(t, settings.WithData(map[string]any{"o": 1}), settings.WithDefaultValues(map[string]any{"d": 2}))
	assert.True(t, mapset.NewSet("o").Equal(two.Keys(settings.IncludeNested(false), settings.IncludeDefaultsOfDefaults(true))))
	assert.True(t, mapset.NewSet("o", "d").Equal(two.Keys(settings.IncludeDefaultsOfDefaults(true))))
}

func TestValuesMirrorKeys(t *testing.T) {
	s := chainOfFour(t)

	assert.Equal(t, []any{"own"}, s.Values(settings.IncludeNested(false)))
	assert.Equal(t, []any{"mid", "own"}, s.Values())
	assert.Equal(t, []any{"mid", "own", "parent"}, s.Values(settings.IncludeNested(false), settings.IncludeDefaultsOfDefaults(true)))
	assert.Equal(t, []any{"grand", "mid", "own", "parent"}, s.Values(settings.IncludeDefaultsOfDefaults(true)))
}

func TestValuesResolveThroughChain(t *testing.T) {
	s := newStore(t,
		settings.WithData(map[string]any{"shared": "own"}),
		settings.WithDefaultValues(map[string]any{"shared": "default", "other": 1}),
	)
	assert.Equal(t, []any{1, "own"}, s.Values())
}

func TestItemsAndString(t *testing.T) {
	s := chainOfFour(t)
	require.NoError(t, s.Set("m", "shadowed"))

	items := s.Items()
	require.Len(t, items, 4)
	assert.Equal(t, settings.Item{Key: "g", Value: "grand"}, items[0])
	assert.Equal(t, settings.Item{Key: "m", Value: "shadowed"}, items[1])
	assert.Equal(t, "Settings(g: grand, m: shadowed, o: own, p: parent)", s.String())

	empty := newStore(t)
	assert.Equal(t, "Settings()", empty.String())
}

func TestTraceReportsEveryLayer(t *testing.T) {
	s := chainOfFour(t)
	require.NoError(t, s.Set("p", "own-p"))

	trace := s.Trace("p")
	require.True(t, trace.Found)
	assert.Equal(t, "own-p", trace.Value)
	require.Len(t, trace.Layers, 4)
	assert.True(t, trace.Layers[0].Winner)
	assert.Equal(t, "myapp", trace.Layers[0].Layer)
	assert.False(t, trace.Layers[1].Found)
	assert.Equal(t, "mid", trace.Layers[1].Layer)
	assert.True(t, trace.Layers[2].Found)
	assert.False(t, trace.Layers[2].Winner)
	assert.Equal(t, "defaults[3]", trace.Layers[3].Layer)

	payload, err := trace.ToJSON()
	require.NoError(t, err)
	decoded, err := settings.TraceFromJSON(payload)
	require.NoError(t, err)
	assert.Equal(t, trace.Key, decoded.Key)
	assert.Len(t, decoded.Layers, 4)

	assert.False(t, s.Trace("nope").Found)
	assert.Empty(t, s.Trace(settings.KeyName).Layers)
}

func TestIncludeNestedStopsAtDirectDefaults(t *testing.T) {
	parent := newStore(t, settings.WithName("parent"), settings.WithData(map[string]any{"deep": "parent", "shared": "parent"}))
	mid := newStore(t, settings.WithName("mid"), settings.WithData(map[string]any{"near": "mid"}), settings.WithDefaults(parent))
	s := newStore(t, settings.WithData(map[string]any{"shared": "own"}), settings.WithDefaults(mid))

	assert.True(t, mapset.NewSet("near", "shared").Equal(s.Keys(settings.IncludeNested(true))))
	assert.Equal(t, []any{"mid", "own"}, s.Values(settings.IncludeNested(true)))

	full := s.Keys(settings.IncludeNested(true), settings.IncludeDefaultsOfDefaults(true))
	assert.True(t, mapset.NewSet("deep", "near", "shared").Equal(full))
	assert.Equal(t, []any{"parent", "mid", "own"}, s.Values(settings.IncludeNested(true), settings.IncludeDefaultsOfDefaults(true)))

	got, err := s.Get("deep")
	require.NoError(t, err)
	assert.Equal(t, "parent", got, "lookups still read the whole chain")
}
