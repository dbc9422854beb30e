package layering

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainLookupFirstLayerWins(t *testing.T) {
	chain := Chain{
		{"a": "own"},
		nil,
		{"a": "default", "b": "default"},
		{"b": "base", "c": "base"},
	}

	value, index, ok := chain.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "own", value)
	assert.Equal(t, 0, index)

	value, index, ok = chain.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "default", value)
	assert.Equal(t, 2, index)

	value, index, ok = chain.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, "base", value)
	assert.Equal(t, 3, index)

	_, index, ok = chain.Lookup("missing")
	assert.False(t, ok)
	assert.Equal(t, -1, index)
}

func TestChainKeysAndMerge(t *testing.T) {
	chain := Chain{{"b": 1}, {"a": 2, "b": 3}}
	assert.Equal(t, []string{"a", "b"}, chain.Keys())
	assert.Equal(t, map[string]any{"a": 2, "b": 1}, chain.Merge())
	assert.Empty(t, Chain{}.Keys())
	assert.Equal(t, map[string]any{}, Merge())
}

func TestCloneDetachesNestedValues(t *testing.T) {
	src := map[string]any{
		"list":   []any{"x", map[string]any{"k": "v"}},
		"nested": map[string]any{"n": 1.0},
		"plain":  "text",
	}
	cloned := CloneMap(src)
	require.Equal(t, src, cloned)

	cloned["nested"].(map[string]any)["n"] = 2.0
	cloned["list"].([]any)[1].(map[string]any)["k"] = "changed"

	assert.Equal(t, 1.0, src["nested"].(map[string]any)["n"])
	assert.Equal(t, "v", src["list"].([]any)[1].(map[string]any)["k"])
}

func TestCloneNilAndScalars(t *testing.T) {
	var nothing any
	assert.Nil(t, Clone(nothing))
	assert.Equal(t, 42, Clone(42))
	assert.Equal(t, map[string]any{}, CloneMap(nil))
}
