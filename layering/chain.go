// Package layering implements read-through lookup over an ordered list of
// key/value layers. Index 0 is the strongest layer; a key resolves from the
// first layer that holds it.
package layering

import "sort"

// Chain is an ordered list of layers, strongest first. Nil layers are
// allowed and behave as empty.
type Chain []map[string]any

// Lookup returns the value for key from the first layer holding it and the
// index of that layer. The index is -1 when no layer holds key.
func (c Chain) Lookup(key string) (any, int, bool) {
	for i, layer := range c {
		if value, ok := layer[key]; ok {
			return value, i, true
		}
	}
	return nil, -1, false
}

// Keys returns the union of keys across all layers, sorted.
func (c Chain) Keys() []string {
	seen := make(map[string]struct{})
	for _, layer := range c {
		for key := range layer {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Merge flattens the chain into a single map where stronger layers shadow
// weaker ones. Values are not copied.
func (c Chain) Merge() map[string]any {
	return Merge(c...)
}

// Merge composes layers ordered strongest to weakest into a new map.
func Merge(layers ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			merged[key] = value
		}
	}
	return merged
}
