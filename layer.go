package settings

import (
	"maps"
	"slices"
)

// Layer is one level of a defaults chain. A Store is itself a Layer, so
// stores can be stacked as defaults of one another.
type Layer interface {
	// LayerLookup returns the value held directly by this layer.
	LayerLookup(key string) (any, bool)
	// LayerKeys returns the keys held directly by this layer, sorted.
	LayerKeys() []string
	// Fallback returns the next layer in the chain, or nil.
	Fallback() Layer
}

// MapLayer is a terminal read-only layer backed by a plain map.
type MapLayer map[string]any

// NewMapLayer builds a MapLayer, stringifying keys. Reserved names are
// dropped.
func NewMapLayer[K comparable](values map[K]any) MapLayer {
	out := make(MapLayer, len(values))
	for key, value := range values {
		k := Key(key)
		if IsReserved(k) {
			continue
		}
		out[k] = value
	}
	return out
}

// LayerLookup implements Layer.
func (m MapLayer) LayerLookup(key string) (any, bool) {
	value, ok := m[key]
	return value, ok
}

// LayerKeys implements Layer.
func (m MapLayer) LayerKeys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Fallback implements Layer. Map layers end the chain.
func (MapLayer) Fallback() Layer { return nil }

// chainOf lists top followed by every fallback below it. A nil map or a nil
// *Store ends the chain.
func chainOf(top Layer) []Layer {
	var layers []Layer
	for layer := top; layer != nil; layer = layer.Fallback() {
		if isNilLayer(layer) {
			break
		}
		layers = append(layers, layer)
	}
	return layers
}

func isNilLayer(layer Layer) bool {
	switch l := layer.(type) {
	case MapLayer:
		return l == nil
	case *Store:
		return l == nil
	}
	return false
}

func lookupChain(layers []Layer, key string) (any, int, bool) {
	for i, layer := range layers {
		if value, ok := layer.LayerLookup(key); ok {
			return value, i, true
		}
	}
	return nil, -1, false
}
