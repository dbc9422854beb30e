package settings

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// ViewOption selects which layers Keys and Values read.
type ViewOption func(*viewConfig)

type viewConfig struct {
	nested             bool
	defaultsOfDefaults bool
}

// IncludeNested adds the direct defaults layer (L1) to the view. It is on by
// default. Deeper layers are only added by IncludeDefaultsOfDefaults.
func IncludeNested(include bool) ViewOption {
	return func(cfg *viewConfig) {
		cfg.nested = include
	}
}

// IncludeDefaultsOfDefaults extends the view down the defaults chain. It is
// off by default.
func IncludeDefaultsOfDefaults(include bool) ViewOption {
	return func(cfg *viewConfig) {
		cfg.defaultsOfDefaults = include
	}
}

// Item is one resolved key/value pair.
type Item struct {
	Key   string
	Value any
}

// Keys returns the keys held by the selected layers. With layers L0 (own)
// through Ln (last default):
//
//	IncludeNested(false)                                 L0
//	IncludeNested(true)   (default)                      L0..L1
//	IncludeNested(false), IncludeDefaultsOfDefaults(true) L0..L(n-1)
//	IncludeNested(true),  IncludeDefaultsOfDefaults(true) L0..Ln
//
// IncludeNested alone never reaches past the direct defaults layer. Keys held
// only by the defaults of the defaults need IncludeDefaultsOfDefaults(true).
func (s *Store) Keys(opts ...ViewOption) mapset.Set[string] {
	keys := mapset.NewSet[string]()
	for _, layer := range selectLayers(chainOf(s), opts) {
		for _, key := range layer.LayerKeys() {
			if !IsReserved(key) {
				keys.Add(key)
			}
		}
	}
	return keys
}

// Values returns the resolved values of Keys, ordered by key. Keys come from
// the selected layers; each value resolves through the whole chain.
func (s *Store) Values(opts ...ViewOption) []any {
	layers := chainOf(s)
	chain := snapshotChain(layers)
	keys := chain[:len(selectLayers(layers, opts))].Keys()
	values := make([]any, 0, len(keys))
	for _, key := range keys {
		value, _, _ := chain.Lookup(key)
		values = append(values, value)
	}
	return values
}

// Items returns every resolved pair across the whole chain, sorted by key.
func (s *Store) Items() []Item {
	resolved := s.resolved()
	keys := slices.Sorted(maps.Keys(resolved))
	items := make([]Item, len(keys))
	for i, key := range keys {
		items[i] = Item{Key: key, Value: resolved[key]}
	}
	return items
}

// String renders the resolved view as Settings(k: v, ...).
func (s *Store) String() string {
	var b strings.Builder
	b.WriteString("Settings(")
	for i, item := range s.Items() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", item.Key, item.Value)
	}
	b.WriteString(")")
	return b.String()
}

func selectLayers(layers []Layer, opts []ViewOption) []Layer {
	cfg := viewConfig{nested: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if len(layers) == 0 {
		return nil
	}
	last := len(layers) - 1
	var end int
	switch {
	case cfg.nested && cfg.defaultsOfDefaults:
		end = last
	case cfg.defaultsOfDefaults:
		end = max(last-1, 0)
	case cfg.nested:
		end = min(1, last)
	default:
		end = 0
	}
	return layers[:end+1]
}
