package settings

import (
	"encoding/json"
	"fmt"
)

// Trace records how each layer of the chain answered a key.
type Trace struct {
	Key    string       `json:"key"`
	Value  any          `json:"value,omitempty"`
	Found  bool         `json:"found"`
	Layers []Provenance `json:"layers"`
}

// Provenance is one layer's contribution to a Trace. Depth 0 is the store's
// own layer.
type Provenance struct {
	Depth  int    `json:"depth"`
	Layer  string `json:"layer"`
	Value  any    `json:"value,omitempty"`
	Found  bool   `json:"found"`
	Winner bool   `json:"winner,omitempty"`
}

// Trace walks the whole chain for key, recording every layer that holds it
// and which one wins.
func (s *Store) Trace(key any) Trace {
	k := Key(key)
	trace := Trace{Key: k}
	if IsReserved(k) {
		return trace
	}
	for depth, layer := range chainOf(s) {
		value, ok := layer.LayerLookup(k)
		entry := Provenance{Depth: depth, Layer: layerName(layer, depth), Found: ok}
		if ok {
			entry.Value = value
			if !trace.Found {
				trace.Found = true
				trace.Value = value
				entry.Winner = true
			}
		}
		trace.Layers = append(trace.Layers, entry)
	}
	return trace
}

// ToJSON serialises the trace.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

func layerName(layer Layer, depth int) string {
	if named, ok := layer.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("defaults[%d]", depth)
}
