package settings

import (
	"fmt"

	"github.com/spf13/cast"
)

// Reserved internal names. They are answered from the store's own fields
// and are never stored among the values.
const (
	KeyName       = "__name"
	KeyMap        = "__map"
	KeyDefaults   = "__defaults"
	KeySavedTo    = "__savedTo"
	KeyLoadedFrom = "__loadedFrom"
)

// Operation names reachable through Attr.
const (
	OpLoad = "Load"
	OpSave = "Save"
)

var reserved = map[string]struct{}{
	KeyName:       {},
	KeyMap:        {},
	KeyDefaults:   {},
	KeySavedTo:    {},
	KeyLoadedFrom: {},
}

var exported = map[string]struct{}{
	OpLoad: {},
	OpSave: {},
}

// Key returns the canonical string form of key. Numbers and their textual
// form collapse to the same key: Key(1) == Key("1").
func Key(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case fmt.Stringer:
		return k.String()
	}
	if s, err := cast.ToStringE(key); err == nil {
		return s
	}
	return fmt.Sprint(key)
}

// IsReserved reports whether name is a reserved internal name.
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// IsExported reports whether name is an operation exposed through Attr.
func IsExported(name string) bool {
	_, ok := exported[name]
	return ok
}

func stringifyKeys[K comparable](data map[K]any) (map[string]any, error) {
	out := make(map[string]any, len(data))
	for key, value := range data {
		k := Key(key)
		if IsReserved(k) {
			return nil, reservedKey(k)
		}
		out[k] = value
	}
	return out, nil
}
