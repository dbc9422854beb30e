package settings

import (
	"fmt"
	"maps"
)

// Attr is the attribute-style access path. Exported operation names return
// the bound method, reserved names return internal fields, and any other
// name reads the value map exactly like Get.
func (s *Store) Attr(name string) (any, error) {
	switch name {
	case OpLoad:
		return s.Load, nil
	case OpSave:
		return s.Save, nil
	}
	return s.Get(name)
}

// SetAttr is the attribute-style write path. Ordinary names are written like
// Set. Of the reserved names, __map replaces the own values and __loadedFrom
// and __savedTo accept a ReturnValue; the rest are read-only.
func (s *Store) SetAttr(name string, value any) error {
	if IsExported(name) {
		return fmt.Errorf("%w: %q is an operation", ErrReservedKey, name)
	}
	if !IsReserved(name) {
		return s.Set(name, value)
	}

	switch name {
	case KeyMap:
		values, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s expects map[string]any, got %T", ErrTypeMismatch, name, value)
		}
		own, err := stringifyKeys(values)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.own = maps.Clone(own)
		s.mu.Unlock()
		return nil
	case KeyLoadedFrom, KeySavedTo:
		result, ok := value.(ReturnValue)
		if !ok {
			return fmt.Errorf("%w: %s expects ReturnValue, got %T", ErrTypeMismatch, name, value)
		}
		if result.Path != "" && result.Err != nil {
			return fmt.Errorf("%w: %s cannot carry both a path and an error", ErrTypeMismatch, name)
		}
		s.mu.Lock()
		if name == KeyLoadedFrom {
			s.lastLoad = result
		} else {
			s.lastSave = result
		}
		s.mu.Unlock()
		return nil
	}
	return fmt.Errorf("%w: %q is read-only", ErrReservedKey, name)
}
