package settings

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-settings/home"
)

var (
	// ErrKeyNotFound is returned when a key is absent from every layer, or
	// when Delete targets a key the store does not own.
	ErrKeyNotFound = errors.New("settings: key not found")
	// ErrReservedKey is returned when a reserved internal name is used as
	// an ordinary key.
	ErrReservedKey = errors.New("settings: reserved key")
	// ErrTypeMismatch is returned by Lookup when the stored value has a
	// different type.
	ErrTypeMismatch = errors.New("settings: type mismatch")
	// ErrHomeDirectoryUnresolved is returned by New when no base directory
	// could be determined.
	ErrHomeDirectoryUnresolved = home.ErrUnresolved

	// ErrFileRead classifies failures opening or reading a settings file.
	ErrFileRead = errors.New("settings: file read failed")
	// ErrFileParse classifies files that are not a JSON object.
	ErrFileParse = errors.New("settings: file parse failed")
	// ErrFileWrite classifies failures writing a settings file.
	ErrFileWrite = errors.New("settings: file write failed")
)

// FileError reports a persistence failure. Kind is one of ErrFileRead,
// ErrFileParse or ErrFileWrite and is matched by errors.Is.
type FileError struct {
	Kind error
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e == nil {
		return "<nil>"
	}
	kind := "settings: file error"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the error kind.
func (e *FileError) Is(target error) bool {
	return e != nil && e.Kind != nil && target == e.Kind
}

func keyNotFound(key string) error {
	return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
}

func reservedKey(key string) error {
	return fmt.Errorf("%w: %q", ErrReservedKey, key)
}
