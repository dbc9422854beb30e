package state

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-settings/pathresolve"
)

// ErrDecode marks a snapshot that was read but could not be decoded.
var ErrDecode = errors.New("state: decode snapshot")

// ErrEncode marks a snapshot that could not be encoded for writing.
var ErrEncode = errors.New("state: encode snapshot")

// ErrInvalidRef is returned when a Ref lacks the fields needed for a path.
var ErrInvalidRef = errors.New("state: invalid ref")

// Ref identifies one persisted snapshot.
type Ref struct {
	// Name is the store name, used as the file name prefix.
	Name string
	// Location is the base directory the file lives in.
	Location string
	// LibraryLocation is the source location of the persisting library.
	LibraryLocation string
	// CallerLocation is the source location of the client code. Empty means
	// pathresolve.UndefinedCaller.
	CallerLocation string
}

// Meta is storage-owned metadata describing the last load or save.
type Meta struct {
	Path       string    `json:"path,omitempty"`
	BackupPath string    `json:"backup_path,omitempty"`
	Size       int64     `json:"size,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// Store loads/saves one snapshot for a single reference. A missing snapshot
// is reported with ok=false and a nil error.
type Store[T any] interface {
	Load(ctx context.Context, ref Ref) (snapshot T, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot T) (Meta, error)
}

// Identifier returns the absolute file path the ref resolves to. A relative
// Location is taken from the working directory.
func (r Ref) Identifier() (string, error) {
	if strings.TrimSpace(r.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidRef)
	}
	if strings.ContainsAny(r.Name, `/\`) {
		return "", fmt.Errorf("%w: name %q contains a path separator", ErrInvalidRef, r.Name)
	}
	if strings.TrimSpace(r.Location) == "" {
		return "", fmt.Errorf("%w: location is required for %q", ErrInvalidRef, r.Name)
	}
	location, err := filepath.Abs(r.Location)
	if err != nil {
		return "", fmt.Errorf("%w: location %q: %w", ErrInvalidRef, r.Location, err)
	}
	return pathresolve.Resolve(r.Name, r.LibraryLocation, r.CallerLocation, location), nil
}
