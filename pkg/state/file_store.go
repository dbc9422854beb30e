package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/goliatone/go-settings/pathresolve"
)

const (
	defaultFileMode = 0o644
	defaultDirMode  = 0o755
)

// FileStore persists snapshots as JSON documents on a billy.Filesystem.
type FileStore[T any] struct {
	fs       billy.Filesystem
	logger   *slog.Logger
	fileMode os.FileMode
	backup   bool
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*fileStoreConfig)

type fileStoreConfig struct {
	logger   *slog.Logger
	fileMode os.FileMode
	backup   bool
}

// WithLogger routes FileStore diagnostics to logger.
func WithLogger(logger *slog.Logger) FileStoreOption {
	return func(cfg *fileStoreConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithFileMode sets the permission bits used for new files.
func WithFileMode(mode os.FileMode) FileStoreOption {
	return func(cfg *fileStoreConfig) {
		cfg.fileMode = mode
	}
}

// WithBackup toggles the "<path>.bak" copy made before overwriting. It is on
// by default.
func WithBackup(enabled bool) FileStoreOption {
	return func(cfg *fileStoreConfig) {
		cfg.backup = enabled
	}
}

// NewFileStore builds a FileStore on fs. A nil fs means the host filesystem.
func NewFileStore[T any](fs billy.Filesystem, opts ...FileStoreOption) *FileStore[T] {
	cfg := fileStoreConfig{
		logger:   slog.New(slog.DiscardHandler),
		fileMode: defaultFileMode,
		backup:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if fs == nil {
		fs = osfs.New("/")
	}
	return &FileStore[T]{
		fs:       fs,
		logger:   cfg.logger,
		fileMode: cfg.fileMode,
		backup:   cfg.backup,
	}
}

// Load reads and decodes the snapshot for ref. A missing file yields ok=false.
func (s *FileStore[T]) Load(_ context.Context, ref Ref) (T, Meta, bool, error) {
	var zero T
	path, err := ref.Identifier()
	if err != nil {
		return zero, Meta{}, false, err
	}

	raw, err := s.readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return zero, Meta{Path: path}, false, nil
		}
		return zero, Meta{}, false, fmt.Errorf("state: read %q: %w", path, err)
	}

	var snapshot T
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return zero, Meta{}, false, fmt.Errorf("%w %q: %w", ErrDecode, path, err)
	}

	meta := Meta{Path: path, Size: int64(len(raw))}
	if info, err := s.fs.Stat(path); err == nil {
		meta.UpdatedAt = info.ModTime()
	}
	return snapshot, meta, true, nil
}

// Save encodes snapshot and replaces the file for ref with it.
func (s *FileStore[T]) Save(_ context.Context, ref Ref, snapshot T) (Meta, error) {
	path, err := ref.Identifier()
	if err != nil {
		return Meta{}, err
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return Meta{}, fmt.Errorf("%w %q: %w", ErrEncode, path, err)
	}

	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, defaultDirMode); err != nil {
		return Meta{}, fmt.Errorf("state: create directory %q: %w", dir, err)
	}

	meta := Meta{Path: path, Size: int64(len(payload))}
	if s.backup {
		if backup, ok := s.backupExisting(path); ok {
			meta.BackupPath = backup
		}
	}

	if err := s.replace(path, payload); err != nil {
		return Meta{}, err
	}
	meta.UpdatedAt = time.Now()
	return meta, nil
}

// backupExisting copies the current file to its backup path. Failures are
// logged and otherwise ignored.
func (s *FileStore[T]) backupExisting(path string) (string, bool) {
	raw, err := s.readFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("settings backup skipped", "path", path, "error", err)
		}
		return "", false
	}
	backup := pathresolve.BackupPath(path)
	if err := util.WriteFile(s.fs, backup, raw, s.fileMode); err != nil {
		s.logger.Warn("settings backup failed", "path", backup, "error", err)
		return "", false
	}
	if info, err := s.fs.Stat(path); err == nil {
		if changer, ok := s.fs.(billy.Change); ok {
			_ = changer.Chtimes(backup, info.ModTime(), info.ModTime())
		}
	}
	s.logger.Debug("settings backup written", "path", backup)
	return backup, true
}

// replace writes payload to a temporary sibling and renames it over path so
// readers never observe a partially written file.
func (s *FileStore[T]) replace(path string, payload []byte) error {
	tmp, err := util.TempFile(s.fs, filepath.Dir(path), "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("state: create temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("state: write %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("state: close %q: %w", path, err)
	}
	if changer, ok := s.fs.(billy.Change); ok {
		_ = changer.Chmod(tmpName, s.fileMode)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("state: replace %q: %w", path, err)
	}
	return nil
}

func (s *FileStore[T]) readFile(path string) ([]byte, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
