package store

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/compassd/compass/internal/directory"
)

// builtinDirectory is the default server list shipped with the binary,
// used as the ultimate fallback when no cached list exists.
//
//go:embed builtin.properties
var builtinDirectory []byte

// Store persists directories: the read-only builtin resource and the
// on-disk cached file written after a successful refresh.
type Store struct {
	cachePath   string
	builtinPath string // optional override of the embedded builtin
}

func New(cachePath string) *Store {
	return &Store{cachePath: cachePath}
}

// NewWithBuiltin returns a store reading the builtin directory from a
// file instead of the embedded resource.
func NewWithBuiltin(cachePath, builtinPath string) *Store {
	return &Store{cachePath: cachePath, builtinPath: builtinPath}
}

// LoadBuiltin parses the bundled default directory. Failure here is
// unexpected in a correctly packaged build.
func (s *Store) LoadBuiltin() (*directory.Directory, error) {
	data := builtinDirectory
	if s.builtinPath != "" {
		var err error
		data, err = os.ReadFile(s.builtinPath)
		if err != nil {
			return nil, fmt.Errorf("store: read builtin directory: %w", err)
		}
	}
	d, err := directory.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("store: parse builtin directory: %w", err)
	}
	return d, nil
}

// LoadCached parses the on-disk cached directory. Absence of the file
// is the routine cold-start condition; callers distinguish it with
// errors.Is(err, os.ErrNotExist).
func (s *Store) LoadCached() (*directory.Directory, error) {
	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		return nil, fmt.Errorf("store: read cached directory: %w", err)
	}
	d, err := directory.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("store: parse cached directory: %w", err)
	}
	return d, nil
}

// SaveCached writes the directory to the cache file. The content is
// written to a temporary file and renamed into place, so a failed write
// never leaves a file that parses to a different valid directory than
// before or after.
func (s *Store) SaveCached(d *directory.Directory) error {
	dir := filepath.Dir(s.cachePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.cachePath)+".tmp*")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	if _, err := tmp.Write(d.Serialize()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: write cached directory: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.cachePath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: replace cached directory: %w", err)
	}
	return nil
}

// DeleteCached removes the cache file. Idempotent; a missing file is
// not an error.
func (s *Store) DeleteCached() error {
	if err := os.Remove(s.cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store: delete cached directory: %w", err)
	}
	return nil
}
