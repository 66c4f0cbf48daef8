// Package store owns the vault container file on disk: path resolution,
// the advisory lockfile, and the atomic write protocol.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	// ContainerFile is the vault container file name.
	ContainerFile = "vault.vx"

	// LockFile sits adjacent to the container and serializes access from
	// concurrent invocations on the same host.
	LockFile = "vault.vx.lock"

	// TempDirName is the store-owned namespace for ephemeral key exports.
	TempDirName = "tmp"

	dirMode  = 0o700
	fileMode = 0o600

	lockRetryInterval = 100 * time.Millisecond
)

var (
	// ErrNotExist is returned when no container file exists yet.
	ErrNotExist = errors.New("vault container does not exist")

	// ErrBusy is returned when the advisory lock is held by another
	// process past the bounded wait.
	ErrBusy = errors.New("vault lock is held by another process")
)

// Store manages one vault directory. It holds no open handles between
// operations.
type Store struct {
	dir string
}

// New returns a store rooted at dir. Nothing is created until the first
// write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the vault directory.
func (s *Store) Dir() string { return s.dir }

// ContainerPath returns the path of the container file.
func (s *Store) ContainerPath() string { return filepath.Join(s.dir, ContainerFile) }

// TempDir returns the store-owned directory for ephemeral key exports.
func (s *Store) TempDir() string { return filepath.Join(s.dir, TempDirName) }

// Exists reports whether a container file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.ContainerPath())
	return err == nil
}

// Lock acquires the exclusive advisory lock, waiting at most timeout.
// The returned release function must be called when the operation ends.
func (s *Store) Lock(timeout time.Duration) (release func(), err error) {
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return nil, fmt.Errorf("create vault directory: %w", err)
	}

	fl := flock.New(filepath.Join(s.dir, LockFile))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrBusy
		}
		return nil, fmt.Errorf("acquire vault lock: %w", err)
	}
	if !locked {
		return nil, ErrBusy
	}

	return func() { _ = fl.Unlock() }, nil
}

// Read returns the raw container bytes.
func (s *Store) Read() ([]byte, error) {
	data, err := os.ReadFile(s.ContainerPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("read vault container: %w", err)
	}
	return data, nil
}

// WriteAtomic replaces the container using write-temp, fsync, rename,
// fsync-directory. On any failure the live container is left untouched and
// the temporary file is removed.
func (s *Store) WriteAtomic(data []byte) error {
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ContainerFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary container: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if err := tmp.Chmod(fileMode); err != nil {
		cleanup()
		return fmt.Errorf("restrict temporary container mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temporary container: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("flush temporary container: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temporary container: %w", err)
	}

	if err := os.Rename(tmpPath, s.ContainerPath()); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace vault container: %w", err)
	}

	syncDir(s.dir)
	return nil
}

// syncDir flushes directory metadata where the platform supports it. The
// rename has already happened, so failure here is not fatal.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	defer d.Close()
	_ = d.Sync()
}
