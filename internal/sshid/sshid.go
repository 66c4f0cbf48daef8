// Package sshid implements the ephemeral private-key export used when
// invoking the external SSH client. Its contract is unconditional release:
// on every exit path the exported file is overwritten with zeros and
// removed.
package sshid

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	dirMode  = 0o700
	fileMode = 0o600

	// filePrefix namespaces the service's own files so Sweep never touches
	// anything else.
	filePrefix = "key-"
)

// Exporter writes decrypted private keys into a dedicated temporary
// directory for the duration of a single scope.
type Exporter struct {
	dir string
}

// NewExporter returns an exporter rooted at dir. The directory is created
// lazily with owner-only permissions.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// ExportEphemeral writes pem to a freshly created file readable only by
// the current user, hands the path to scope, and removes the file on every
// exit path: normal return, error, or panic. The key bytes are overwritten
// with zeros before deletion.
func (e *Exporter) ExportEphemeral(pem []byte, scope func(path string) error) (err error) {
	if err := os.MkdirAll(e.dir, dirMode); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(e.dir, filePrefix+uuid.New().String())

	// O_EXCL guarantees the file did not previously exist.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return fmt.Errorf("create ephemeral key file: %w", err)
	}

	defer func() {
		if cleanupErr := shredFile(path, len(pem)); cleanupErr != nil && err == nil {
			err = cleanupErr
		}
	}()

	if _, err := f.Write(pem); err != nil {
		f.Close()
		return fmt.Errorf("write ephemeral key file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("flush ephemeral key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ephemeral key file: %w", err)
	}

	return scope(path)
}

// Sweep removes stale exports left behind by a previous invocation that
// was killed before its cleanup ran. Best effort; called on vault
// operations.
func (e *Exporter) Sweep() {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), filePrefix) {
			continue
		}
		path := filepath.Join(e.dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if err := shredFile(path, int(info.Size())); err != nil {
			slog.Debug("sweep failed for stale key file", "error", err)
		}
	}
}

// shredFile overwrites a file with zero bytes, truncates it, and removes
// it.
func shredFile(path string, size int) error {
	f, err := os.OpenFile(path, os.O_WRONLY, fileMode)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open key file for shredding: %w", err)
	}

	if size > 0 {
		if _, err := f.WriteAt(make([]byte, size), 0); err != nil {
			f.Close()
			return fmt.Errorf("overwrite key file: %w", err)
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return fmt.Errorf("flush overwritten key file: %w", err)
		}
	}
	if err := f.Truncate(0); err != nil {
		f.Close()
		return fmt.Errorf("truncate key file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close key file: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove key file: %w", err)
	}
	return nil
}
