// Package runlock serializes conversions over an output directory.
//
// Two concurrent runs writing the same shard set would interleave episodes,
// so the builder takes an advisory file lock on the output directory for
// the duration of a run.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld indicates another conversion already holds the output directory.
var ErrHeld = errors.New("output directory is locked by another conversion")

// Lock is a held advisory lock on an output directory.
type Lock struct {
	path string
	fl   *flock.Flock
}

// Acquire takes the lock for dir, creating the directory if needed. It does
// not block: a held lock returns ErrHeld immediately.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("runlock: ensure directory: %w", err)
	}
	path := filepath.Join(dir, ".trajconv.lock")
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("runlock: acquire %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("runlock: %s: %w", dir, ErrHeld)
	}
	return &Lock{path: path, fl: fl}, nil
}

// Release drops the lock. Safe to call on a nil lock.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("runlock: release %s: %w", l.path, err)
	}
	return nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}
