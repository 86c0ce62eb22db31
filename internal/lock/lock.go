// Package lock provides a cross-process advisory file lock suitable for any
// read-modify-write operation that needs serialization across separate gwt
// invocations (e.g. two `gwt` processes registering hooks concurrently).
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Acquire opens (creating if needed) the flock file at path and blocks until
// an exclusive advisory lock is held. The returned func releases the lock and
// must be called (typically via defer) exactly once.
func Acquire(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	fl := flock.New(path)
	if err := fl.Lock(); err != nil {
		return nil, fmt.Errorf("acquiring lock %s: %w", path, err)
	}

	return func() { _ = fl.Unlock() }, nil
}
