package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrLocked = errors.New("data dir is in use by another engine process")

const lockFileName = "engine.lock"

// Lock takes an exclusive, non-blocking lock on dataDir. Release it with Unlock.
func Lock(dataDir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	fl := flock.New(filepath.Join(dataDir, lockFileName))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return fl, nil
}
