// SPDX-License-Identifier: AGPL-3.0-only
package singleton

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock represents an acquired primary-instance lock for a history database.
type Lock struct {
	flock *flock.Flock
}

// TryAcquire attempts to acquire the primary-instance lock for the given
// database path. It returns the lock and true if acquired, or nil and false
// if another agent process already holds it. Secondary instances should run
// with exchange history disabled instead of sharing the database.
func TryAcquire(dbPath string) (*Lock, bool, error) {
	lockPath := dbPath + ".lock"

	fl := flock.New(lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, false, fmt.Errorf("singleton: try lock %s: %w", lockPath, err)
	}
	if !locked {
		return nil, false, nil
	}
	return &Lock{flock: fl}, true, nil
}

// Release releases the primary-instance lock.
func (l *Lock) Release() error {
	return l.flock.Unlock()
}
