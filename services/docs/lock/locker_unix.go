// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build unix

package lock

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// UnixFileLocker implements FileLocker using flock(2).
//
// # Description
//
// Locks are advisory and belong to the open file description, so two
// handles opened on the same path contend even inside one process. Closing
// the handle releases the lock.
type UnixFileLocker struct{}

// Lock takes LOCK_EX|LOCK_NB on f.
func (l *UnixFileLocker) Lock(f *os.File) error {
	err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EWOULDBLOCK) {
		return ErrFileLocked
	}
	return fmt.Errorf("flock %s: %w", f.Name(), err)
}

// Unlock releases the flock on f.
func (l *UnixFileLocker) Unlock(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		return fmt.Errorf("unlock %s: %w", f.Name(), err)
	}
	return nil
}

func newPlatformLocker() FileLocker {
	return &UnixFileLocker{}
}
