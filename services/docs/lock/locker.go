// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lock provides exclusive advisory locks on open files.
package lock

import (
	"errors"
	"os"
)

// ErrFileLocked is returned when another holder owns the lock.
var ErrFileLocked = errors.New("file is locked by another process")

// FileLocker abstracts platform-specific advisory file locking.
//
// # Description
//
// Unix uses flock(2) through golang.org/x/sys/unix, Windows uses
// LockFileEx through golang.org/x/sys/windows. Both are non-blocking: a
// lock that cannot be acquired immediately fails with ErrFileLocked.
//
// # Thread Safety
//
// Implementations are safe for concurrent use on different files.
type FileLocker interface {
	// Lock acquires an exclusive lock on f.
	Lock(f *os.File) error

	// Unlock releases the lock on f. Safe to call on an unlocked file.
	Unlock(f *os.File) error
}

// New returns the FileLocker for the current platform.
func New() FileLocker {
	return newPlatformLocker()
}
