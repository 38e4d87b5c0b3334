// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build windows

package lock

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

// WindowsFileLocker implements FileLocker using LockFileEx.
type WindowsFileLocker struct{}

// Lock takes an exclusive, fail-immediately lock on the first byte range.
func (l *WindowsFileLocker) Lock(f *os.File) error {
	err := windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, 1, 0, &windows.Overlapped{},
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, windows.ERROR_LOCK_VIOLATION) {
		return ErrFileLocked
	}
	return fmt.Errorf("LockFileEx %s: %w", f.Name(), err)
}

// Unlock releases the range taken by Lock.
func (l *WindowsFileLocker) Unlock(f *os.File) error {
	if err := windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, &windows.Overlapped{}); err != nil {
		if errors.Is(err, windows.ERROR_NOT_LOCKED) {
			return nil
		}
		return fmt.Errorf("UnlockFileEx %s: %w", f.Name(), err)
	}
	return nil
}

func newPlatformLocker() FileLocker {
	return &WindowsFileLocker{}
}
