// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package model

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageLocate   Stage = "locate"
	StageGenerate Stage = "generate"
	StageRender   Stage = "render"
	StageReview   Stage = "review"
	StageCommit   Stage = "commit"
)

// Sentinel errors shared across stages.
var (
	// ErrFileChanged indicates the file's mtime or size no longer matches
	// the guard captured at parse time.
	ErrFileChanged = errors.New("file changed externally")

	// ErrLineOutOfRange indicates a line index outside the file.
	ErrLineOutOfRange = errors.New("line out of range")

	// ErrUnsupportedLanguage indicates no locator exists for the language.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrUnsupportedStyle indicates no renderer exists for the style.
	ErrUnsupportedStyle = errors.New("unsupported style")
)

// FileError is a failure that abandons one whole file.
//
// Description:
//
//	Locator and commit failures are file scoped: the file is skipped and
//	the run continues with the next one.
type FileError struct {
	Path  string
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// FunctionError is a failure that drops one function's docstring.
type FunctionError struct {
	Path     string
	Function string
	Stage    Stage
	Err      error
}

// Error implements the error interface.
func (e *FunctionError) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", e.Stage, e.Function, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FunctionError) Unwrap() error {
	return e.Err
}

// NewFileError wraps err as a file-scoped error.
func NewFileError(path string, stage Stage, err error) *FileError {
	return &FileError{Path: path, Stage: stage, Err: err}
}

// NewFunctionError wraps err as a function-scoped error.
func NewFunctionError(path, function string, stage Stage, err error) *FunctionError {
	return &FunctionError{Path: path, Function: function, Stage: stage, Err: err}
}
