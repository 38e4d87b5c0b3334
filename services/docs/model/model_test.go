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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileError_UnwrapsSentinel(t *testing.T) {
	err := NewFileError("a.py", StageCommit, ErrFileChanged)

	assert.True(t, errors.Is(err, ErrFileChanged))
	assert.Equal(t, "commit a.py: file changed externally", err.Error())

	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, StageCommit, fe.Stage)
}

func TestFunctionError_Message(t *testing.T) {
	err := NewFunctionError("a.py", "a.foo", StageGenerate, errors.New("boom"))
	assert.Equal(t, "generate a.foo (a.py): boom", err.Error())
}

func TestFileGuard_Matches(t *testing.T) {
	now := time.Now()
	g := FileGuard{Path: "x", ModTime: now, Size: 10}

	assert.True(t, g.Matches(now, 10))
	assert.False(t, g.Matches(now, 11))
	assert.False(t, g.Matches(now.Add(time.Second), 10))
}

func TestNewEdit_CarriesOriginalCoordinates(t *testing.T) {
	existing := &Docstring{Lines: []string{"/// old"}, StartLine: 3}
	fc := FunctionContext{QualifiedName: "m.C.f", Signature: "()", Existing: existing, StartLine: 4}
	r := Rendered{Lines: []string{"/// new"}, StartLine: 4, OffsetSpaces: 2, Location: LocationAbove}

	e := NewEdit("f.cs", 7, fc, r)

	assert.Equal(t, 4, e.NewDocstring.StartLine)
	assert.Same(t, existing, e.Existing)
	assert.Equal(t, 7, e.Seq)
	assert.Equal(t, "above", e.Location.String())
}
