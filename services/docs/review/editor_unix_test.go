// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

//go:build !windows

package review

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternalEditor_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "with space")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	replacement := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(replacement, []byte("\"\"\"\nRewritten.\n\"\"\"\n"), 0o644))

	e := &ExternalEditor{
		Command: "cp '" + replacement + "'",
		Suffix:  ".py",
		Stdout:  &bytes.Buffer{},
		Stderr:  &bytes.Buffer{},
	}
	got, err := e.Edit(context.Background(), []string{`"""`, "Old.", `"""`})
	require.NoError(t, err)
	assert.Equal(t, []string{`"""`, "Rewritten.", `"""`}, got)
}

func TestExternalEditor_Failures(t *testing.T) {
	_, err := (&ExternalEditor{Command: "false"}).Edit(context.Background(), []string{"x"})
	assert.Error(t, err)

	_, err = (&ExternalEditor{Command: "'unterminated"}).Edit(context.Background(), []string{"x"})
	assert.Error(t, err)

	_, err = (&ExternalEditor{Command: "   "}).Edit(context.Background(), []string{"x"})
	assert.Error(t, err)
}
