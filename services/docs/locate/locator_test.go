// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

func TestNewLocator(t *testing.T) {
	loc, err := NewLocator("python")
	require.NoError(t, err)
	assert.Equal(t, LanguagePython, loc.Language())

	loc, err = NewLocator("CSharp")
	require.NoError(t, err)
	assert.Equal(t, LanguageCSharp, loc.Language())

	_, err = NewLocator("cobol")
	assert.ErrorIs(t, err, model.ErrUnsupportedLanguage)
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		want    bool
	}{
		{"foo", []string{"*"}, nil, true},
		{"foo", []string{"f?o"}, nil, true},
		{"foo", []string{"bar", "fo*"}, nil, true},
		{"foo", nil, nil, false},
		{"foo", []string{"*"}, []string{"foo"}, false},
		{"test_x", []string{"test_*"}, []string{"*_x"}, false},
		{"_hidden", []string{"*"}, []string{"__*"}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchName(tt.name, tt.include, tt.exclude), "%s %v %v", tt.name, tt.include, tt.exclude)
	}
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "mod", ModuleName("a/b/mod.py"))
	assert.Equal(t, "Program", ModuleName("Program.cs"))
}

func TestSpanAndBlank(t *testing.T) {
	lines := []string{"a", "", "  ", "b"}
	assert.True(t, blank(lines, 1, 3))
	assert.False(t, blank(lines, 0, 2))

	d := span(lines, 0, 1)
	require.NotNil(t, d)
	assert.Equal(t, []string{"a", ""}, d.Lines)
	assert.Nil(t, span(lines, 2, 9))
}
