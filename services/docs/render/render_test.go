// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/docnsrt/services/docs/commit"
	"github.com/AleutianAI/docnsrt/services/docs/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadIndent(t *testing.T) {
	path := writeFile(t, "a.py", "def f():\n    x = 1\n\t\ty = 2\n  \tz\nlast")

	tests := []struct {
		line int
		want int
	}{
		{0, 0},
		{1, 4},
		{2, 0},
		{3, 2},
		{4, 0},
	}
	for _, tt := range tests {
		got, err := ReadIndent(path, tt.line)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "line %d", tt.line)
	}

	_, err := ReadIndent(path, 5)
	assert.ErrorIs(t, err, model.ErrLineOutOfRange)
	_, err = ReadIndent(path, -1)
	assert.ErrorIs(t, err, model.ErrLineOutOfRange)
	_, err = ReadIndent(filepath.Join(t.TempDir(), "none"), 0)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		language, style, want string
	}{
		{"python", "", StylePEP},
		{"python", "basic", StylePEP},
		{"python", "PEP", StylePEP},
		{"python", "numpy", StyleNumpy},
		{"csharp", "", StyleXML},
		{"csharp", "doxygen", StyleDoxygen},
	}
	for _, tt := range tests {
		r, err := NewRenderer(tt.language, tt.style)
		require.NoError(t, err)
		assert.Equal(t, tt.want, r.Style())
	}

	_, err := NewRenderer("python", "xml")
	assert.ErrorIs(t, err, model.ErrUnsupportedStyle)
	_, err = NewRenderer("go", "")
	assert.ErrorIs(t, err, model.ErrUnsupportedLanguage)
	assert.Equal(t, StyleXML, DefaultStyle("csharp"))
}

var sampleValues = model.TemplateValues{
	Summary:           "Adds two numbers.",
	Parameters:        []model.Parameter{{Name: "a", Description: "first"}, {Name: "b", Type: "float", Description: "second"}},
	ReturnDescription: "the sum",
}

func TestPEPRenderer(t *testing.T) {
	path := writeFile(t, "m.py", "class K:\n    def add(self, a: int, b):\n        return a + b\n")
	fc := model.FunctionContext{
		StartLine:        1,
		SignatureEndLine: 1,
		Parameters:       []model.Parameter{{Name: "a", Type: "int"}, {Name: "b"}},
	}

	got, err := (&PEPRenderer{}).Render(path, fc, sampleValues)
	require.NoError(t, err)

	assert.Equal(t, []string{
		`"""`,
		"Adds two numbers.",
		"",
		"Args:",
		"    a (int): first",
		"    b (float): second",
		"",
		"Returns:",
		"    the sum",
		`"""`,
	}, got.Lines)
	assert.Equal(t, 2, got.StartLine)
	assert.Equal(t, 8, got.OffsetSpaces)
	assert.Equal(t, model.LocationBelow, got.Location)
}

func TestPEPRenderer_NoParamsNoReturn(t *testing.T) {
	path := writeFile(t, "m.py", "def f():\n    pass\n")
	got, err := (&PEPRenderer{}).Render(path, model.FunctionContext{}, model.TemplateValues{Summary: "Does f."})
	require.NoError(t, err)
	assert.Equal(t, []string{`"""`, "Does f.", `"""`}, got.Lines)
}

func TestPEPRenderer_ReturnsWithoutParamsHasSingleSeparator(t *testing.T) {
	path := writeFile(t, "m.py", "def f():\n    return 1\n")
	got, err := (&PEPRenderer{}).Render(path, model.FunctionContext{}, model.TemplateValues{Summary: "Does f.", ReturnDescription: "one"})
	require.NoError(t, err)
	assert.Equal(t, []string{`"""`, "Does f.", "", "Returns:", "    one", `"""`}, got.Lines)
}

func TestPEPRenderer_OutOfRange(t *testing.T) {
	path := writeFile(t, "m.py", "def f():\n    pass\n")
	_, err := (&PEPRenderer{}).Render(path, model.FunctionContext{StartLine: 10}, sampleValues)
	assert.ErrorIs(t, err, model.ErrLineOutOfRange)
}

func TestNumpyRenderer(t *testing.T) {
	path := writeFile(t, "m.py", "def add(a, b) -> float:\n    return a + b\n")
	fc := model.FunctionContext{ReturnType: "float"}

	got, err := (&NumpyRenderer{}).Render(path, fc, sampleValues)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`"""`,
		"Adds two numbers.",
		"",
		"Parameters",
		"----------",
		"a : Any",
		"    first",
		"b : float",
		"    second",
		"",
		"Returns",
		"-------",
		"float",
		"    the sum",
		`"""`,
	}, got.Lines)
	assert.Equal(t, 4, got.OffsetSpaces)
}

func TestXMLRenderer(t *testing.T) {
	path := writeFile(t, "C.cs", "class C\n{\n    public List<int> Add(int a, int b) { }\n}\n")
	fc := model.FunctionContext{StartLine: 2}
	v := sampleValues
	v.Summary = "Returns List<int> & more."
	v.Exceptions = []model.ExceptionDoc{{Type: "ArgumentException", Description: "bad"}}

	got, err := (&XMLRenderer{}).Render(path, fc, v)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/// <summary>",
		"/// Returns List&lt;int&gt; &amp; more.",
		"/// </summary>",
		`/// <param name="a">first</param>`,
		`/// <param name="b">second</param>`,
		"/// <returns>the sum</returns>",
		`/// <exception cref="ArgumentException">bad</exception>`,
	}, got.Lines)
	assert.Equal(t, 2, got.StartLine)
	assert.Equal(t, 4, got.OffsetSpaces)
	assert.Equal(t, model.LocationAbove, got.Location)
}

func TestDoxygenRenderer(t *testing.T) {
	path := writeFile(t, "C.cs", "void F(int a, int b) { }\n")
	got, err := (&DoxygenRenderer{}).Render(path, model.FunctionContext{}, sampleValues)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/**",
		" * @brief Adds two numbers.",
		" *",
		" * @param a first",
		" * @param b second",
		" * @return the sum",
		" */",
	}, got.Lines)
	assert.Zero(t, got.OffsetSpaces)
}

// Every committed line is the rendered line behind exactly the offset
// spaces, and the signature itself is untouched.
func TestRenderCommitRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		src      string
		renderer Renderer
		fc       model.FunctionContext
		indent   int
	}{
		{
			name:     "pep nested method",
			file:     "m.py",
			src:      "class K:\n    def f(self, a):\n        return a\n",
			renderer: &PEPRenderer{},
			fc:       model.FunctionContext{StartLine: 1, SignatureEndLine: 1},
			indent:   8,
		},
		{
			name:     "xml method",
			file:     "C.cs",
			src:      "class C\n{\n    void F(int a)\n    {\n    }\n}\n",
			renderer: &XMLRenderer{},
			fc:       model.FunctionContext{StartLine: 2, SignatureEndLine: 2},
			indent:   4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.src)
			srcLines := strings.Split(tt.src, "\n")
			signature := srcLines[tt.fc.StartLine]

			r, err := tt.renderer.Render(path, tt.fc, sampleValues)
			require.NoError(t, err)

			guard, err := commit.CaptureGuard(path)
			require.NoError(t, err)
			edit := model.NewEdit(path, 0, tt.fc, r)
			_, err = commit.NewEngine().Commit(context.Background(), path, []model.DocstringEdit{edit}, guard)
			require.NoError(t, err)

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			out := strings.Split(string(raw), "\n")

			first := r.StartLine
			for i := range r.Lines {
				assert.Equal(t, strings.Repeat(" ", tt.indent)+r.Lines[i], out[first+i])
			}

			sigAt := tt.fc.StartLine
			if r.Location == model.LocationAbove {
				sigAt += len(r.Lines)
			}
			assert.Equal(t, signature, out[sigAt])
		})
	}
}
