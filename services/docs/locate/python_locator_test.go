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
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

const pythonSource = `import os


def top(a, b: int, c=1, d: str = "x", *args, **kwargs) -> int:
    """Existing doc."""
    return a


class Greeter:
    def hello(self, name):
        def inner(x):
            return x
        return inner(name)

    @staticmethod
    def util(
        value,
    ):
        # comment first
        """
        Multi
        """
        pass


def one_liner(): pass


def _private():
    return 1
`

func locatePython(t *testing.T, include, exclude []string) []model.FunctionContext {
	t.Helper()
	got, err := NewPythonLocator().LocateSource(context.Background(), "pkg/mod.py", []byte(pythonSource), include, exclude)
	require.NoError(t, err)
	return got
}

func names(fcs []model.FunctionContext) []string {
	out := make([]string, len(fcs))
	for i, fc := range fcs {
		out[i] = fc.QualifiedName
	}
	return out
}

func TestPythonLocator_PreOrderQualifiedNames(t *testing.T) {
	got := locatePython(t, []string{"*"}, nil)

	assert.Equal(t, []string{
		"mod.top",
		"mod.Greeter.hello",
		"mod.Greeter.hello.inner",
		"mod.Greeter.util",
		"mod._private",
	}, names(got))
}

func TestPythonLocator_TopLevelFunction(t *testing.T) {
	got := locatePython(t, []string{"top"}, nil)
	require.Len(t, got, 1)
	top := got[0]

	assert.Equal(t, "top", top.Name)
	assert.Equal(t, 3, top.StartLine)
	assert.Equal(t, 3, top.SignatureEndLine)
	assert.Equal(t, `def top(a, b: int, c=1, d: str = "x", *args, **kwargs) -> int`, top.Signature)
	assert.Equal(t, "int", top.ReturnType)
	assert.Equal(t, []model.Parameter{
		{Name: "a"},
		{Name: "b", Type: "int"},
		{Name: "c"},
		{Name: "d", Type: "str"},
		{Name: "*args"},
		{Name: "**kwargs"},
	}, top.Parameters)

	require.NotNil(t, top.Existing)
	assert.Equal(t, 4, top.Existing.StartLine)
	assert.Equal(t, []string{`    """Existing doc."""`}, top.Existing.Lines)
	assert.Contains(t, top.Body, "return a")
}

func TestPythonLocator_MethodDropsSelf(t *testing.T) {
	got := locatePython(t, []string{"hello"}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, []model.Parameter{{Name: "name"}}, got[0].Parameters)
	assert.Nil(t, got[0].Existing)
	assert.Equal(t, 9, got[0].StartLine)
}

func TestPythonLocator_NestedFunctionKeepsSelfNamedParameter(t *testing.T) {
	got := locatePython(t, []string{"inner"}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "mod.Greeter.hello.inner", got[0].QualifiedName)
	assert.Equal(t, []model.Parameter{{Name: "x"}}, got[0].Parameters)
}

func TestPythonLocator_DecoratedMultiLineSignature(t *testing.T) {
	got := locatePython(t, []string{"util"}, nil)
	require.Len(t, got, 1)
	util := got[0]

	assert.Equal(t, 15, util.StartLine, "def line, not the decorator")
	assert.Equal(t, 17, util.SignatureEndLine)
	assert.Equal(t, []model.Parameter{{Name: "value"}}, util.Parameters)
	assert.Equal(t, "def util( value, )", util.Signature)

	require.NotNil(t, util.Existing)
	assert.Equal(t, 19, util.Existing.StartLine)
	assert.Equal(t, []string{`        """`, "        Multi", `        """`}, util.Existing.Lines)
}

func TestPythonLocator_IncludeThenExclude(t *testing.T) {
	got := locatePython(t, []string{"h*", "_*"}, []string{"_*"})
	assert.Equal(t, []string{"mod.Greeter.hello"}, names(got))

	got = locatePython(t, []string{"*"}, []string{"*e*"})
	assert.Equal(t, []string{"mod.top", "mod.Greeter.util"}, names(got))

	assert.Empty(t, locatePython(t, nil, nil))
}

func TestPythonLocator_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewPythonLocator().LocateSource(ctx, "bad.py", []byte("def broken(:\n    pass\n"), []string{"*"}, nil)
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = NewPythonLocator().LocateSource(ctx, "bad.py", []byte{0xff, 0xfe}, []string{"*"}, nil)
	assert.ErrorIs(t, err, ErrInvalidContent)

	_, err = NewPythonLocator(WithMaxFileSize(4)).LocateSource(ctx, "big.py", []byte("def f():\n    pass\n"), []string{"*"}, nil)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = NewPythonLocator().Locate(ctx, filepath.Join(t.TempDir(), "missing.py"), []string{"*"}, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewPythonLocator().LocateSource(canceled, "a.py", []byte("def f():\n    pass\n"), []string{"*"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPythonLocator_LocateReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svc.py")
	require.NoError(t, os.WriteFile(path, []byte("def run():\n    pass\n"), 0o644))

	got, err := NewPythonLocator().Locate(context.Background(), path, []string{"*"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "svc.run", got[0].QualifiedName)
}

func TestPythonLocator_CRLF(t *testing.T) {
	src := "def f():\r\n    \"\"\"Doc.\"\"\"\r\n    pass\r\n"
	got, err := NewPythonLocator().LocateSource(context.Background(), "w.py", []byte(src), []string{"*"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Existing)
	assert.Equal(t, []string{`    """Doc."""`}, got[0].Existing.Lines)
}

func TestPythonLocator_DocstringSharingLineWithCodeSkipped(t *testing.T) {
	src := "def f(x):\n    \"\"\"Old.\"\"\"; y = x + 1\n    return y\n\n\ndef g():\n    \"\"\"Kept.\"\"\"\n    return 2\n"
	got, err := NewPythonLocator().LocateSource(context.Background(), "m.py", []byte(src), []string{"*"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"m.g"}, names(got))
}

func TestPythonLocator_MultiLineDocstringEndingOnCodeLineSkipped(t *testing.T) {
	src := "def f():\n    \"\"\"Old\n    doc.\"\"\"; z = 1\n    return z\n"
	got, err := NewPythonLocator().LocateSource(context.Background(), "m.py", []byte(src), []string{"*"}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
