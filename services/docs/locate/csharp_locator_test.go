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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

const csharpSource = `using System;

namespace Demo
{
    public class Calc
    {
        /// <summary>
        /// Adds.
        /// </summary>
        public int Add(int a, int b)
        {
            int Twice(int x) => x * 2;
            return Twice(a) + b;
        }

        // stale note

        public Calc(int seed)
        {
        }

        /* block
           comment */
        [Obsolete]
        public void Old() { }

        int field; // trailing
        void Tail() { }
    }
}
`

func locateCSharp(t *testing.T, opts ...Option) map[string]model.FunctionContext {
	t.Helper()
	got, err := NewCSharpLocator(opts...).LocateSource(context.Background(), "src/Calc.cs", []byte(csharpSource), []string{"*"}, nil)
	require.NoError(t, err)
	byName := make(map[string]model.FunctionContext, len(got))
	for _, fc := range got {
		byName[fc.Name] = fc
	}
	return byName
}

func TestCSharpLocator_Order(t *testing.T) {
	got, err := NewCSharpLocator().LocateSource(context.Background(), "src/Calc.cs", []byte(csharpSource), []string{"*"}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Calc.Demo.Calc.Add",
		"Calc.Demo.Calc.Add.Twice",
		"Calc.Demo.Calc.Calc",
		"Calc.Demo.Calc.Old",
		"Calc.Demo.Calc.Tail",
	}, names(got))
}

func TestCSharpLocator_TripleSlashBlock(t *testing.T) {
	add := locateCSharp(t)["Add"]

	assert.Equal(t, 9, add.StartLine)
	assert.Equal(t, "public int Add(int a, int b)", add.Signature)
	assert.Equal(t, []model.Parameter{{Name: "a", Type: "int"}, {Name: "b", Type: "int"}}, add.Parameters)

	require.NotNil(t, add.Existing)
	assert.Equal(t, 6, add.Existing.StartLine)
	assert.Equal(t, []string{
		"        /// <summary>",
		"        /// Adds.",
		"        /// </summary>",
	}, add.Existing.Lines)
}

func TestCSharpLocator_LocalFunctionHasNoDocstring(t *testing.T) {
	twice := locateCSharp(t)["Twice"]
	assert.Equal(t, 11, twice.StartLine)
	assert.Nil(t, twice.Existing)
}

func TestCSharpLocator_BlankLineDetachesComment(t *testing.T) {
	ctor := locateCSharp(t)["Calc"]
	assert.Equal(t, 17, ctor.StartLine)
	assert.Nil(t, ctor.Existing)
	assert.Equal(t, []model.Parameter{{Name: "seed", Type: "int"}}, ctor.Parameters)
}

func TestCSharpLocator_AttachAcrossBlankLines(t *testing.T) {
	ctor := locateCSharp(t, WithAttachAcrossBlankLines(true))["Calc"]
	require.NotNil(t, ctor.Existing)
	assert.Equal(t, 15, ctor.Existing.StartLine)
	assert.Equal(t, []string{"        // stale note", ""}, ctor.Existing.Lines)
	assert.Equal(t, ctor.StartLine, ctor.Existing.EndLine())
}

func TestCSharpLocator_BlockCommentAboveAttributes(t *testing.T) {
	old := locateCSharp(t)["Old"]
	assert.Equal(t, 23, old.StartLine, "attributes belong to the declaration")
	assert.Equal(t, "public void Old()", old.Signature)

	require.NotNil(t, old.Existing)
	assert.Equal(t, 21, old.Existing.StartLine)
	assert.Len(t, old.Existing.Lines, 2)
}

func TestCSharpLocator_TrailingCommentOnCodeLineIgnored(t *testing.T) {
	tail := locateCSharp(t)["Tail"]
	assert.Equal(t, 27, tail.StartLine)
	assert.Nil(t, tail.Existing)
}

func TestCSharpLocator_NestedFunctionOnDeclarationLineSkipped(t *testing.T) {
	src := "class C\n{\n    void G() { void L() { } }\n}\n"
	got, err := NewCSharpLocator().LocateSource(context.Background(), "C.cs", []byte(src), []string{"*"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "G", got[0].Name)
	assert.Equal(t, 2, got[0].StartLine)
}

func TestCSharpLocator_SecondMethodOnSameLineSkipped(t *testing.T) {
	src := "class C\n{\n    void A() { } void B() { }\n    void D() { }\n}\n"
	got, err := NewCSharpLocator().LocateSource(context.Background(), "C.cs", []byte(src), []string{"*"}, nil)
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, fc := range got {
		names = append(names, fc.Name)
	}
	assert.Equal(t, []string{"A", "D"}, names)
}

func TestCSharpLocator_SharedLineSkippedEvenWhenFirstExcluded(t *testing.T) {
	src := "class C\n{\n    void A() { } void B() { }\n}\n"
	got, err := NewCSharpLocator().LocateSource(context.Background(), "C.cs", []byte(src), []string{"*"}, []string{"A"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSharpLocator_TopLevelLocalFunction(t *testing.T) {
	src := "// helper\nvoid Helper() { }\nHelper();\n"
	got, err := NewCSharpLocator().LocateSource(context.Background(), "Program.cs", []byte(src), []string{"*"}, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "Program.Helper", got[0].QualifiedName)
	assert.Equal(t, 1, got[0].StartLine)
	require.NotNil(t, got[0].Existing)
	assert.Equal(t, []string{"// helper"}, got[0].Existing.Lines)
	assert.Equal(t, 0, got[0].Existing.StartLine)
}

func TestCSharpLocator_SyntaxError(t *testing.T) {
	_, err := NewCSharpLocator().LocateSource(context.Background(), "Bad.cs", []byte("class { void ( }"), []string{"*"}, nil)
	assert.ErrorIs(t, err, ErrSyntax)
}
