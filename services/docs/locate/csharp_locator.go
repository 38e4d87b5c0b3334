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
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// C# node types used by the walk.
const (
	csMethodDeclaration      = "method_declaration"
	csLocalFunction          = "local_function_statement"
	csConstructorDeclaration = "constructor_declaration"
	csGlobalStatement        = "global_statement"
	csParameterList          = "parameter_list"
	csParameter              = "parameter"
	csAttributeList          = "attribute_list"
	csComment                = "comment"
	csIdentifier             = "identifier"
)

// csScopeTypes are the declarations whose names prefix a qualified name.
var csScopeTypes = map[string]bool{
	"namespace_declaration":             true,
	"file_scoped_namespace_declaration": true,
	"class_declaration":                 true,
	"struct_declaration":                true,
	"interface_declaration":             true,
	"record_declaration":                true,
	"record_struct_declaration":         true,
}

// CSharpLocator finds methods, constructors and local functions in C#.
//
// Description:
//
//	Docstrings are leading comments. Walking upward from the declaration,
//	every comment sibling on the line directly above the previous one is
//	part of the block ("///" and "//" runs are one node per line, "/* */"
//	is one node over several lines). The walk stops at the first line that
//	is not a comment, at a comment that shares its line with code, and at
//	a blank line unless AttachAcrossBlankLines is set.
//
//	StartLine is the first line of the declaration, attributes included,
//	so a new comment lands above any [Attribute] lines.
//
// Thread Safety: CSharpLocator is safe for concurrent use.
type CSharpLocator struct {
	opts Options
}

// NewCSharpLocator creates a CSharpLocator.
func NewCSharpLocator(opts ...Option) *CSharpLocator {
	return &CSharpLocator{opts: buildOptions(opts)}
}

// Language implements Locator.
func (c *CSharpLocator) Language() string {
	return LanguageCSharp
}

// Locate implements Locator.
func (c *CSharpLocator) Locate(ctx context.Context, path string, include, exclude []string) ([]model.FunctionContext, error) {
	content, err := readSource(path, c.opts.MaxFileSize)
	if err != nil {
		return nil, err
	}
	return c.LocateSource(ctx, path, content, include, exclude)
}

// LocateSource implements Locator.
func (c *CSharpLocator) LocateSource(ctx context.Context, path string, content []byte, include, exclude []string) (out []model.FunctionContext, err error) {
	ctx, span := startLocateSpan(ctx, LanguageCSharp, path, len(content))
	start := time.Now()
	defer func() {
		endLocateSpan(span, len(out), err)
		recordLocate(ctx, LanguageCSharp, time.Since(start), len(out), err == nil)
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("locate canceled before start: %w", err)
	}
	if err := validate(content, c.opts.MaxFileSize); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(csharp.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("%w: tree-sitter returned nil root node", ErrSyntax)
	}
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, firstErrorPosition(root))
	}

	w := &csharpWalker{
		content:    content,
		lines:      sourceLines(content),
		module:     ModuleName(path),
		path:       path,
		include:    include,
		exclude:    exclude,
		logger:     c.opts.Logger,
		blankLines: c.opts.AttachAcrossBlankLines,
		starts:     make(map[int]bool),
	}
	w.walk(root, nil)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("locate canceled: %w", err)
	}
	return w.out, nil
}

type csharpWalker struct {
	content    []byte
	lines      []string
	module     string
	path       string
	include    []string
	exclude    []string
	logger     *slog.Logger
	blankLines bool
	starts     map[int]bool
	out        []model.FunctionContext
}

func (w *csharpWalker) walk(n *sitter.Node, scope []string) {
	switch t := n.Type(); {
	case csScopeTypes[t]:
		if name := w.name(n); name != "" {
			scope = append(slices.Clip(scope), name)
		}
	case t == csMethodDeclaration || t == csLocalFunction || t == csConstructorDeclaration:
		name := w.name(n)
		if name == "" {
			break
		}
		if MatchName(name, w.include, w.exclude) && w.ownsDeclarationLine(n, name) {
			fc := w.function(n, name, scope)
			w.starts[fc.StartLine] = true
			w.out = append(w.out, fc)
		}
		scope = append(slices.Clip(scope), name)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i), scope)
	}
}

// ownsDeclarationLine reports whether n may take a docstring above its
// first line: no other code precedes it on that line and no function
// already collected starts there.
func (w *csharpWalker) ownsDeclarationLine(n *sitter.Node, name string) bool {
	sp := n.StartPoint()
	row := int(sp.Row)
	shared := w.starts[row]
	if !shared && row < len(w.lines) {
		line := w.lines[row]
		shared = int(sp.Column) <= len(line) && strings.TrimSpace(line[:sp.Column]) != ""
	}
	if shared {
		w.logger.Debug("skipping function that shares its declaration line",
			slog.String("file", w.path),
			slog.String("function", name),
			slog.Int("line", row+1))
		return false
	}
	return true
}

// name returns the "name" field of a declaration, falling back to its
// first identifier child.
func (w *csharpWalker) name(n *sitter.Node) string {
	if nn := n.ChildByFieldName("name"); nn != nil {
		return nodeText(nn, w.content)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == csIdentifier {
			return nodeText(c, w.content)
		}
	}
	return ""
}

func (w *csharpWalker) function(n *sitter.Node, name string, scope []string) model.FunctionContext {
	startLine := int(n.StartPoint().Row)
	params := n.ChildByFieldName("parameters")
	sigStart, found := n.StartByte(), false
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == csAttributeList || c.Type() == csComment {
			continue
		}
		if !found {
			sigStart, found = c.StartByte(), true
		}
		if params == nil && c.Type() == csParameterList {
			params = c
		}
	}

	sigEnd := startLine
	sigEndByte := n.EndByte()
	if params != nil {
		sigEnd = int(params.EndPoint().Row)
		sigEndByte = params.EndByte()
	}

	returnType := nodeText(n.ChildByFieldName("returns"), w.content)
	if returnType == "" && n.Type() != csConstructorDeclaration {
		returnType = nodeText(n.ChildByFieldName("type"), w.content)
	}

	anchor := n
	if p := n.Parent(); p != nil && p.Type() == csGlobalStatement {
		anchor = p
	}

	return model.FunctionContext{
		QualifiedName:    qualify(w.module, scope, name),
		Name:             name,
		Signature:        collapse(string(w.content[sigStart:sigEndByte])),
		Parameters:       w.parameters(params),
		ReturnType:       returnType,
		Body:             nodeText(n.ChildByFieldName("body"), w.content),
		Existing:         w.leadingComments(anchor, startLine),
		StartLine:        startLine,
		SignatureEndLine: sigEnd,
	}
}

func (w *csharpWalker) parameters(params *sitter.Node) []model.Parameter {
	if params == nil {
		return nil
	}
	var out []model.Parameter
	for i := 0; i < int(params.NamedChildCount()); i++ {
		c := params.NamedChild(i)
		if c.Type() != csParameter {
			continue
		}
		name := nodeText(c.ChildByFieldName("name"), w.content)
		if name == "" {
			for j := int(c.NamedChildCount()) - 1; j >= 0; j-- {
				if id := c.NamedChild(j); id.Type() == csIdentifier {
					name = nodeText(id, w.content)
					break
				}
			}
		}
		if name == "" {
			continue
		}
		out = append(out, model.Parameter{
			Name: name,
			Type: nodeText(c.ChildByFieldName("type"), w.content),
		})
	}
	return out
}

// leadingComments returns the comment block attached above anchor as a
// span of raw lines ending on the line before startLine.
func (w *csharpWalker) leadingComments(anchor *sitter.Node, startLine int) *model.Docstring {
	first := -1
	next := startLine
	for c := anchor.PrevSibling(); c != nil && c.Type() == csComment; c = c.PrevSibling() {
		end := int(c.EndPoint().Row)
		if end >= next {
			break
		}
		if end != next-1 && !(w.blankLines && blank(w.lines, end+1, next)) {
			break
		}
		if !w.ownLines(c) {
			break
		}
		first = int(c.StartPoint().Row)
		next = first
	}
	if first < 0 {
		return nil
	}
	return span(w.lines, first, startLine-1)
}

// ownLines reports whether comment c shares no line with code.
func (w *csharpWalker) ownLines(c *sitter.Node) bool {
	sp, ep := c.StartPoint(), c.EndPoint()
	return ownsLines(w.lines, int(sp.Row), int(sp.Column), int(ep.Row), int(ep.Column))
}
