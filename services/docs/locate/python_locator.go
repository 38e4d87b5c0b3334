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
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// Python node types used by the walk.
const (
	pyClassDefinition    = "class_definition"
	pyFunctionDefinition = "function_definition"
	pyDecoratedDef       = "decorated_definition"
	pyBlock              = "block"
	pyExpressionStmt     = "expression_statement"
	pyString             = "string"
	pyConcatString       = "concatenated_string"
	pyComment            = "comment"
	pyIdentifier         = "identifier"
	pyTypedParameter     = "typed_parameter"
	pyDefaultParameter   = "default_parameter"
	pyTypedDefaultParam  = "typed_default_parameter"
	pyListSplat          = "list_splat_pattern"
	pyDictSplat          = "dictionary_splat_pattern"
)

// PythonLocator finds function definitions in Python source.
//
// Description:
//
//	Docstrings are body literals: a string expression that is the first
//	statement of the function body. StartLine is the "def" line, not the
//	decorator line, and SignatureEndLine is the line holding the colon
//	that opens the body.
//
//	Functions whose body starts on the signature line ("def f(): pass")
//	are skipped. A docstring cannot be placed below such a signature
//	without reformatting the body.
//
// Thread Safety: PythonLocator is safe for concurrent use.
type PythonLocator struct {
	opts Options
}

// NewPythonLocator creates a PythonLocator.
func NewPythonLocator(opts ...Option) *PythonLocator {
	return &PythonLocator{opts: buildOptions(opts)}
}

// Language implements Locator.
func (p *PythonLocator) Language() string {
	return LanguagePython
}

// Locate implements Locator.
func (p *PythonLocator) Locate(ctx context.Context, path string, include, exclude []string) ([]model.FunctionContext, error) {
	content, err := readSource(path, p.opts.MaxFileSize)
	if err != nil {
		return nil, err
	}
	return p.LocateSource(ctx, path, content, include, exclude)
}

// LocateSource implements Locator.
//
// Outputs:
//   - []model.FunctionContext: Matching functions in pre-order.
//   - error: ErrFileTooLarge, ErrInvalidContent, ErrSyntax, or a context
//     error.
func (p *PythonLocator) LocateSource(ctx context.Context, path string, content []byte, include, exclude []string) (out []model.FunctionContext, err error) {
	ctx, span := startLocateSpan(ctx, LanguagePython, path, len(content))
	start := time.Now()
	defer func() {
		endLocateSpan(span, len(out), err)
		recordLocate(ctx, LanguagePython, time.Since(start), len(out), err == nil)
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("locate canceled before start: %w", err)
	}
	if err := validate(content, p.opts.MaxFileSize); err != nil {
		return nil, err
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
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

	w := &pythonWalker{
		content: content,
		lines:   sourceLines(content),
		module:  ModuleName(path),
		path:    path,
		include: include,
		exclude: exclude,
		logger:  p.opts.Logger,
	}
	w.walk(root, nil)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("locate canceled: %w", err)
	}
	return w.out, nil
}

type pythonWalker struct {
	content []byte
	lines   []string
	module  string
	path    string
	include []string
	exclude []string
	logger  *slog.Logger
	out     []model.FunctionContext
}

// walk visits n in pre-order, extending scope with class and function names.
func (w *pythonWalker) walk(n *sitter.Node, scope []string) {
	switch n.Type() {
	case pyClassDefinition:
		if name := nodeText(n.ChildByFieldName("name"), w.content); name != "" {
			scope = append(slices.Clip(scope), name)
		}
	case pyFunctionDefinition:
		name := nodeText(n.ChildByFieldName("name"), w.content)
		if name == "" {
			break
		}
		if MatchName(name, w.include, w.exclude) {
			if fc, ok := w.function(n, name, scope); ok {
				w.out = append(w.out, fc)
			}
		}
		scope = append(slices.Clip(scope), name)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i), scope)
	}
}

func (w *pythonWalker) function(n *sitter.Node, name string, scope []string) (model.FunctionContext, bool) {
	body := n.ChildByFieldName("body")
	params := n.ChildByFieldName("parameters")
	if body == nil || params == nil {
		return model.FunctionContext{}, false
	}

	startLine := int(n.StartPoint().Row)
	sigEnd := int(params.EndPoint().Row)
	isAsync := false
	for i := 0; i < int(n.ChildCount()); i++ {
		switch c := n.Child(i); c.Type() {
		case ":":
			sigEnd = int(c.StartPoint().Row)
		case "async":
			isAsync = true
		}
	}

	if int(body.StartPoint().Row) <= sigEnd {
		w.logger.Debug("skipping function with inline body",
			slog.String("file", w.path),
			slog.String("function", name),
			slog.Int("line", startLine+1))
		return model.FunctionContext{}, false
	}

	existing, ok := w.docstring(body)
	if !ok {
		w.logger.Debug("skipping function whose docstring shares a line with code",
			slog.String("file", w.path),
			slog.String("function", name),
			slog.Int("line", startLine+1))
		return model.FunctionContext{}, false
	}

	returnType := nodeText(n.ChildByFieldName("return_type"), w.content)
	signature := "def " + name + collapse(nodeText(params, w.content))
	if isAsync {
		signature = "async " + signature
	}
	if returnType != "" {
		signature += " -> " + returnType
	}

	return model.FunctionContext{
		QualifiedName:    qualify(w.module, scope, name),
		Name:             name,
		Signature:        signature,
		Parameters:       w.parameters(params, isMethod(n)),
		ReturnType:       returnType,
		Body:             nodeText(body, w.content),
		Existing:         existing,
		StartLine:        startLine,
		SignatureEndLine: sigEnd,
	}, true
}

// docstring returns the span of the string literal that is the first
// statement of body, or nil. It reports false when the literal shares its
// first or last line with other code.
func (w *pythonWalker) docstring(body *sitter.Node) (*model.Docstring, bool) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == pyComment {
			continue
		}
		if stmt.Type() != pyExpressionStmt || stmt.NamedChildCount() == 0 {
			return nil, true
		}
		expr := stmt.NamedChild(0)
		if expr.Type() != pyString && expr.Type() != pyConcatString {
			return nil, true
		}
		sp, ep := expr.StartPoint(), expr.EndPoint()
		if !ownsLines(w.lines, int(sp.Row), int(sp.Column), int(ep.Row), int(ep.Column)) {
			return nil, false
		}
		return span(w.lines, int(sp.Row), int(ep.Row)), true
	}
	return nil, true
}

// parameters lists the parameters of a "parameters" node. The implicit
// self or cls of a method is dropped.
func (w *pythonWalker) parameters(params *sitter.Node, method bool) []model.Parameter {
	var out []model.Parameter
	first := true
	for i := 0; i < int(params.NamedChildCount()); i++ {
		c := params.NamedChild(i)
		var p model.Parameter
		switch c.Type() {
		case pyIdentifier, pyListSplat, pyDictSplat:
			p.Name = nodeText(c, w.content)
		case pyTypedParameter:
			if c.NamedChildCount() > 0 {
				p.Name = nodeText(c.NamedChild(0), w.content)
			}
			p.Type = nodeText(c.ChildByFieldName("type"), w.content)
		case pyDefaultParameter, pyTypedDefaultParam:
			p.Name = nodeText(c.ChildByFieldName("name"), w.content)
			p.Type = nodeText(c.ChildByFieldName("type"), w.content)
		default:
			continue
		}
		if p.Name == "" {
			continue
		}
		if first && method && (p.Name == "self" || p.Name == "cls") {
			first = false
			continue
		}
		first = false
		out = append(out, p)
	}
	return out
}

// isMethod reports whether a function_definition is a direct member of a
// class body, decorated or not.
func isMethod(fn *sitter.Node) bool {
	p := fn.Parent()
	if p != nil && p.Type() == pyDecoratedDef {
		p = p.Parent()
	}
	if p != nil && p.Type() == pyBlock {
		p = p.Parent()
	}
	return p != nil && p.Type() == pyClassDefinition
}
