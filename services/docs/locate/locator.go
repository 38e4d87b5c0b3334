// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package locate finds documentable functions in source files.
//
// Each supported language has a Locator backed by a tree-sitter grammar.
// Locators walk the syntax tree depth first in source order, build the
// qualified name from the lexical scope, and record any documentation
// block already attached to the function so it can be replaced.
package locate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// DefaultMaxFileSize is the largest file a Locator will parse.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Language names accepted by NewLocator.
const (
	LanguagePython = "python"
	LanguageCSharp = "csharp"
)

// ValidLanguages lists the languages NewLocator accepts.
var ValidLanguages = []string{LanguagePython, LanguageCSharp}

var (
	// ErrFileTooLarge indicates the file exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrInvalidContent indicates the file is not valid UTF-8.
	ErrInvalidContent = errors.New("invalid content")

	// ErrSyntax indicates the grammar reported a syntax error. Line
	// arithmetic over a broken tree is not trusted, so the file is skipped.
	ErrSyntax = errors.New("source contains syntax errors")
)

// Locator produces the function contexts of one source file.
//
// Thread Safety: Implementations are safe for concurrent use. Every call
// creates its own tree-sitter parser.
type Locator interface {
	// Language returns the language name the locator handles.
	Language() string

	// Locate reads path and returns the functions whose bare name matches
	// at least one include pattern and no exclude pattern, in depth-first
	// pre-order.
	Locate(ctx context.Context, path string, include, exclude []string) ([]model.FunctionContext, error)

	// LocateSource is Locate over already-read content.
	LocateSource(ctx context.Context, path string, content []byte, include, exclude []string) ([]model.FunctionContext, error)
}

// Options configures a Locator.
type Options struct {
	// MaxFileSize caps the parsed file size in bytes.
	MaxFileSize int64

	// AttachAcrossBlankLines lets a leading comment block separated from
	// the signature by blank lines count as the function's docstring.
	AttachAcrossBlankLines bool

	Logger *slog.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithMaxFileSize sets the size limit.
func WithMaxFileSize(n int64) Option {
	return func(o *Options) {
		o.MaxFileSize = n
	}
}

// WithAttachAcrossBlankLines toggles blank-line tolerance for leading comments.
func WithAttachAcrossBlankLines(v bool) Option {
	return func(o *Options) {
		o.AttachAcrossBlankLines = v
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func buildOptions(opts []Option) Options {
	o := Options{
		MaxFileSize: DefaultMaxFileSize,
		Logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewLocator returns the Locator for language.
//
// Example:
//
//	loc, err := locate.NewLocator("python", locate.WithMaxFileSize(1<<20))
func NewLocator(language string, opts ...Option) (Locator, error) {
	switch strings.ToLower(language) {
	case LanguagePython:
		return NewPythonLocator(opts...), nil
	case LanguageCSharp:
		return NewCSharpLocator(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: %v)", model.ErrUnsupportedLanguage, language, ValidLanguages)
	}
}

// MatchName applies include patterns first, then exclude patterns, to a
// bare function name. Patterns use shell glob syntax.
func MatchName(name string, include, exclude []string) bool {
	matched := false
	for _, p := range include {
		if ok, _ := doublestar.Match(p, name); ok {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, p := range exclude {
		if ok, _ := doublestar.Match(p, name); ok {
			return false
		}
	}
	return true
}

// ModuleName is the file name without its extension.
func ModuleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// qualify joins the module, the scope path and the name with dots.
func qualify(module string, scope []string, name string) string {
	parts := make([]string, 0, len(scope)+2)
	parts = append(parts, module)
	parts = append(parts, scope...)
	parts = append(parts, name)
	return strings.Join(parts, ".")
}

// readSource reads path and checks the size and encoding limits.
func readSource(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, info.Size(), maxSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return content, nil
}

func validate(content []byte, maxSize int64) error {
	if int64(len(content)) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), maxSize)
	}
	if !utf8.Valid(content) {
		return fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}
	return nil
}

// sourceLines splits content into lines without terminators, indexed by
// tree-sitter row.
func sourceLines(content []byte) []string {
	lines := strings.Split(string(content), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// span returns the raw source lines [first, last] as a Docstring.
func span(lines []string, first, last int) *model.Docstring {
	if first < 0 || last >= len(lines) || first > last {
		return nil
	}
	out := make([]string, last-first+1)
	copy(out, lines[first:last+1])
	return &model.Docstring{Lines: out, StartLine: first}
}

// ownsLines reports whether the text from (startRow, startCol) to
// (endRow, endCol) has its first and last lines to itself.
func ownsLines(lines []string, startRow, startCol, endRow, endCol int) bool {
	if startRow >= len(lines) || endRow >= len(lines) {
		return false
	}
	before := lines[startRow]
	if startCol <= len(before) && strings.TrimSpace(before[:startCol]) != "" {
		return false
	}
	after := lines[endRow]
	if endCol <= len(after) && strings.TrimSpace(after[endCol:]) != "" {
		return false
	}
	return true
}

// blank reports whether every line in [from, to) is whitespace only.
func blank(lines []string, from, to int) bool {
	for i := from; i < to && i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return false
		}
	}
	return true
}

// collapse joins whitespace runs so multi-line signatures read on one line.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
