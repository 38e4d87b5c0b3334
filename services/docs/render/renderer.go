// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package render turns generated content into style-specific comment
// lines and decides where they go relative to the function signature.
package render

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// IndentUnit is the extra indentation of a body-literal docstring.
const IndentUnit = 4

// Style names accepted by NewRenderer.
const (
	StylePEP     = "pep"
	StyleNumpy   = "numpy"
	StyleXML     = "xml"
	StyleDoxygen = "doxygen"

	// StyleBasic selects the language default.
	StyleBasic = "basic"
)

// styles lists the styles each language supports; the first is the default.
var styles = map[string][]string{
	"python": {StylePEP, StyleNumpy},
	"csharp": {StyleXML, StyleDoxygen},
}

// Renderer formats a docstring for one function.
//
// Description:
//
//	Output lines carry no terminators and no indentation. OffsetSpaces
//	tells the commit engine how far to indent them and StartLine is in the
//	coordinates of the unedited file. Placement is fixed per style.
//
// Thread Safety: Implementations are stateless and safe for concurrent use.
type Renderer interface {
	// Style returns the style name.
	Style() string

	// Location returns where the style places its docstrings.
	Location() model.Location

	// Render produces the lines and placement for fc.
	//
	// Outputs:
	//   - model.Rendered: Lines, insertion line, indentation, location.
	//   - error: Wraps model.ErrLineOutOfRange when the signature line
	//     cannot be read from path.
	Render(path string, fc model.FunctionContext, v model.TemplateValues) (model.Rendered, error)
}

// NewRenderer returns the renderer for a language and style. An empty
// style or "basic" selects the language default.
func NewRenderer(language, style string) (Renderer, error) {
	supported, ok := styles[strings.ToLower(language)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnsupportedLanguage, language)
	}
	style = strings.ToLower(style)
	if style == "" || style == StyleBasic {
		style = supported[0]
	}
	for _, s := range supported {
		if s != style {
			continue
		}
		switch s {
		case StylePEP:
			return &PEPRenderer{}, nil
		case StyleNumpy:
			return &NumpyRenderer{}, nil
		case StyleXML:
			return &XMLRenderer{}, nil
		case StyleDoxygen:
			return &DoxygenRenderer{}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q for %s (valid: %v)", model.ErrUnsupportedStyle, style, language, supported)
}

// DefaultStyle returns the default style of a language, or "".
func DefaultStyle(language string) string {
	if s, ok := styles[strings.ToLower(language)]; ok {
		return s[0]
	}
	return ""
}

// ReadIndent returns the number of leading space characters on the
// 0-indexed line of path. Tabs are not counted.
func ReadIndent(path string, line int) (int, error) {
	if line < 0 {
		return 0, fmt.Errorf("%w: line %d in %s", model.ErrLineOutOfRange, line, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for i := 0; ; i++ {
		text, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("read %s: %w", path, err)
		}
		if i == line && (text != "" || err == nil) {
			return len(text) - len(strings.TrimLeft(text, " ")), nil
		}
		if err != nil {
			return 0, fmt.Errorf("%w: line %d in %s", model.ErrLineOutOfRange, line, path)
		}
	}
}

// paragraph splits text into trimmed lines, dropping surrounding blank
// lines. An empty text yields one empty line.
func paragraph(text string) []string {
	text = strings.Trim(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if strings.TrimSpace(text) == "" {
		return []string{""}
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

// parameters merges generated parameter docs with located types. A
// generated entry without a type takes the annotated type of the
// parameter with the same name.
func parameters(fc model.FunctionContext, v model.TemplateValues) []model.Parameter {
	known := make(map[string]string, len(fc.Parameters))
	for _, p := range fc.Parameters {
		known[p.Name] = p.Type
	}
	out := make([]model.Parameter, 0, len(v.Parameters))
	for _, p := range v.Parameters {
		if p.Type == "" {
			p.Type = known[p.Name]
		}
		out = append(out, p)
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}
