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
	"fmt"
	"strings"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

const xmlCommentStart = "/// "

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// placeAbove anchors a leading comment on the signature line itself, at
// the signature's indentation. Commit inserts before that line.
func placeAbove(path string, fc model.FunctionContext, lines []string) (model.Rendered, error) {
	indent, err := ReadIndent(path, fc.StartLine)
	if err != nil {
		return model.Rendered{}, fmt.Errorf("unable to read start line %d: %w", fc.StartLine, err)
	}
	return model.Rendered{
		Lines:        lines,
		StartLine:    fc.StartLine,
		OffsetSpaces: indent,
		Location:     model.LocationAbove,
	}, nil
}

// XMLRenderer writes C# XML documentation comments.
type XMLRenderer struct{}

// Style implements Renderer.
func (r *XMLRenderer) Style() string { return StyleXML }

// Location implements Renderer.
func (r *XMLRenderer) Location() model.Location { return model.LocationAbove }

// Render implements Renderer.
func (r *XMLRenderer) Render(path string, fc model.FunctionContext, v model.TemplateValues) (model.Rendered, error) {
	var body []string
	body = append(body, "<summary>")
	for _, l := range paragraph(v.Summary) {
		body = append(body, xmlEscaper.Replace(l))
	}
	body = append(body, "</summary>")

	for _, p := range parameters(fc, v) {
		body = append(body, fmt.Sprintf(`<param name="%s">%s</param>`, p.Name, xmlEscaper.Replace(orDefault(p.Description, ""))))
	}
	if v.ReturnDescription != "" {
		body = append(body, fmt.Sprintf("<returns>%s</returns>", xmlEscaper.Replace(orDefault(v.ReturnDescription, ""))))
	}
	for _, e := range v.Exceptions {
		body = append(body, fmt.Sprintf(`<exception cref="%s">%s</exception>`, orDefault(e.Type, "System.Exception"), xmlEscaper.Replace(orDefault(e.Description, ""))))
	}
	if v.Remarks != "" {
		body = append(body, "<remarks>")
		for _, l := range paragraph(v.Remarks) {
			body = append(body, xmlEscaper.Replace(l))
		}
		body = append(body, "</remarks>")
	}

	lines := make([]string, len(body))
	for i, l := range body {
		lines[i] = strings.TrimRight(xmlCommentStart+l, " ")
	}
	return placeAbove(path, fc, lines)
}

// DoxygenRenderer writes Javadoc-style Doxygen blocks.
type DoxygenRenderer struct{}

// Style implements Renderer.
func (r *DoxygenRenderer) Style() string { return StyleDoxygen }

// Location implements Renderer.
func (r *DoxygenRenderer) Location() model.Location { return model.LocationAbove }

// Render implements Renderer.
func (r *DoxygenRenderer) Render(path string, fc model.FunctionContext, v model.TemplateValues) (model.Rendered, error) {
	summary := paragraph(v.Summary)
	body := []string{"@brief " + summary[0]}
	body = append(body, summary[1:]...)

	params := parameters(fc, v)
	if len(params) > 0 || v.ReturnDescription != "" || len(v.Exceptions) > 0 {
		body = append(body, "")
	}
	for _, p := range params {
		body = append(body, fmt.Sprintf("@param %s %s", p.Name, orDefault(p.Description, "")))
	}
	if v.ReturnDescription != "" {
		body = append(body, "@return "+orDefault(v.ReturnDescription, ""))
	}
	for _, e := range v.Exceptions {
		body = append(body, fmt.Sprintf("@throws %s %s", orDefault(e.Type, "System.Exception"), orDefault(e.Description, "")))
	}
	if v.Remarks != "" {
		body = append(body, "", "@remarks "+strings.Join(paragraph(v.Remarks), " "))
	}

	lines := []string{"/**"}
	for _, l := range body {
		lines = append(lines, strings.TrimRight(" * "+l, " "))
	}
	lines = append(lines, " */")
	return placeAbove(path, fc, lines)
}
