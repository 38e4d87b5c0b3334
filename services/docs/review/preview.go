// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package review

import (
	"bytes"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// Preview renders an edit as a unified diff hunk.
//
// Description:
//
//	Removed lines are the existing docstring, added lines are the new
//	docstring indented as the commit engine will write them. Line numbers
//	are 1-based and in the coordinates of the parsed file, so they match
//	what the user sees in an editor before any edit of the batch lands.
func Preview(edit model.DocstringEdit) string {
	pad := strings.Repeat(" ", edit.OffsetSpaces)

	var body bytes.Buffer
	var removed []string
	origStart := edit.NewDocstring.StartLine
	if edit.Existing != nil {
		removed = edit.Existing.Lines
		origStart = edit.Existing.StartLine
	}
	for _, l := range removed {
		body.WriteString("-" + l + "\n")
	}
	for _, l := range edit.NewDocstring.Lines {
		body.WriteString("+" + pad + l + "\n")
	}

	newStart := edit.NewDocstring.StartLine
	if edit.Location == model.LocationAbove {
		newStart = max(0, newStart-len(removed))
	}

	fd := &diff.FileDiff{
		OrigName: "a/" + edit.FilePath,
		NewName:  "b/" + edit.FilePath,
		Hunks: []*diff.Hunk{{
			OrigStartLine: int32(origStart + 1),
			OrigLines:     int32(len(removed)),
			NewStartLine:  int32(newStart + 1),
			NewLines:      int32(len(edit.NewDocstring.Lines)),
			Section:       edit.QualifiedName,
			Body:          body.Bytes(),
		}},
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return body.String()
	}
	return string(out)
}
