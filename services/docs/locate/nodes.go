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
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// nodeText returns the source slice of n, or "" for a nil node.
func nodeText(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return string(content[n.StartByte():n.EndByte()])
}

// firstErrorPosition describes the first ERROR or MISSING node under n
// as a 1-indexed "line L, column C".
func firstErrorPosition(n *sitter.Node) string {
	if e := findError(n); e != nil {
		p := e.StartPoint()
		return fmt.Sprintf("line %d, column %d", p.Row+1, p.Column+1)
	}
	return "unknown position"
}

func findError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if e := findError(n.Child(i)); e != nil {
			return e
		}
	}
	return n
}
