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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LinePrompter asks on a plain line-oriented stream. It is used when
// stdin is not a terminal and by tests.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a LinePrompter.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Prompt implements Prompter. End of input is treated as QUIT so an
// exhausted script never commits by accident.
func (p *LinePrompter) Prompt(ctx context.Context, item Item) (Response, error) {
	fmt.Fprintf(p.out, "\n[%d/%d] %s (%s)\n", item.Index, item.Total, item.Edit.QualifiedName, item.Edit.FilePath)
	if item.Changed {
		fmt.Fprintln(p.out, "warning: file changed on disk since it was parsed; this edit will not be written")
	}
	fmt.Fprint(p.out, item.Preview)

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Fprint(p.out, "[a]ccept  [s]kip  [e]dit  [q]uit > ")
		line, err := p.in.ReadString('\n')
		if r, ok := ParseResponse(line); ok {
			return r, nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return ResponseQuit, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read response: %w", err)
		}
		fmt.Fprintf(p.out, "unknown response %q\n", strings.TrimSpace(line))
	}
}
