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
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// FormPrompter asks with a huh select form. It works in terminals where
// the full-screen TUI is unwanted, such as editor-integrated shells.
type FormPrompter struct {
	accessible bool
}

// NewFormPrompter creates a FormPrompter. Accessible mode replaces the
// interactive widget with numbered prompts for screen readers.
func NewFormPrompter(accessible bool) *FormPrompter {
	return &FormPrompter{accessible: accessible}
}

// Prompt implements Prompter. Aborting the form (ctrl+c) is QUIT.
func (p *FormPrompter) Prompt(ctx context.Context, item Item) (Response, error) {
	title := fmt.Sprintf("[%d/%d] %s", item.Index, item.Total, item.Edit.QualifiedName)
	desc := item.Preview
	if item.Changed {
		desc = "warning: file changed on disk since it was parsed\n\n" + desc
	}

	resp := ResponseAccept
	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[Response]().
			Title(title).
			Description(desc).
			Options(
				huh.NewOption("Accept", ResponseAccept),
				huh.NewOption("Skip", ResponseSkip),
				huh.NewOption("Edit", ResponseEdit),
				huh.NewOption("Quit", ResponseQuit),
			).
			Value(&resp),
	)).WithAccessible(p.accessible)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ResponseQuit, nil
		}
		return 0, err
	}
	return resp, nil
}
