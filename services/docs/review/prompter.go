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
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompt modes accepted by NewPrompter.
const (
	ModeAuto = "auto"
	ModeTUI  = "tui"
	ModeForm = "form"
	ModeLine = "line"
)

// NewPrompter returns the prompter for mode. Auto picks the TUI when both
// stdin and stdout are terminals and the line prompter otherwise.
func NewPrompter(mode string) (Prompter, error) {
	switch strings.ToLower(mode) {
	case "", ModeAuto:
		if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
			return NewTUIPrompter(os.Stdin, os.Stdout), nil
		}
		return NewLinePrompter(os.Stdin, os.Stdout), nil
	case ModeTUI:
		return NewTUIPrompter(os.Stdin, os.Stdout), nil
	case ModeForm:
		return NewFormPrompter(os.Getenv("ACCESSIBLE") != ""), nil
	case ModeLine:
		return NewLinePrompter(os.Stdin, os.Stdout), nil
	default:
		return nil, fmt.Errorf("unknown prompt mode %q (valid: auto, tui, form, line)", mode)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
