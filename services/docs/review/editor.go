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
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ResolveEditor picks the editor command: the configured value, then
// $EDITOR, then nano (notepad on Windows).
func ResolveEditor(configured string) string {
	if configured != "" {
		return configured
	}
	if env := os.Getenv("EDITOR"); env != "" {
		return env
	}
	if runtime.GOOS == "windows" {
		return "notepad"
	}
	return "nano"
}

// ExternalEditor runs an editor command on a temporary file.
//
// Description:
//
//	Command is split with shell quoting rules, so values such as
//	"code --wait" or "'/opt/my editor/bin/ed'" work. The file path is
//	appended as the last argument. The editor inherits the terminal.
type ExternalEditor struct {
	Command string

	// Suffix is the temporary file extension, which lets editors pick a
	// syntax mode.
	Suffix string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExternalEditor creates an editor for the resolved command.
func NewExternalEditor(command, suffix string) *ExternalEditor {
	return &ExternalEditor{
		Command: ResolveEditor(command),
		Suffix:  suffix,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Edit implements Editor. The returned lines carry no terminators; a
// trailing newline added by the editor is dropped.
func (e *ExternalEditor) Edit(ctx context.Context, lines []string) (out []string, err error) {
	argv, err := shellquote.Split(e.Command)
	if err != nil {
		return nil, fmt.Errorf("parse editor command %q: %w", e.Command, err)
	}
	if len(argv) == 0 {
		return nil, errors.New("empty editor command")
	}

	f, err := os.CreateTemp("", "docnsrt-*"+e.Suffix)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		err = errors.Join(err, os.Remove(path))
	}()

	_, werr := io.WriteString(f, strings.Join(lines, "\n")+"\n")
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return nil, fmt.Errorf("write temp file: %w", werr)
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = e.Stdin, e.Stdout, e.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run editor %s: %w", argv[0], err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edited file: %w", err)
	}
	return SplitEdited(string(raw)), nil
}

// SplitEdited splits editor output into lines, accepting LF or CRLF and
// ignoring one trailing newline.
func SplitEdited(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
