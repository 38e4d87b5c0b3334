// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package review asks the user to approve each pending docstring edit
// before it is committed.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/AleutianAI/docnsrt/services/docs/model"
)

// Response is the user's answer for one edit.
type Response int

const (
	// ResponseAccept adds the edit to the approved set.
	ResponseAccept Response = iota

	// ResponseSkip drops the edit.
	ResponseSkip

	// ResponseEdit opens the lines in an editor and asks again.
	ResponseEdit

	// ResponseQuit discards every approval of the current batch.
	ResponseQuit
)

// String returns the lowercase name of the response.
func (r Response) String() string {
	switch r {
	case ResponseAccept:
		return "accept"
	case ResponseSkip:
		return "skip"
	case ResponseEdit:
		return "edit"
	case ResponseQuit:
		return "quit"
	default:
		return fmt.Sprintf("response(%d)", int(r))
	}
}

// ParseResponse maps a typed answer (a, s, e, q or the full word) to a
// Response.
func ParseResponse(s string) (Response, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "accept", "y", "yes":
		return ResponseAccept, true
	case "s", "skip", "n", "no":
		return ResponseSkip, true
	case "e", "edit":
		return ResponseEdit, true
	case "q", "quit":
		return ResponseQuit, true
	default:
		return 0, false
	}
}

// Order is the order in which a batch is presented.
type Order int

const (
	// OrderForward presents edits in the order given.
	OrderForward Order = iota

	// OrderReverse presents the last edit first.
	OrderReverse
)

// ParseOrder maps "forward" or "reverse" to an Order. Empty is forward.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "", "forward":
		return OrderForward, nil
	case "reverse":
		return OrderReverse, nil
	default:
		return 0, fmt.Errorf("unknown review order %q (valid: forward, reverse)", s)
	}
}

// Item is what a Prompter shows for one edit.
type Item struct {
	Edit    model.DocstringEdit
	Index   int
	Total   int
	Preview string

	// Changed is set when the file was modified on disk after it was
	// parsed. The commit will be refused.
	Changed bool
}

// Prompter asks the user about one edit.
//
// Thread Safety: Implementations are used from one goroutine at a time.
type Prompter interface {
	Prompt(ctx context.Context, item Item) (Response, error)
}

// Editor lets the user rewrite docstring lines in an external tool.
type Editor interface {
	Edit(ctx context.Context, lines []string) ([]string, error)
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithOrder sets the presentation order.
func WithOrder(o Order) GateOption {
	return func(g *Gate) { g.order = o }
}

// WithForce bypasses review; every edit is accepted without prompting.
func WithForce(force bool) GateOption {
	return func(g *Gate) { g.force = force }
}

// WithChangeCheck installs a probe reporting whether a file changed on
// disk since it was parsed.
func WithChangeCheck(fn func(path string) bool) GateOption {
	return func(g *Gate) { g.changed = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) { g.logger = l }
}

// Gate runs the approval loop for a batch of edits.
type Gate struct {
	prompter Prompter
	editor   Editor
	order    Order
	force    bool
	changed  func(string) bool
	logger   *slog.Logger
}

// NewGate creates a Gate. prompter and editor may be nil when the gate is
// forced.
func NewGate(prompter Prompter, editor Editor, opts ...GateOption) *Gate {
	g := &Gate{prompter: prompter, editor: editor, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Review presents each edit and returns the approved ones.
//
// Description:
//
//	ACCEPT keeps the edit, SKIP drops it, EDIT replaces its lines with the
//	editor result and asks again about the same edit. QUIT stops the
//	batch: the bool is false and nothing is returned, so the caller
//	commits none of it. A forced gate returns every edit unprompted.
//
// Inputs:
//   - ctx: Cancels a waiting prompt.
//   - edits: The batch, normally one file's edits.
//
// Outputs:
//   - bool: False when the user quit.
//   - []model.DocstringEdit: Approved edits in presentation order.
//   - error: A prompter failure. Editor failures are logged and the
//     edit is presented again.
func (g *Gate) Review(ctx context.Context, edits []model.DocstringEdit) (bool, []model.DocstringEdit, error) {
	if g.force {
		return true, slices.Clone(edits), nil
	}
	if g.prompter == nil {
		return false, nil, fmt.Errorf("review: no prompter configured")
	}

	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	if g.order == OrderReverse {
		slices.Reverse(order)
	}

	approved := make([]model.DocstringEdit, 0, len(edits))
	for n, i := range order {
		edit := edits[i]
		for {
			if err := ctx.Err(); err != nil {
				return false, nil, err
			}
			item := Item{Edit: edit, Index: n + 1, Total: len(edits), Preview: Preview(edit)}
			if g.changed != nil {
				item.Changed = g.changed(edit.FilePath)
			}

			resp, err := g.prompter.Prompt(ctx, item)
			if err != nil {
				return false, nil, fmt.Errorf("review %s: %w", edit.QualifiedName, err)
			}
			g.logger.Debug("review response",
				slog.String("function", edit.QualifiedName),
				slog.String("response", resp.String()),
			)

			switch resp {
			case ResponseAccept:
				approved = append(approved, edit)
			case ResponseSkip:
			case ResponseQuit:
				return false, nil, nil
			case ResponseEdit:
				edit = g.edit(ctx, edit)
				continue
			}
			break
		}
	}
	return true, approved, nil
}

func (g *Gate) edit(ctx context.Context, edit model.DocstringEdit) model.DocstringEdit {
	if g.editor == nil {
		g.logger.Warn("no editor configured")
		return edit
	}
	lines, err := g.editor.Edit(ctx, edit.NewDocstring.Lines)
	if err != nil {
		g.logger.Warn("editor failed", slog.String("function", edit.QualifiedName), slog.String("error", err.Error()))
		return edit
	}
	edit.NewDocstring.Lines = lines
	return edit
}
