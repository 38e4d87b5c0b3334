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
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	filePathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	removedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	hunkHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("75")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))
)

// TUIPrompter asks with a full-screen bubbletea view of the diff.
//
// Description:
//
//	Each Prompt runs its own program and returns when a key is chosen,
//	so the terminal is released before the gate starts an editor.
type TUIPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTUIPrompter creates a TUIPrompter on the given terminal streams.
func NewTUIPrompter(in io.Reader, out io.Writer) *TUIPrompter {
	return &TUIPrompter{in: in, out: out}
}

// Prompt implements Prompter.
func (p *TUIPrompter) Prompt(ctx context.Context, item Item) (Response, error) {
	prog := tea.NewProgram(newReviewModel(item),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
		tea.WithAltScreen(),
	)
	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return ResponseQuit, nil
		}
		return 0, fmt.Errorf("review ui: %w", err)
	}
	m, ok := final.(reviewModel)
	if !ok || !m.chosen {
		return ResponseQuit, nil
	}
	return m.response, nil
}

// reviewModel is the bubbletea model for one edit.
type reviewModel struct {
	item     Item
	viewport viewport.Model
	ready    bool
	width    int
	height   int

	chosen   bool
	response Response
}

func newReviewModel(item Item) reviewModel {
	return reviewModel{item: item}
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		headerHeight, footerHeight := 3, 2
		if m.item.Changed {
			headerHeight++
		}
		h := max(1, m.height-headerHeight-footerHeight)
		if !m.ready {
			m.viewport = viewport.New(m.width, h)
			m.viewport.SetContent(colorize(m.item.Preview))
			m.ready = true
		} else {
			m.viewport.Width, m.viewport.Height = m.width, h
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "a", "A", "y", "enter":
			return m.choose(ResponseAccept)
		case "s", "S", "n":
			return m.choose(ResponseSkip)
		case "e", "E":
			return m.choose(ResponseEdit)
		case "q", "Q", "ctrl+c", "esc":
			return m.choose(ResponseQuit)
		case "j", "down":
			m.viewport.LineDown(1)
			return m, nil
		case "k", "up":
			m.viewport.LineUp(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m reviewModel) choose(r Response) (tea.Model, tea.Cmd) {
	m.chosen = true
	m.response = r
	return m, tea.Quit
}

func (m reviewModel) View() string {
	if m.chosen {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("[%d/%d] %s", m.item.Index, m.item.Total, m.item.Edit.QualifiedName)))
	b.WriteString("\n")
	b.WriteString(filePathStyle.Render(m.item.Edit.FilePath))
	b.WriteString("\n")
	if m.item.Changed {
		b.WriteString(warningStyle.Render("file changed on disk since it was parsed; this edit will not be written"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(colorize(m.item.Preview))
	}
	b.WriteString("\n")
	b.WriteString(help())
	return b.String()
}

func help() string {
	keys := []struct{ key, desc string }{
		{"a", "accept"}, {"s", "skip"}, {"e", "edit"}, {"q", "quit"}, {"j/k", "scroll"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpDescStyle.Render(k.desc))
	}
	return strings.Join(parts, "  ")
}

// colorize styles unified diff lines.
func colorize(preview string) string {
	lines := strings.Split(strings.TrimSuffix(preview, "\n"), "\n")
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "@@"):
			lines[i] = hunkHeaderStyle.Render(l)
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			lines[i] = filePathStyle.Render(l)
		case strings.HasPrefix(l, "+"):
			lines[i] = addedStyle.Render(l)
		case strings.HasPrefix(l, "-"):
			lines[i] = removedStyle.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}
