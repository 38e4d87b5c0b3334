// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"fmt"
	"io"
)

// Summary is the aggregate outcome of one run.
type Summary struct {
	RunID string

	// Files is the number of files visited.
	Files int

	// Candidates counts the functions selected by the name filters.
	Candidates int

	// Written counts docstrings committed to disk.
	Written int

	// Skipped counts functions left alone: already documented under
	// skip_existing, skipped in review, or discarded by QUIT.
	Skipped int

	// DryRun is set when write is off; approved edits are printed instead.
	DryRun bool

	// Errors holds every file- and function-scoped failure in the order
	// they happened.
	Errors []error
}

func (s *Summary) addError(err error) {
	s.Errors = append(s.Errors, err)
}

// OK reports whether the run finished without errors.
func (s Summary) OK() bool {
	return len(s.Errors) == 0
}

// Print writes each error on its own line followed by the count line.
func (s Summary) Print(w io.Writer) {
	for _, err := range s.Errors {
		fmt.Fprintf(w, "Error: %v\n", err)
	}
	fmt.Fprintf(w, "%d/%d docstrings written successfully", s.Written, s.Candidates)
	if s.DryRun {
		fmt.Fprint(w, " (dry run, nothing written)")
	}
	fmt.Fprintln(w)
}
