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
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AleutianAI/docnsrt/services/docs/lock"
	"github.com/AleutianAI/docnsrt/services/docs/model"
)

var (
	docstringsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docnsrt_docstrings_written_total",
		Help: "Docstrings committed to disk.",
	})

	commitErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docnsrt_commit_errors_total",
		Help: "File commits that failed, by reason.",
	}, []string{"reason"})
)

// commitReason maps a commit error to a low-cardinality label.
func commitReason(err error) string {
	switch {
	case errors.Is(err, model.ErrFileChanged):
		return "changed"
	case errors.Is(err, lock.ErrFileLocked):
		return "locked"
	case errors.Is(err, model.ErrLineOutOfRange):
		return "out_of_range"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "io"
	}
}
