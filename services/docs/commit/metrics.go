// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package commit

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/docnsrt/services/docs/lock"
	"github.com/AleutianAI/docnsrt/services/docs/model"
)

var (
	tracer = otel.Tracer("docnsrt.commit")
	meter  = otel.Meter("docnsrt.commit")
)

var (
	commitsTotal  metric.Int64Counter
	linesInserted metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		commitsTotal, err = meter.Int64Counter(
			"docnsrt_commit_total",
			metric.WithDescription("File commits by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		linesInserted, err = meter.Int64Counter(
			"docnsrt_commit_edits_total",
			metric.WithDescription("Docstring edits written to disk"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

// recordCommit counts one commit attempt. Metrics failures are ignored.
func recordCommit(ctx context.Context, written int, err error) {
	if initMetrics() != nil {
		return
	}
	commitsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(err))))
	if written > 0 {
		linesInserted.Add(ctx, int64(written))
	}
}

// outcome maps a commit error to a low-cardinality label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
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

func startCommitSpan(ctx context.Context, path string, edits int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "commit.File",
		trace.WithAttributes(
			attribute.String("commit.file", path),
			attribute.Int("commit.edits", edits),
		),
	)
}
