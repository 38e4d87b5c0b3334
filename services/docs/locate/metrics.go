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
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("docnsrt.locate")
	meter  = otel.Meter("docnsrt.locate")
)

var (
	locateLatency    metric.Float64Histogram
	functionsLocated metric.Int64Counter
	locateErrors     metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		locateLatency, err = meter.Float64Histogram(
			"docnsrt_locate_duration_seconds",
			metric.WithDescription("Duration of parsing a file and collecting its functions"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		functionsLocated, err = meter.Int64Counter(
			"docnsrt_functions_located_total",
			metric.WithDescription("Functions that passed the name filters"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		locateErrors, err = meter.Int64Counter(
			"docnsrt_locate_errors_total",
			metric.WithDescription("Files skipped because they could not be parsed"),
		)
		if err != nil {
			metricsErr = err
		}
	})
	return metricsErr
}

func recordLocate(ctx context.Context, language string, d time.Duration, found int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	lang := metric.WithAttributes(attribute.String("language", language))
	locateLatency.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", success),
	))
	if success {
		functionsLocated.Add(ctx, int64(found), lang)
	} else {
		locateErrors.Add(ctx, 1, lang)
	}
}

func startLocateSpan(ctx context.Context, language, path string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "locate.File",
		trace.WithAttributes(
			attribute.String("locate.language", language),
			attribute.String("locate.file", path),
			attribute.Int("locate.content_size", size),
		),
	)
}

func endLocateSpan(span trace.Span, found int, err error) {
	span.SetAttributes(attribute.Int("locate.functions", found))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
