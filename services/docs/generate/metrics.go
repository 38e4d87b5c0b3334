// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// generateRequests counts Generate calls.
	//
	// Labels:
	//   - generator: "placeholder" or "llm"
	//   - outcome: "ok", "cached", "malformed", "canceled", "error"
	generateRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docnsrt",
			Subsystem: "generate",
			Name:      "requests_total",
			Help:      "Total docstring generation requests.",
		},
		[]string{"generator", "outcome"},
	)

	// generateDuration measures backend round trips, cache hits excluded.
	generateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docnsrt",
			Subsystem: "generate",
			Name:      "duration_seconds",
			Help:      "Duration of generation backend calls in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"generator", "model"},
	)
)

// outcome maps a Generate result to a label value.
func outcome(err error, cached bool) string {
	switch {
	case err == nil && cached:
		return "cached"
	case err == nil:
		return "ok"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}

func recordGenerate(generator string, err error, cached bool) {
	generateRequests.WithLabelValues(generator, outcome(err, cached)).Inc()
}

func observeBackend(generator, modelName string, d time.Duration) {
	generateDuration.WithLabelValues(generator, modelName).Observe(d.Seconds())
}
