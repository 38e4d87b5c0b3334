// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry wires the OpenTelemetry trace and metric providers
// for a docnsrt run and snapshots Prometheus metrics to a textfile.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"

	"github.com/AleutianAI/docnsrt/services/docs/config"
)

// ServiceName identifies docnsrt in exported telemetry.
const ServiceName = "docnsrt"

// Exporter names.
const (
	ExporterNone       = "none"
	ExporterStdout     = "stdout"
	ExporterOTLP       = "otlp"
	ExporterPrometheus = "prometheus"
)

var (
	// ErrNilContext is returned when Init is given a nil context.
	ErrNilContext = errors.New("context must not be nil")

	// ErrUnknownExporter indicates an exporter name Init does not know.
	ErrUnknownExporter = errors.New("unknown exporter")
)

// ShutdownFunc flushes and stops the providers Init installed.
type ShutdownFunc func(context.Context) error

// Init installs the global tracer and meter providers.
//
// Description:
//
//	"none" leaves the corresponding global no-op provider in place. The
//	prometheus metric exporter registers with the default Prometheus
//	registry, so WriteMetrics picks up the OTel instruments alongside the
//	promauto counters.
//
// Inputs:
//   - ctx: Used for the OTLP connection.
//   - cfg: Exporter selection.
//   - version: Reported as service.version.
//
// Outputs:
//   - ShutdownFunc: Always non-nil on success. Must be called on exit.
//   - error: Non-nil for an unknown exporter or exporter setup failure.
//
// Thread Safety: Call once at startup.
func Init(ctx context.Context, cfg config.TelemetryConfig, version string) (ShutdownFunc, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}

	var shutdownFuncs []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdownFuncs) - 1; i >= 0; i-- {
			errs = append(errs, shutdownFuncs[i](ctx))
		}
		return errors.Join(errs...)
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", version),
	)

	if exporter := orNone(cfg.TraceExporter); exporter != ExporterNone {
		tp, err := newTracerProvider(ctx, cfg, exporter, version, res)
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		otel.SetTracerProvider(tp)
		shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	}

	if exporter := orNone(cfg.MetricExporter); exporter != ExporterNone {
		mp, err := newMeterProvider(exporter, res)
		if err != nil {
			_ = shutdown(ctx)
			return nil, fmt.Errorf("init meter: %w", err)
		}
		otel.SetMeterProvider(mp)
		shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
	}

	return shutdown, nil
}

func newTracerProvider(ctx context.Context, cfg config.TelemetryConfig, exporter, version string, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	var (
		exp sdktrace.SpanExporter
		err error
	)
	switch exporter {
	case ExporterOTLP:
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithDialOption(grpc.WithUserAgent(ServiceName + "/" + version)),
		}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exp, err = otlptracegrpc.New(ctx, opts...)
	case ExporterStdout:
		exp, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, exporter)
	}
	if err != nil {
		return nil, fmt.Errorf("create span exporter: %w", err)
	}

	// One-shot CLI runs: sample everything.
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	), nil
}

func newMeterProvider(exporter string, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	switch exporter {
	case ExporterPrometheus:
		reader, err := promexporter.New()
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		return sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		), nil
	case ExporterStdout:
		exp, err := stdoutmetric.New(stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		return sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, exporter)
	}
}

// WriteMetrics writes the default Prometheus registry to path in the
// node_exporter textfile format. An empty path is a no-op.
func WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return ExporterNone
	}
	return s
}
