// Package telemetry installs the OpenTelemetry tracer provider that records
// model requests.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
)

// ServiceName identifies spans from this program.
const ServiceName = "schoolbuddy"

const shutdownTimeout = 2 * time.Second

// NewTracerProvider exports every span to w, one JSON object per span.
func NewTracerProvider(ctx context.Context, w io.Writer, version string) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(ServiceName),
		semconv.ServiceVersionKey.String(version),
	))
	if err != nil {
		return nil, fmt.Errorf("trace resource: %w", err)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

// Open traces to the file at path, appending, or to stderr when path is
// "-". The returned close func flushes pending spans and closes the file.
func Open(ctx context.Context, path, version string) (*sdktrace.TracerProvider, func() error, error) {
	var w io.Writer = os.Stderr
	var f *os.File
	if path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create trace dir: %w", err)
		}
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open trace file: %w", err)
		}
		w = f
	}

	tp, err := NewTracerProvider(ctx, w, version)
	if err != nil {
		if f != nil {
			f.Close()
		}
		return nil, nil, err
	}

	closeFn := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := tp.Shutdown(ctx)
		if f != nil {
			err = errors.Join(err, f.Close())
		}
		return err
	}
	return tp, closeFn, nil
}
