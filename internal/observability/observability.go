// Package observability configures process-wide logging and trace propagation.
//
// Logs go either to a plain slog handler on stderr or, when an exporter is
// selected, through the OpenTelemetry log SDK via the otelslog bridge.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// InstrumentationName identifies log records emitted through the OTel bridge.
const InstrumentationName = "github.com/suresoft/ams-client"

// Log exporters.
const (
	ExporterNone     = "none"
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

// Log formats for the plain slog handler.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ShutdownFunc flushes and stops whatever Instrument started.
type ShutdownFunc func(ctx context.Context) error

// Options for Instrument.
type Options struct {
	Level    slog.Level
	Format   string
	Exporter string
	// Output receives plain slog and stdout exporter output. Defaults to os.Stderr.
	Output io.Writer
}

// Instrument installs the default slog logger and the global text map propagator.
// The returned ShutdownFunc must be called before exit to flush buffered records.
func Instrument(ctx context.Context, opts Options) (ShutdownFunc, error) {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	switch opts.Exporter {
	case "", ExporterNone:
		handler, err := newHandler(opts)
		if err != nil {
			return nil, err
		}
		slog.SetDefault(slog.New(handler))
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := newExporter(ctx, opts)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(minsev.NewLogProcessor(sdklog.NewBatchProcessor(exporter), severity(opts.Level))),
	)
	global.SetLoggerProvider(provider)
	slog.SetDefault(slog.New(otelslog.NewHandler(InstrumentationName, otelslog.WithLoggerProvider(provider))))

	return func(ctx context.Context) error {
		return errors.Join(provider.ForceFlush(ctx), provider.Shutdown(ctx))
	}, nil
}

func newHandler(opts Options) (slog.Handler, error) {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	switch opts.Format {
	case "", FormatText:
		return slog.NewTextHandler(opts.Output, handlerOpts), nil
	case FormatJSON:
		return slog.NewJSONHandler(opts.Output, handlerOpts), nil
	default:
		return nil, fmt.Errorf("unsupported log format: %s", opts.Format)
	}
}

func newExporter(ctx context.Context, opts Options) (sdklog.Exporter, error) {
	switch opts.Exporter {
	case ExporterStdout:
		return stdoutlog.New(stdoutlog.WithWriter(opts.Output))
	case ExporterOTLPGRPC:
		// Endpoint and headers come from OTEL_EXPORTER_OTLP_* variables.
		return otlploggrpc.New(ctx)
	case ExporterOTLPHTTP:
		return otlploghttp.New(ctx)
	default:
		return nil, fmt.Errorf("unsupported log exporter: %s", opts.Exporter)
	}
}

// severity maps a slog level onto the minimum OTel severity to export.
func severity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
