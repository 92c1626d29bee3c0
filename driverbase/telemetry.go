// Copyright (c) 2025 ADBC Drivers Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//         http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package driverbase

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	// OptionKeyTraceExporter selects where spans are exported.
	OptionKeyTraceExporter = "adbc.telemetry.trace_exporter"

	TraceExporterNone     = "none"
	TraceExporterStdout   = "stdout"
	TraceExporterOtlpGrpc = "otlp-grpc"
	TraceExporterOtlpHttp = "otlp-http"
)

// NewTracerProvider builds a tracer provider for the named exporter.  The
// OTLP exporters take their endpoint from the standard OTEL_EXPORTER_OTLP_*
// environment variables.  w is only used by the stdout exporter; nil means
// os.Stdout.
func NewTracerProvider(ctx context.Context, exporter string, w io.Writer) (*sdktrace.TracerProvider, error) {
	var opts []sdktrace.TracerProviderOption

	switch exporter {
	case "", TraceExporterNone:
	case TraceExporterStdout:
		var stdoutOpts []stdouttrace.Option
		if w != nil {
			stdoutOpts = append(stdoutOpts, stdouttrace.WithWriter(w))
		}
		exp, err := stdouttrace.New(stdoutOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithSyncer(exp))
	case TraceExporterOtlpGrpc:
		exp, err := otlptracegrpc.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	case TraceExporterOtlpHttp:
		exp, err := otlptracehttp.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", exporter)
	}

	return sdktrace.NewTracerProvider(opts...), nil
}
