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

package sqlwrapper

import (
	"context"
	"io"
	"log/slog"

	"github.com/adbc-drivers/clickhouse-bi-go/connector"
	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup is a connector wired to this package's Host, plus the tracing
// pipeline it reports to.
type Setup struct {
	Connector *connector.Connector
	Host      *Host

	tracerProvider *sdktrace.TracerProvider
}

// Shutdown flushes and stops span export.
func (s *Setup) Shutdown(ctx context.Context) error {
	return s.tracerProvider.Shutdown(ctx)
}

// NewConnector builds a connector from cfg: the protocol picks the DB
// factory and the trace exporter picks where spans go.  traceOut only
// matters for the stdout exporter.  Capabilities set with the host's
// WithCapabilities are advertised by the connector too.
func NewConnector(ctx context.Context, cfg connector.Config, logger *slog.Logger, traceOut io.Writer, hostOpts ...HostOption) (*Setup, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tp, err := driverbase.NewTracerProvider(ctx, cfg.TraceExporter, traceOut)
	if err != nil {
		return nil, err
	}

	opts := append([]HostOption{WithProtocol(cfg.Protocol), WithLogger(logger)}, hostOpts...)
	host := NewHost(opts...)
	conn := connector.New(host,
		connector.WithConfig(cfg),
		connector.WithLogger(logger),
		connector.WithTracerProvider(tp),
		connector.WithCapabilities(host.Capabilities()),
	)
	return &Setup{Connector: conn, Host: host, tracerProvider: tp}, nil
}
