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

// Package sqlwrapper is the driver host: it reaches ClickHouse through
// database/sql, either with clickhouse-go (native or HTTP protocol) or
// through ClickHouse's MySQL wire protocol interface.
package sqlwrapper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/adbc-drivers/clickhouse-bi-go/connector"
	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	"github.com/adbc-drivers/clickhouse-bi-go/sqldriver"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Host implements connector.Host over database/sql.
type Host struct {
	factory     DBFactory
	logger      *slog.Logger
	mem         memory.Allocator
	batchSize   int
	caps        connector.Capabilities
	errorHelper driverbase.ErrorHelper
}

var _ connector.Host = (*Host)(nil)

type HostOption func(*Host)

// WithDBFactory replaces the protocol-specific factory.
func WithDBFactory(factory DBFactory) HostOption {
	return func(h *Host) { h.factory = factory }
}

// WithProtocol selects the factory for connector.ProtocolNative,
// ProtocolHTTP or ProtocolMySQL.  Unknown names keep the native protocol.
func WithProtocol(protocol string) HostOption {
	return func(h *Host) {
		switch protocol {
		case connector.ProtocolHTTP:
			h.factory = &ClickHouseDBFactory{Protocol: clickhouse.HTTP}
		case connector.ProtocolMySQL:
			h.factory = &MySQLDBFactory{}
		default:
			h.factory = &ClickHouseDBFactory{Protocol: clickhouse.Native}
		}
	}
}

func WithAllocator(mem memory.Allocator) HostOption {
	return func(h *Host) { h.mem = mem }
}

func WithLogger(logger *slog.Logger) HostOption {
	return func(h *Host) { h.logger = logger }
}

// WithBatchSize sets the rows per record batch of query results.
func WithBatchSize(n int) HostOption {
	return func(h *Host) {
		if n > 0 {
			h.batchSize = n
		}
	}
}

// WithCapabilities sets the capabilities the host honours, e.g. the
// timestamp precision of query results.  NewConnector advertises the same
// value to the connector.
func WithCapabilities(caps connector.Capabilities) HostOption {
	return func(h *Host) { h.caps = caps.Clone() }
}

func NewHost(opts ...HostOption) *Host {
	h := &Host{
		factory:   &ClickHouseDBFactory{Protocol: clickhouse.Native},
		logger:    slog.New(slog.DiscardHandler),
		mem:       memory.DefaultAllocator,
		batchSize: DefaultBatchSize,
		caps:      connector.DefaultCapabilities(),
		errorHelper: driverbase.ErrorHelper{
			DriverName:     descriptor.DriverName,
			ErrorInspector: ErrorInspector{},
		},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (h *Host) Capabilities() connector.Capabilities {
	return h.caps.Clone()
}

func (h *Host) connect(ctx context.Context, req DBRequest) (*sqldriver.DB, error) {
	db, err := h.factory.OpenDB(ctx, req)
	if err != nil {
		return nil, err
	}
	if req.Descriptor.Bool(descriptor.KeyVerifyOnConnect) {
		if err := db.PingContext(ctx); err != nil {
			return nil, errors.Join(err, db.Close())
		}
	}
	return db, nil
}

// open connects according to the descriptor's TLS mode.  In prefer mode a
// failed TLS handshake is retried once in plaintext.
func (h *Host) open(ctx context.Context, desc descriptor.Descriptor, creds descriptor.Fragment, pooling bool) (*sqldriver.DB, error) {
	req := DBRequest{
		Descriptor:  desc,
		Credentials: creds,
		TLS:         policyFor(desc.TLSMode()),
		Pooling:     pooling,
	}
	db, err := h.connect(ctx, req)
	if err != nil && req.TLS == TLSPreferred && isTLSError(err) {
		h.logger.WarnContext(ctx, "TLS handshake failed, retrying without TLS",
			slog.String("server", desc.Server()), slog.Any("error", err))
		req.TLS = TLSDisabled
		db, err = h.connect(ctx, req)
	}
	if err != nil {
		return nil, h.connectError(err, "failed to connect to %s", desc.Server())
	}
	h.logger.DebugContext(ctx, "connected", slog.String("server", desc.Server()), slog.String("tls", req.TLS.String()))
	return db, nil
}

func (h *Host) OpenDataSource(ctx context.Context, desc descriptor.Descriptor, opts connector.OpenOptions) (connector.Catalog, error) {
	db, err := h.open(ctx, desc, opts.Credentials, opts.Pooling)
	if err != nil {
		return nil, err
	}
	return newCatalog(h, db, opts), nil
}

// RunQuery executes query on a fresh pool and materializes the whole
// result before the pool is closed.
func (h *Host) RunQuery(ctx context.Context, desc descriptor.Descriptor, query string, creds descriptor.Fragment) (reader array.RecordReader, err error) {
	// the pool only lives for this query
	db, err := h.open(ctx, desc, creds, false)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, h.errorHelper.WrapIO(closeErr, "failed to close database"))
		}
		if err != nil && reader != nil {
			reader.Release()
			reader = nil
		}
	}()

	sqlConn, err := db.Conn(ctx)
	if err != nil {
		return nil, h.errorHelper.WrapIO(err, "failed to acquire database connection")
	}
	conn := &LoggingConn{Conn: sqlConn, Logger: h.logger, Purpose: "query"}
	defer func() {
		err = errors.Join(err, conn.Close())
	}()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, h.errorHelper.WrapIO(err, "failed to execute query")
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, h.errorHelper.WrapIO(err, "failed to get column types")
	}
	converter := NewTypeConverter(desc.Bool(descriptor.KeyBigIntAsString), h.caps.FractionalSecondsScale)
	schema, err := buildArrowSchemaFromColumnTypes(columnTypes, converter)
	if err != nil {
		return nil, h.errorHelper.Internal("failed to build Arrow schema: %v", err)
	}

	reader, err = readAll(h.mem, rows, schema, converter, h.batchSize)
	if err != nil {
		return nil, h.errorHelper.WrapIO(err, "failed to read query result")
	}
	return reader, nil
}
