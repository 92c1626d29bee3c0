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

package connector_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/adbc-drivers/clickhouse-bi-go/classify"
	"github.com/adbc-drivers/clickhouse-bi-go/connector"
	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	"github.com/adbc-drivers/clickhouse-bi-go/metadata"
	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// fakeHost records what the connector asked for and serves a fixed catalog.
type fakeHost struct {
	mem memory.Allocator

	openErr  error
	queryErr error
	closeErr error

	opened   []descriptor.Descriptor
	openOpts []connector.OpenOptions
	queries  []string
	closed   int
}

func (h *fakeHost) OpenDataSource(_ context.Context, desc descriptor.Descriptor, opts connector.OpenOptions) (connector.Catalog, error) {
	h.opened = append(h.opened, desc)
	h.openOpts = append(h.openOpts, opts)
	if h.openErr != nil {
		return nil, h.openErr
	}
	return &fakeCatalog{host: h, opts: opts}, nil
}

func (h *fakeHost) RunQuery(_ context.Context, _ descriptor.Descriptor, query string, _ descriptor.Fragment) (array.RecordReader, error) {
	h.queries = append(h.queries, query)
	if h.queryErr != nil {
		return nil, h.queryErr
	}
	schema := arrow.NewSchema([]arrow.Field{{Name: "1", Type: arrow.PrimitiveTypes.Uint8}}, nil)
	bldr := array.NewRecordBuilder(h.mem, schema)
	defer bldr.Release()
	bldr.Field(0).(*array.Uint8Builder).Append(1)
	rec := bldr.NewRecord()
	defer rec.Release()
	return array.NewRecordReader(schema, []arrow.Record{rec})
}

type fakeCatalog struct {
	host *fakeHost
	opts connector.OpenOptions
}

func (c *fakeCatalog) database(name string) *connector.Node {
	cols := c.opts.ColumnInfoHook(metadata.ColumnInfo{
		Catalog: name,
		Table:   "events",
		Rows: []metadata.ColumnInfoRow{
			{Catalog: name, Table: "events", Column: "id", TypeName: "BIGINT", DataType: driverbase.XdbcCTypeUBigint, Nullable: "0"},
			{Catalog: name, Table: "events", Column: "body", TypeName: "TEXT", DataType: driverbase.XdbcDataTypeLongVarChar, Nullable: "1"},
		},
	})
	return &connector.Node{
		Name: name,
		Kind: connector.NodeDatabase,
		Children: []*connector.Node{
			{Name: "events", Kind: connector.NodeTable, Columns: &cols},
		},
	}
}

func (c *fakeCatalog) Navigation(context.Context) ([]*connector.Node, error) {
	return []*connector.Node{c.database("default"), c.database("analytics")}, nil
}

func (c *fakeCatalog) Database(_ context.Context, name string) (*connector.Node, error) {
	if name != "default" && name != "analytics" {
		return nil, nil
	}
	return c.database(name), nil
}

func (c *fakeCatalog) TypeInfo(context.Context) ([]metadata.TypeInfoRow, error) {
	return c.opts.TypeInfoHook([]metadata.TypeInfoRow{{TypeName: "String", DataType: driverbase.XdbcDataTypeLongVarChar}}), nil
}

func (c *fakeCatalog) GetInfo(code uint16) (uint32, bool) {
	return c.opts.Capabilities.Info(code)
}

func (c *fakeCatalog) Close() error {
	c.host.closed++
	return c.host.closeErr
}

type ContentsTests struct {
	suite.Suite

	ctx      context.Context
	mem      *memory.CheckedAllocator
	host     *fakeHost
	recorder *tracetest.SpanRecorder
	conn     *connector.Connector
	creds    connector.CredentialSource
}

func TestContents(t *testing.T) {
	suite.Run(t, &ContentsTests{})
}

func (s *ContentsTests) SetupTest() {
	s.ctx = context.Background()
	s.mem = memory.NewCheckedAllocator(memory.NewGoAllocator())
	s.host = &fakeHost{mem: s.mem}
	s.recorder = tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.recorder))
	s.conn = connector.New(s.host, connector.WithTracerProvider(tp))
	s.creds = connector.UsernamePassword("default", "secret", nil)
}

func (s *ContentsTests) TearDownTest() {
	s.mem.AssertSize(s.T(), 0)
}

func ptr(v string) *string { return &v }

func (s *ContentsTests) params(database, query *string) descriptor.Params {
	return descriptor.Params{Endpoint: `Server="ch.example.com:9440"`, Database: database, Query: query}
}

func (s *ContentsTests) spanAttrs() map[attribute.Key]attribute.Value {
	spans := s.recorder.Ended()
	s.Require().Len(spans, 1)
	s.Equal("clickhouse.Contents", spans[0].Name())
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func (s *ContentsTests) TestFullCatalog() {
	result, err := s.conn.Contents(s.ctx, s.creds, s.params(nil, nil))
	s.Require().NoError(err)
	defer result.Release()

	s.Equal(connector.StateFullCatalog, result.Kind)
	s.Require().Len(result.Navigation, 2)
	s.Equal("default", result.Navigation[0].Name)
	s.Nil(result.Database)
	s.Nil(result.Table)
	s.Len(result.TypeInfo, 1+len(metadata.InjectedTypeInfo()))

	events := result.Navigation[0].Child("events")
	s.Require().NotNil(events)
	s.Equal(int16(-5), events.Columns.Rows[0].DataType)
	s.Equal("YES", events.Columns.Rows[0].Nullable)
	s.Equal("WVARCHAR", events.Columns.Rows[1].TypeName)

	s.Len(s.host.opened, 1)
	s.Empty(s.host.queries)
	s.Equal(1, s.host.closed)

	attrs := s.spanAttrs()
	s.Equal("FULL_CATALOG", attrs["clickhouse.state"].AsString())
	s.Equal("DONE", attrs["clickhouse.final_state"].AsString())
	s.Equal("ch.example.com:9440", attrs["clickhouse.server"].AsString())
}

func (s *ContentsTests) TestScopedDatabase() {
	result, err := s.conn.Contents(s.ctx, s.creds, s.params(ptr("default"), nil))
	s.Require().NoError(err)

	s.Equal(connector.StateScopedDatabase, result.Kind)
	s.Nil(result.Navigation)
	s.Require().NotNil(result.Database)
	s.Equal("default", result.Database.Name)

	db, ok := s.host.opened[0].Database()
	s.True(ok)
	s.Equal("default", db)
	s.Equal(1, s.host.closed)
}

func (s *ContentsTests) TestScopedDatabaseMissing() {
	_, err := s.conn.Contents(s.ctx, s.creds, s.params(ptr("nope"), nil))
	var adbcErr adbc.Error
	s.Require().ErrorAs(err, &adbcErr)
	s.Equal(adbc.StatusNotFound, adbcErr.Code)
	s.Equal(1, s.host.closed)
	s.Equal("FAILED", s.spanAttrs()["clickhouse.final_state"].AsString())
}

func (s *ContentsTests) TestAdHocQuery() {
	result, err := s.conn.Contents(s.ctx, s.creds, s.params(nil, ptr("SELECT 1")))
	s.Require().NoError(err)
	defer result.Release()

	s.Equal(connector.StateAdHocQuery, result.Kind)
	s.Require().NotNil(result.Table)
	s.Require().True(result.Table.Next())
	rec := result.Table.Record()
	s.EqualValues(1, rec.NumRows())
	s.EqualValues(1, rec.NumCols())
	s.Equal(uint8(1), rec.Column(0).(*array.Uint8).Value(0))
	s.False(result.Table.Next())

	s.Equal([]string{"SELECT 1"}, s.host.queries)
	s.Empty(s.host.opened)
}

func (s *ContentsTests) TestQueryWinsOverDatabase() {
	result, err := s.conn.Contents(s.ctx, s.creds, s.params(ptr("default"), ptr("SELECT 1")))
	s.Require().NoError(err)
	defer result.Release()

	s.Equal(connector.StateAdHocQuery, result.Kind)
	s.Nil(result.Database)
	s.NotNil(result.Table)
	s.Empty(s.host.opened)
	s.Equal("AD_HOC_QUERY", s.spanAttrs()["clickhouse.state"].AsString())
}

func (s *ContentsTests) TestOpenOptions() {
	_, err := s.conn.Contents(s.ctx, s.creds, s.params(nil, nil))
	s.Require().NoError(err)

	opts := s.host.openOpts[0]
	s.True(opts.Pooling)
	s.True(opts.HierarchicalNavigation)
	s.Equal(descriptor.Fragment{UID: "default", PWD: "secret"}, opts.Credentials)
	s.Equal(3, opts.Capabilities.FractionalSecondsScale)
	s.Equal(connector.LimitClauseLimitOffset, opts.Capabilities.LimitClause)

	// descriptor never carries the secret
	for _, k := range s.host.opened[0].Keys() {
		s.NotEqual("secret", s.host.opened[0].String(k), k)
	}
}

// columnInfoRecords runs the ColumnInfoHook the connector handed to the host
// and counts the diagnostic records it logged.
func (s *ContentsTests) columnInfoRecords(opts ...connector.Option) int {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	host := &fakeHost{mem: s.mem}
	conn := connector.New(host, append([]connector.Option{connector.WithLogger(logger)}, opts...)...)
	_, err := conn.Contents(s.ctx, s.creds, s.params(ptr("default"), nil))
	s.Require().NoError(err)

	hooks := host.openOpts[0]
	s.Require().NotNil(hooks.TypeInfoHook)
	s.Require().NotNil(hooks.ColumnInfoHook)
	in := []metadata.TypeInfoRow{{TypeName: "String", DataType: driverbase.XdbcDataTypeLongVarChar}}
	s.Len(hooks.TypeInfoHook(in), len(in)+5)

	buf.Reset()
	corrected := hooks.ColumnInfoHook(metadata.ColumnInfo{
		Catalog: "default",
		Table:   "events",
		Rows: []metadata.ColumnInfoRow{
			{Column: "id", TypeName: "BIGINT", DataType: driverbase.XdbcCTypeUBigint, Nullable: "0"},
		},
	})
	s.Equal(driverbase.XdbcDataTypeBigint, corrected.Rows[0].DataType)
	return strings.Count(buf.String(), `"msg":"column info`)
}

func (s *ContentsTests) TestColumnInfoDiagnostics() {
	s.Zero(s.columnInfoRecords())
	s.Zero(s.columnInfoRecords(connector.WithDiagnostics(false)))
	s.Equal(2, s.columnInfoRecords(connector.WithDiagnostics(true)))

	cfg := connector.DefaultConfig()
	cfg.Diagnostics = true
	s.Equal(2, s.columnInfoRecords(connector.WithConfig(cfg)))
}

func (s *ContentsTests) TestEmptyQuery() {
	_, err := s.conn.Contents(s.ctx, s.creds, s.params(nil, ptr(" ")))
	var adbcErr adbc.Error
	s.Require().ErrorAs(err, &adbcErr)
	s.Equal(adbc.StatusInvalidArgument, adbcErr.Code)
	s.Empty(s.host.queries)
	s.Empty(s.host.opened)
}

func (s *ContentsTests) TestUnsupportedAuthentication() {
	creds := connector.StaticCredential{Kind: descriptor.AuthWindows}
	_, err := s.conn.Contents(s.ctx, creds, s.params(nil, nil))
	s.ErrorIs(err, descriptor.ErrUnsupportedAuthentication)
	s.Empty(s.host.opened)
	s.Empty(s.host.queries)
}

func (s *ContentsTests) TestBadEndpoint() {
	_, err := s.conn.Contents(s.ctx, s.creds, descriptor.Params{Endpoint: "Server="})
	var adbcErr adbc.Error
	s.Require().ErrorAs(err, &adbcErr)
	s.Equal(adbc.StatusInvalidArgument, adbcErr.Code)
	s.Empty(s.host.opened)
}

func (s *ContentsTests) TestOpenFailureClassified() {
	s.host.openErr = &classify.DriverError{Entries: []classify.DriverErrorEntry{
		{Message: "[clickhouse] tls: handshake failure", NativeCode: classify.NativeCodeSSL},
	}}
	_, err := s.conn.Contents(s.ctx, s.creds, s.params(nil, nil))
	s.ErrorIs(err, classify.ErrEncryptionNotSupported)

	var adbcErr adbc.Error
	s.Require().ErrorAs(err, &adbcErr)
	s.Equal(adbc.StatusUnauthenticated, adbcErr.Code)

	spans := s.recorder.Ended()
	s.Require().Len(spans, 1)
	s.Equal(codes.Error, spans[0].Status().Code)
	s.Equal("FULL_CATALOG", s.spanAttrs()["clickhouse.failed_in"].AsString())
}

func (s *ContentsTests) TestQueryFailureAccessDenied() {
	s.host.queryErr = &classify.DriverError{Entries: []classify.DriverErrorEntry{
		{Message: "[clickhouse] Authentication failed", NativeCode: 516},
	}}
	_, err := s.conn.Contents(s.ctx, s.creds, s.params(nil, ptr("SELECT 1")))
	s.ErrorIs(err, classify.ErrAccessDenied)
}

func (s *ContentsTests) TestLegacyParity() {
	cfg := connector.DefaultConfig()
	cfg.LegacyParity = true
	conn := connector.New(s.host, connector.WithConfig(cfg))

	s.host.openErr = &classify.DriverError{Entries: []classify.DriverErrorEntry{
		{Message: "[clickhouse] Authentication failed", NativeCode: 516},
	}}
	_, err := conn.Contents(s.ctx, s.creds, s.params(nil, nil))
	s.ErrorIs(err, classify.ErrEncryptionNotSupported)
}

func (s *ContentsTests) TestLegacyParityOptionOrder() {
	cfg := connector.DefaultConfig()
	cfg.LegacyParity = true
	s.host.openErr = &classify.DriverError{Entries: []classify.DriverErrorEntry{
		{Message: "[clickhouse] Authentication failed", NativeCode: 516},
	}}

	for _, opts := range [][]connector.Option{
		{connector.WithConfig(cfg), connector.WithClassifier(classify.New())},
		{connector.WithClassifier(nil), connector.WithConfig(cfg)},
	} {
		_, err := connector.New(s.host, opts...).Contents(s.ctx, s.creds, s.params(nil, nil))
		s.ErrorIs(err, classify.ErrEncryptionNotSupported)
	}

	// the caller's classifier is not modified
	own := classify.New()
	connector.New(s.host, connector.WithClassifier(own), connector.WithConfig(cfg))
	s.False(own.LegacyParity)
}

func (s *ContentsTests) TestPassthroughFailure() {
	raw := errors.New("connection refused")
	s.host.openErr = raw
	_, err := s.conn.Contents(s.ctx, s.creds, s.params(nil, nil))
	s.Same(raw, err)
}

func (s *ContentsTests) TestCloseFailure() {
	s.host.closeErr = errors.New("close failed")
	result, err := s.conn.Contents(s.ctx, s.creds, s.params(nil, nil))
	s.Nil(result)
	s.ErrorIs(err, s.host.closeErr)
}

func (s *ContentsTests) TestExtensions() {
	conn := connector.New(s.host, connector.WithExtensions(descriptor.Extensions{
		"ConnectTimeout": ptr("10"),
		"Compress":       nil,
	}))
	_, err := conn.Contents(s.ctx, s.creds, s.params(nil, nil))
	s.Require().NoError(err)
	s.Equal("10", s.host.opened[0].String("ConnectTimeout"))
	_, ok := s.host.opened[0].Get("Compress")
	s.False(ok)

	conn = connector.New(s.host, connector.WithExtensions(descriptor.Extensions{
		descriptor.KeySSLMode: ptr("disable"),
	}))
	_, err = conn.Contents(s.ctx, s.creds, s.params(nil, nil))
	s.Error(err)
}

func TestRoute(t *testing.T) {
	db, q := ptr("default"), ptr("SELECT 1")
	for _, tc := range []struct {
		params descriptor.Params
		want   connector.State
	}{
		{descriptor.Params{}, connector.StateFullCatalog},
		{descriptor.Params{Database: db}, connector.StateScopedDatabase},
		{descriptor.Params{Query: q}, connector.StateAdHocQuery},
		{descriptor.Params{Database: db, Query: q}, connector.StateAdHocQuery},
	} {
		if got := connector.Route(tc.params); got != tc.want {
			t.Errorf("Route(%+v) = %s, want %s", tc.params, got, tc.want)
		}
	}
}
