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
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest(t *testing.T, endpoint string, database *string, policy TLSPolicy) DBRequest {
	t.Helper()
	desc, frag, err := descriptor.Build(
		descriptor.Params{Endpoint: endpoint, Database: database},
		descriptor.Credential{Kind: descriptor.AuthUsernamePassword, Username: "reader", Password: "hunter2"},
	)
	require.NoError(t, err)
	return DBRequest{Descriptor: desc, Credentials: frag, TLS: policy, Pooling: true}
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, TLSRequired, policyFor(descriptor.TLSModeRequire))
	assert.Equal(t, TLSPreferred, policyFor(descriptor.TLSModePrefer))
	assert.Equal(t, "disabled", TLSDisabled.String())
}

func TestDBRequest(t *testing.T) {
	req := testRequest(t, `Server="ch.example.com:9440"`, nil, TLSRequired)
	assert.Equal(t, "default", req.Database())

	_, ok := req.seconds(KeyConnectTimeout)
	assert.False(t, ok)

	req.Descriptor = req.Descriptor.With(KeyConnectTimeout, "5").With(KeyReadTimeout, "-1")
	d, ok := req.seconds(KeyConnectTimeout)
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)
	_, ok = req.seconds(KeyReadTimeout)
	assert.False(t, ok)

	cfg := req.tlsConfig()
	assert.Equal(t, "ch.example.com", cfg.ServerName)

	sales := "sales"
	assert.Equal(t, "sales", testRequest(t, "Server=ch", &sales, TLSRequired).Database())
	assert.Equal(t, "ch", testRequest(t, "Server=ch", nil, TLSRequired).tlsConfig().ServerName)
}

func TestClickHouseOptions(t *testing.T) {
	sales := "sales"
	req := testRequest(t, `Server="ch.example.com:9440"`, &sales, TLSRequired)
	req.Descriptor = req.Descriptor.
		With(KeyConnectTimeout, "3").
		With(KeyReadTimeout, "30").
		With(KeyCompress, "true")

	factory := &ClickHouseDBFactory{Protocol: clickhouse.Native}
	opts := factory.Options(req)
	assert.Equal(t, clickhouse.Native, opts.Protocol)
	assert.Equal(t, []string{"ch.example.com:9440"}, opts.Addr)
	assert.Equal(t, "sales", opts.Auth.Database)
	assert.Equal(t, "reader", opts.Auth.Username)
	assert.Equal(t, "hunter2", opts.Auth.Password)
	require.NotNil(t, opts.TLS)
	assert.Equal(t, "ch.example.com", opts.TLS.ServerName)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
	assert.Equal(t, 30*time.Second, opts.ReadTimeout)
	require.NotNil(t, opts.Compression)
	assert.Equal(t, clickhouse.CompressionLZ4, opts.Compression.Method)

	req.TLS = TLSPreferred
	assert.NotNil(t, factory.Options(req).TLS)
	req.TLS = TLSDisabled
	assert.Nil(t, factory.Options(req).TLS)
}

func TestClickHouseOpenDB(t *testing.T) {
	req := testRequest(t, "Server=localhost:9000", nil, TLSDisabled)
	req.Pooling = false

	db, err := (&ClickHouseDBFactory{Protocol: clickhouse.HTTP}).OpenDB(context.Background(), req)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestMySQLConfig(t *testing.T) {
	req := testRequest(t, "Server=ch.example.com:9004", nil, TLSRequired)
	req.Descriptor = req.Descriptor.With(KeyConnectTimeout, "10")

	factory := &MySQLDBFactory{}
	cfg := factory.Config(req)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "ch.example.com:9004", cfg.Addr)
	assert.Equal(t, "default", cfg.DBName)
	assert.Equal(t, "reader", cfg.User)
	assert.Equal(t, "hunter2", cfg.Passwd)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	require.NotNil(t, cfg.TLS)
	assert.Equal(t, "ch.example.com", cfg.TLS.ServerName)

	req.TLS = TLSPreferred
	cfg = factory.Config(req)
	assert.Nil(t, cfg.TLS)
	assert.Equal(t, "preferred", cfg.TLSConfig)

	req.TLS = TLSDisabled
	cfg = factory.Config(req)
	assert.Nil(t, cfg.TLS)
	assert.Empty(t, cfg.TLSConfig)
}

func TestMySQLOpenDB(t *testing.T) {
	req := testRequest(t, "Server=localhost:9004", nil, TLSPreferred)

	db, err := (&MySQLDBFactory{}).OpenDB(context.Background(), req)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestWithProtocol(t *testing.T) {
	h := NewHost(WithProtocol("http"))
	ch, ok := h.factory.(*ClickHouseDBFactory)
	require.True(t, ok)
	assert.Equal(t, clickhouse.HTTP, ch.Protocol)

	h = NewHost(WithProtocol("mysql"))
	assert.IsType(t, &MySQLDBFactory{}, h.factory)

	h = NewHost(WithProtocol("carrier-pigeon"))
	ch, ok = h.factory.(*ClickHouseDBFactory)
	require.True(t, ok)
	assert.Equal(t, clickhouse.Native, ch.Protocol)
}
