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
	"os"
	"path/filepath"
	"testing"

	"github.com/adbc-drivers/clickhouse-bi-go/connector"
	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromOptions(t *testing.T) {
	cfg, err := connector.ConfigFromOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, connector.DefaultConfig(), cfg)

	_, err = connector.ConfigFromOptions(map[string]string{
		connector.OptionKeyExtensionPrefix: "no name",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown option")

	cfg, err = connector.ConfigFromOptions(map[string]string{
		connector.OptionKeyDiagnostics:     "true",
		connector.OptionKeyPooling:         "false",
		connector.OptionKeyProtocol:        connector.ProtocolMySQL,
		connector.OptionKeyLegacyParity:    "1",
		driverbase.OptionKeyTraceExporter:  driverbase.TraceExporterStdout,
		"clickhouse.bi.ext.ConnectTimeout": "10",
	})
	require.NoError(t, err)
	assert.True(t, cfg.Diagnostics)
	assert.False(t, cfg.Pooling)
	assert.True(t, cfg.LegacyParity)
	assert.Equal(t, connector.ProtocolMySQL, cfg.Protocol)
	assert.Equal(t, driverbase.TraceExporterStdout, cfg.TraceExporter)
	require.Contains(t, cfg.Extensions, "ConnectTimeout")
	assert.Equal(t, "10", *cfg.Extensions["ConnectTimeout"])
}

func TestConfigFromOptionsInvalid(t *testing.T) {
	for name, opts := range map[string]map[string]string{
		"bool":     {connector.OptionKeyPooling: "maybe"},
		"protocol": {connector.OptionKeyProtocol: "grpc"},
		"exporter": {driverbase.OptionKeyTraceExporter: "zipkin"},
		"unknown":  {"clickhouse.bi.nope": "x"},
		"reserved": {connector.OptionKeyExtensionPrefix + descriptor.KeySSLMode: "disable"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := connector.ConfigFromOptions(opts)
			var adbcErr adbc.Error
			require.ErrorAs(t, err, &adbcErr)
			assert.Contains(t, adbcErr.Msg, "[clickhouse]")
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("CH_TIMEOUT", "15")
	path := filepath.Join(t.TempDir(), "connector.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
diagnostics: true
protocol: http
trace_exporter: otlp-http
extensions:
  ConnectTimeout: "${CH_TIMEOUT}"
  Compress:
`), 0o600))

	cfg, err := connector.LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Diagnostics)
	// unset keys keep their defaults
	assert.True(t, cfg.Pooling)
	assert.Equal(t, connector.ProtocolHTTP, cfg.Protocol)
	assert.Equal(t, driverbase.TraceExporterOtlpHttp, cfg.TraceExporter)
	require.Contains(t, cfg.Extensions, "ConnectTimeout")
	assert.Equal(t, "15", *cfg.Extensions["ConnectTimeout"])
	require.Contains(t, cfg.Extensions, "Compress")
	assert.Nil(t, cfg.Extensions["Compress"])
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := connector.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = connector.ParseConfig([]byte("protocol: [1, 2"))
	assert.ErrorContains(t, err, "parsing config")

	_, err = connector.ParseConfig([]byte("protocol: odbc"))
	assert.ErrorContains(t, err, "invalid protocol")

	// deployment mistakes surface at load time, not per request
	_, err = connector.ParseConfig([]byte("extensions:\n  Server: other:9000\n"))
	assert.ErrorContains(t, err, "reserved")
}

func TestCapabilities(t *testing.T) {
	caps := connector.DefaultCapabilities()
	assert.Equal(t, uint32(8), caps.SQLConformance)
	assert.Equal(t, uint32(2), caps.GroupBy)
	assert.Equal(t, 3, caps.FractionalSecondsScale)
	assert.True(t, caps.SupportsOdbcTimestampLiterals)

	v, ok := caps.Info(connector.InfoConvertFunctions)
	require.True(t, ok)
	assert.Equal(t, connector.FnCvtCast, v)

	for _, code := range []uint16{connector.InfoConvertWChar, connector.InfoConvertWLongVarChar, connector.InfoConvertWVarChar} {
		v, ok := caps.Info(code)
		require.True(t, ok, code)
		assert.NotZero(t, v&connector.CvtWVarChar, code)
		assert.NotZero(t, v&connector.CvtVarChar, code)
	}

	_, ok = caps.Info(1)
	assert.False(t, ok)

	clone := caps.Clone()
	clone.GetInfo[connector.InfoConvertFunctions] = 0
	v, _ = caps.Info(connector.InfoConvertFunctions)
	assert.Equal(t, connector.FnCvtCast, v)
}

func TestConnectorCapabilities(t *testing.T) {
	caps := connector.DefaultCapabilities()
	caps.FractionalSecondsScale = 6
	conn := connector.New(nil, connector.WithCapabilities(caps))
	assert.Equal(t, 6, conn.Capabilities().FractionalSecondsScale)
}
