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

package metadata_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	"github.com/adbc-drivers/clickhouse-bi-go/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectDataType(t *testing.T) {
	for _, tc := range []struct {
		name     string
		reported int16
		want     int16
	}{
		{"DATETIME", driverbase.XdbcDataTypeDateTime, driverbase.XdbcDataTypeTimestamp},
		{"TIME", driverbase.XdbcDataTypeLegacyTime, driverbase.XdbcDataTypeTime},
		{"TIMESTAMP", driverbase.XdbcDataTypeLegacyTimestamp, driverbase.XdbcDataTypeTimestamp},
		{"TINYINT", driverbase.XdbcCTypeUTinyint, driverbase.XdbcDataTypeTinyint},
		{"BIGINT", driverbase.XdbcCTypeUBigint, driverbase.XdbcDataTypeBigint},
		{"TEXT", driverbase.XdbcDataTypeLongVarChar, driverbase.XdbcDataTypeWVarChar},
		{"GUID", driverbase.XdbcDataTypeGUID, driverbase.XdbcDataTypeGUID},
		{"INTEGER", driverbase.XdbcDataTypeInteger, driverbase.XdbcDataTypeInteger},
		{"VARCHAR", driverbase.XdbcDataTypeVarChar, driverbase.XdbcDataTypeVarChar},
		{"signed TINYINT", driverbase.XdbcDataTypeTinyint, driverbase.XdbcDataTypeTinyint},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, metadata.CorrectDataType(tc.reported))
		})
	}
}

func TestCorrectTypeName(t *testing.T) {
	assert.Equal(t, "WVARCHAR", metadata.CorrectTypeName("TEXT"))
	assert.Equal(t, "WCHAR", metadata.CorrectTypeName("CHAR"))
	assert.Equal(t, "VARCHAR", metadata.CorrectTypeName("VARCHAR"))
	// literal match only
	assert.Equal(t, "text", metadata.CorrectTypeName("text"))
	assert.Equal(t, "", metadata.CorrectTypeName(""))
}

func TestNormalizeNullable(t *testing.T) {
	for in, want := range map[string]string{
		"0":    metadata.NullableYes,
		"00":   metadata.NullableYes,
		" 0 ":  metadata.NullableYes,
		"-0":   metadata.NullableYes,
		"1":    metadata.NullableNo,
		"2":    metadata.NullableNo,
		"":     metadata.NullableNo,
		"abc":  metadata.NullableNo,
		"YES":  metadata.NullableYes,
		"NO":   metadata.NullableNo,
		"true": metadata.NullableNo,
	} {
		assert.Equal(t, want, metadata.NormalizeNullable(in), "input %q", in)
	}
}

func sampleColumnInfo() metadata.ColumnInfo {
	row := func(name, typeName string, code int16, nullable string) metadata.ColumnInfoRow {
		return metadata.ColumnInfoRow{
			Catalog: "default", Table: "events", Column: name,
			TypeName: typeName, DataType: code, Nullable: nullable,
		}
	}
	return metadata.ColumnInfo{
		Catalog: "default",
		Table:   "events",
		Rows: []metadata.ColumnInfoRow{
			row("id", "BIGINT", driverbase.XdbcCTypeUBigint, "0"),
			row("name", "TEXT", driverbase.XdbcDataTypeLongVarChar, "1"),
			row("code", "CHAR", driverbase.XdbcDataTypeChar, "1"),
			row("at", "DATETIME", driverbase.XdbcDataTypeDateTime, "0"),
			row("flag", "TINYINT", driverbase.XdbcCTypeUTinyint, "x"),
			row("ratio", "DOUBLE", driverbase.XdbcDataTypeDouble, "1"),
		},
	}
}

func TestColumnCorrector(t *testing.T) {
	in := sampleColumnInfo()
	out := metadata.ColumnCorrector{}.Correct(in)

	require.Len(t, out.Rows, len(in.Rows))
	assert.Equal(t, in.Catalog, out.Catalog)
	assert.Equal(t, in.Table, out.Table)

	type shape struct {
		Column   string
		DataType int16
		TypeName string
		Nullable string
	}
	got := make([]shape, len(out.Rows))
	for i, r := range out.Rows {
		got[i] = shape{r.Column, r.DataType, r.TypeName, r.Nullable}
	}
	assert.Equal(t, []shape{
		{"id", driverbase.XdbcDataTypeBigint, "BIGINT", "YES"},
		{"name", driverbase.XdbcDataTypeWVarChar, "WVARCHAR", "NO"},
		{"code", driverbase.XdbcDataTypeChar, "WCHAR", "NO"},
		{"at", driverbase.XdbcDataTypeTimestamp, "DATETIME", "YES"},
		{"flag", driverbase.XdbcDataTypeTinyint, "TINYINT", "NO"},
		{"ratio", driverbase.XdbcDataTypeDouble, "DOUBLE", "NO"},
	}, got)

	// the input is left alone
	assert.Equal(t, sampleColumnInfo(), in)
}

func TestColumnCorrectorIdempotent(t *testing.T) {
	c := metadata.ColumnCorrector{}
	once := c.Correct(sampleColumnInfo())
	twice := c.Correct(once)
	assert.Equal(t, once, twice)
}

func TestColumnCorrectorEmpty(t *testing.T) {
	out := metadata.ColumnCorrector{}.Correct(metadata.ColumnInfo{Table: "empty"})
	assert.Empty(t, out.Rows)
	assert.Equal(t, "empty", out.Table)
}

func TestColumnCorrectorDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	withLogs := metadata.ColumnCorrector{Logger: logger}.Correct(sampleColumnInfo())
	withoutLogs := metadata.ColumnCorrector{}.Correct(sampleColumnInfo())
	assert.Equal(t, withoutLogs, withLogs)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var types struct {
		Msg       string  `json:"msg"`
		Table     string  `json:"table"`
		DataTypes []int16 `json:"data_types"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &types))
	assert.Equal(t, "column info data types", types.Msg)
	assert.Equal(t, "events", types.Table)
	assert.Equal(t, []int16{-5, -9, 1, 93, -6, 8}, types.DataTypes)

	var nulls struct {
		Msg      string   `json:"msg"`
		Nullable []string `json:"nullable"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &nulls))
	assert.Equal(t, "column info nullability", nulls.Msg)
	assert.Equal(t, []string{"YES", "NO", "NO", "YES", "NO", "NO"}, nulls.Nullable)
}
