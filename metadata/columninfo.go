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

package metadata

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
)

const (
	NullableYes = "YES"
	NullableNo  = "NO"
)

// dataTypeCorrections maps driver-reported DATA_TYPE codes to the codes the
// host expects.  No value is also a key with a different value, so the
// mapping is a fixed point on its own output.
var dataTypeCorrections = map[int16]int16{
	driverbase.XdbcDataTypeDateTime:        driverbase.XdbcDataTypeTimestamp,
	driverbase.XdbcDataTypeLegacyTime:      driverbase.XdbcDataTypeTime,
	driverbase.XdbcDataTypeLegacyTimestamp: driverbase.XdbcDataTypeTimestamp,
	driverbase.XdbcCTypeUTinyint:           driverbase.XdbcDataTypeTinyint,
	driverbase.XdbcCTypeUBigint:            driverbase.XdbcDataTypeBigint,
	driverbase.XdbcDataTypeLongVarChar:     driverbase.XdbcDataTypeWVarChar, // TEXT
	driverbase.XdbcDataTypeGUID:            driverbase.XdbcDataTypeGUID,
}

var typeNameCorrections = map[string]string{
	"TEXT": "WVARCHAR",
	"CHAR": "WCHAR",
}

// CorrectDataType remaps a DATA_TYPE code; unknown codes pass through.
func CorrectDataType(code int16) int16 {
	if corrected, ok := dataTypeCorrections[code]; ok {
		return corrected
	}
	return code
}

// CorrectTypeName remaps a TYPE_NAME; unknown names pass through.
func CorrectTypeName(name string) string {
	if corrected, ok := typeNameCorrections[name]; ok {
		return corrected
	}
	return name
}

// NormalizeNullable turns the driver's numeric NULLABLE text into YES/NO:
// a value that reads back as "0" is YES, anything else is NO.  YES and NO
// are already normalized and returned as-is.
func NormalizeNullable(value string) string {
	switch value {
	case NullableYes, NullableNo:
		return value
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err == nil && strconv.FormatInt(n, 10) == "0" {
		return NullableYes
	}
	return NullableNo
}

// ColumnCorrector rewrites DATA_TYPE, TYPE_NAME and NULLABLE on every row
// of a table's column metadata.
type ColumnCorrector struct {
	// Logger receives the corrected type codes and nullability values at
	// debug level.  Nil disables the diagnostics.
	Logger *slog.Logger
}

// Correct returns a corrected copy of info with the same rows in the same
// order.
func (c ColumnCorrector) Correct(info ColumnInfo) ColumnInfo {
	out := info
	out.Rows = make([]ColumnInfoRow, len(info.Rows))

	dataTypes := make([]int16, len(info.Rows))
	nullability := make([]string, len(info.Rows))
	for i, row := range info.Rows {
		row.DataType = CorrectDataType(row.DataType)
		row.TypeName = CorrectTypeName(row.TypeName)
		row.Nullable = NormalizeNullable(row.Nullable)
		out.Rows[i] = row

		dataTypes[i] = row.DataType
		nullability[i] = row.Nullable
	}

	if c.Logger != nil {
		c.Logger.Debug("column info data types",
			slog.String("table", info.Table), slog.Any("data_types", dataTypes))
		c.Logger.Debug("column info nullability",
			slog.String("table", info.Table), slog.Any("nullable", nullability))
	}
	return out
}
