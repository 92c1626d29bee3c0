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
	"strconv"
	"strings"

	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	"github.com/adbc-drivers/clickhouse-bi-go/metadata"
)

// unwrapType strips Nullable(...) and LowCardinality(...) wrappers from a
// ClickHouse type name.
func unwrapType(chType string) (base string, nullable bool) {
	base = strings.TrimSpace(chType)
	for {
		if inner, ok := cutWrapper(base, "Nullable"); ok {
			base, nullable = inner, true
			continue
		}
		if inner, ok := cutWrapper(base, "LowCardinality"); ok {
			base = inner
			continue
		}
		return base, nullable
	}
}

func cutWrapper(s, wrapper string) (string, bool) {
	inner, ok := strings.CutPrefix(s, wrapper+"(")
	if !ok || !strings.HasSuffix(inner, ")") {
		return "", false
	}
	return strings.TrimSpace(inner[:len(inner)-1]), true
}

// typeArgs splits "Decimal(10, 2)" into "Decimal" and ["10", "2"].
func typeArgs(base string) (string, []string) {
	name, rest, ok := strings.Cut(base, "(")
	if !ok || !strings.HasSuffix(rest, ")") {
		return base, nil
	}
	parts := strings.Split(rest[:len(rest)-1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return name, parts
}

func argInt(args []string, i int) (int64, bool) {
	if i >= len(args) {
		return 0, false
	}
	n, err := strconv.ParseInt(args[i], 10, 32)
	return n, err == nil
}

// reportedType is how the ClickHouse driver describes a column type in
// SQLColumns: its own type name and an ODBC 2.x-era code.
type reportedType struct {
	Name          string
	Code          int16
	ColumnSize    *int32
	DecimalDigits *int16
	Radix         *int16
}

func i16p(v int16) *int16 { return &v }
func i32p(v int32) *int32 { return &v }

// reportType maps a ClickHouse type name to what the driver reports.
func reportType(chType string) (r reportedType, nullable bool) {
	base, nullable := unwrapType(chType)
	name, args := typeArgs(base)
	ten := i16p(10)

	switch name {
	case "String":
		r = reportedType{Name: "TEXT", Code: driverbase.XdbcDataTypeLongVarChar, ColumnSize: i32p(1 << 24)}
	case "FixedString":
		r = reportedType{Name: "CHAR", Code: driverbase.XdbcDataTypeChar}
		if n, ok := argInt(args, 0); ok {
			r.ColumnSize = i32p(int32(n))
		}
	case "Enum8", "Enum16":
		r = reportedType{Name: "VARCHAR", Code: driverbase.XdbcDataTypeVarChar}
	case "Date", "Date32":
		r = reportedType{Name: "DATE", Code: driverbase.XdbcDataTypeDate, ColumnSize: i32p(10)}
	case "DateTime":
		r = reportedType{Name: "DATETIME", Code: driverbase.XdbcDataTypeDateTime, ColumnSize: i32p(19)}
	case "DateTime64":
		r = reportedType{Name: "DATETIME", Code: driverbase.XdbcDataTypeDateTime, ColumnSize: i32p(29)}
		if p, ok := argInt(args, 0); ok {
			r.DecimalDigits = i16p(int16(p))
		}
	case "Time", "Time64":
		r = reportedType{Name: "TIME", Code: driverbase.XdbcDataTypeLegacyTime, ColumnSize: i32p(8)}
	case "Int8":
		r = reportedType{Name: "TINYINT", Code: driverbase.XdbcDataTypeTinyint, ColumnSize: i32p(3), Radix: ten}
	case "UInt8":
		r = reportedType{Name: "TINYINT", Code: driverbase.XdbcCTypeUTinyint, ColumnSize: i32p(3), Radix: ten}
	case "Int16":
		r = reportedType{Name: "SMALLINT", Code: driverbase.XdbcDataTypeSmallint, ColumnSize: i32p(5), Radix: ten}
	case "UInt16", "Int32":
		r = reportedType{Name: "INTEGER", Code: driverbase.XdbcDataTypeInteger, ColumnSize: i32p(10), Radix: ten}
	case "UInt32", "Int64":
		r = reportedType{Name: "BIGINT", Code: driverbase.XdbcDataTypeBigint, ColumnSize: i32p(19), Radix: ten}
	case "UInt64":
		r = reportedType{Name: "BIGINT", Code: driverbase.XdbcCTypeUBigint, ColumnSize: i32p(20), Radix: ten}
	case "Float32":
		r = reportedType{Name: "REAL", Code: driverbase.XdbcDataTypeReal, ColumnSize: i32p(7), Radix: i16p(2)}
	case "Float64":
		r = reportedType{Name: "DOUBLE", Code: driverbase.XdbcDataTypeDouble, ColumnSize: i32p(15), Radix: i16p(2)}
	case "Decimal", "Decimal32", "Decimal64", "Decimal128", "Decimal256":
		r = reportedType{Name: "DECIMAL", Code: driverbase.XdbcDataTypeDecimal, Radix: ten}
		precision, scale := decimalSize(name, args)
		r.ColumnSize = i32p(int32(precision))
		r.DecimalDigits = i16p(int16(scale))
	case "Bool":
		r = reportedType{Name: "BIT", Code: driverbase.XdbcDataTypeBit, ColumnSize: i32p(1)}
	case "UUID":
		r = reportedType{Name: "GUID", Code: driverbase.XdbcDataTypeGUID, ColumnSize: i32p(36)}
	default:
		// Int128 and wider, IPv4/6, arrays, maps, tuples, JSON...
		r = reportedType{Name: "VARCHAR", Code: driverbase.XdbcDataTypeVarChar}
	}
	return r, nullable
}

// decimalSize returns the precision and scale of a ClickHouse decimal type.
// Decimal32(S) and friends carry only the scale.
func decimalSize(name string, args []string) (precision, scale int64) {
	switch name {
	case "Decimal32":
		precision = 9
	case "Decimal64":
		precision = 18
	case "Decimal128":
		precision = 38
	case "Decimal256":
		precision = 76
	default:
		precision, _ = argInt(args, 0)
		scale, _ = argInt(args, 1)
		return precision, scale
	}
	scale, _ = argInt(args, 0)
	return precision, scale
}

// reportedNullable is the driver's raw NULLABLE text for a column.  The
// ClickHouse driver reports "0" for Nullable(...) columns, which the
// column-info corrector turns into "YES".
func reportedNullable(nullable bool) string {
	if nullable {
		return "0"
	}
	return "1"
}

// reportedTypeInfo is the SQLGetTypeInfo table the driver reports.  It
// lacks the wide text types and signed/unsigned BIGINT rows the host
// needs; metadata.CorrectTypeInfo adds those.
func reportedTypeInfo() []metadata.TypeInfoRow {
	quote := func() *string { s := "'"; return &s }
	local := func(s string) *string { return &s }
	numeric := func(name string, code int16, size int32, unsigned bool) metadata.TypeInfoRow {
		return metadata.TypeInfoRow{
			TypeName:          name,
			DataType:          code,
			ColumnSize:        i32p(size),
			Nullable:          driverbase.XdbcColumnNullable,
			Searchable:        driverbase.XdbcPredBasic,
			UnsignedAttribute: &unsigned,
			LocalTypeName:     local(name),
			SQLDataType:       code,
			NumPrecRadix:      i32p(10),
		}
	}
	text := func(name string, code int16, size int32) metadata.TypeInfoRow {
		return metadata.TypeInfoRow{
			TypeName:      name,
			DataType:      code,
			ColumnSize:    i32p(size),
			LiteralPrefix: quote(),
			LiteralSuffix: quote(),
			Nullable:      driverbase.XdbcColumnNullable,
			CaseSensitive: true,
			Searchable:    driverbase.XdbcSearchable,
			LocalTypeName: local(name),
			SQLDataType:   code,
		}
	}
	temporal := func(name string, code int16, size int32, sub int16) metadata.TypeInfoRow {
		row := text(name, code, size)
		row.CaseSensitive = false
		row.Searchable = driverbase.XdbcPredBasic
		row.SQLDataType = driverbase.XdbcDataTypeDateTime
		row.SQLDatetimeSub = i16p(sub)
		return row
	}

	return []metadata.TypeInfoRow{
		text("TEXT", driverbase.XdbcDataTypeLongVarChar, 1<<24),
		text("CHAR", driverbase.XdbcDataTypeChar, 255),
		text("VARCHAR", driverbase.XdbcDataTypeVarChar, 255),
		numeric("TINYINT", driverbase.XdbcDataTypeTinyint, 3, false),
		numeric("SMALLINT", driverbase.XdbcDataTypeSmallint, 5, false),
		numeric("INTEGER", driverbase.XdbcDataTypeInteger, 10, false),
		numeric("REAL", driverbase.XdbcDataTypeReal, 7, false),
		numeric("DOUBLE", driverbase.XdbcDataTypeDouble, 15, false),
		numeric("DECIMAL", driverbase.XdbcDataTypeDecimal, 76, false),
		numeric("BIT", driverbase.XdbcDataTypeBit, 1, true),
		temporal("DATE", driverbase.XdbcDataTypeDate, 10, 1),
		temporal("TIME", driverbase.XdbcDataTypeLegacyTime, 8, 2),
		temporal("DATETIME", driverbase.XdbcDataTypeDateTime, 29, 3),
		text("GUID", driverbase.XdbcDataTypeGUID, 36),
	}
}
