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

import "github.com/adbc-drivers/clickhouse-bi-go/driverbase"

// TypeInfoCatalogVersion changes whenever InjectedTypeInfo changes.
const TypeInfoCatalogVersion = 1

func str(s string) *string { return &s }
func i16(i int16) *int16   { return &i }
func i32(i int32) *int32   { return &i }
func boolp(b bool) *bool   { return &b }

// InjectedTypeInfo returns the rows CorrectTypeInfo appends: wide text
// types and signed/unsigned 64-bit integers.  Each call returns fresh rows.
func InjectedTypeInfo() []TypeInfoRow {
	return []TypeInfoRow{
		wideText("WCHAR", driverbase.XdbcDataTypeWChar, 255),
		wideText("WVARCHAR", driverbase.XdbcDataTypeWVarChar, 65535),
		wideText("WLONGVARCHAR", driverbase.XdbcDataTypeWLongVarChar, 2147483647),
		bigint("BIGINT", 19, false),
		bigint("BIGINT UNSIGNED", 20, true),
	}
}

func wideText(name string, code int16, size int32) TypeInfoRow {
	return TypeInfoRow{
		TypeName:       name,
		DataType:       code,
		ColumnSize:     i32(size),
		LiteralPrefix:  str("'"),
		LiteralSuffix:  str("'"),
		CreateParams:   str("max length"),
		Nullable:       driverbase.XdbcColumnNullable,
		CaseSensitive:  true,
		Searchable:     driverbase.XdbcSearchable,
		FixedPrecScale: false,
		LocalTypeName:  str(name),
		SQLDataType:    code,
	}
}

func bigint(name string, size int32, unsigned bool) TypeInfoRow {
	return TypeInfoRow{
		TypeName:          name,
		DataType:          driverbase.XdbcDataTypeBigint,
		ColumnSize:        i32(size),
		Nullable:          driverbase.XdbcColumnNullable,
		CaseSensitive:     false,
		Searchable:        driverbase.XdbcPredBasic,
		UnsignedAttribute: boolp(unsigned),
		FixedPrecScale:    false,
		AutoUniqueValue:   boolp(false),
		LocalTypeName:     str(name),
		MinimumScale:      i16(0),
		MaximumScale:      i16(0),
		SQLDataType:       driverbase.XdbcDataTypeBigint,
		NumPrecRadix:      i32(10),
	}
}

// CorrectTypeInfo returns the reported rows followed by InjectedTypeInfo.
// Reported rows are never removed or deduplicated, so applying it to its
// own output appends the injected rows again.
func CorrectTypeInfo(reported []TypeInfoRow) []TypeInfoRow {
	injected := InjectedTypeInfo()
	out := make([]TypeInfoRow, 0, len(reported)+len(injected))
	out = append(out, reported...)
	return append(out, injected...)
}
