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

// Package metadata corrects the type and column metadata the driver reports
// before the host sees it.
//
// The driver reports Unicode text as narrow types, leaks unsigned C type
// codes for integers, and uses ODBC 2.x date/time codes.  The host's
// reporting layer mishandles all three, so the tables here patch them up.
package metadata

// TypeInfoRow describes one SQL type, in the shape of SQLGetTypeInfo.
type TypeInfoRow struct {
	TypeName          string
	DataType          int16
	ColumnSize        *int32
	LiteralPrefix     *string
	LiteralSuffix     *string
	CreateParams      *string
	Nullable          int16
	CaseSensitive     bool
	Searchable        int16
	UnsignedAttribute *bool
	FixedPrecScale    bool
	AutoUniqueValue   *bool
	LocalTypeName     *string
	MinimumScale      *int16
	MaximumScale      *int16
	SQLDataType       int16
	SQLDatetimeSub    *int16
	NumPrecRadix      *int32
}

// ColumnInfoRow describes one column, in the shape of SQLColumns.
type ColumnInfoRow struct {
	Catalog       string
	Schema        string
	Table         string
	Column        string
	DataType      int16
	TypeName      string
	ColumnSize    *int32
	DecimalDigits *int16
	NumPrecRadix  *int16
	// Nullable is the driver's NULLABLE value as text until corrected,
	// then "YES" or "NO".
	Nullable        string
	Remarks         *string
	OrdinalPosition int32
}

// ColumnInfo is the column metadata for one table: the filters the driver
// was called with plus the rows it returned.
type ColumnInfo struct {
	Catalog string
	Schema  string
	Table   string
	Column  string
	Rows    []ColumnInfoRow
}
