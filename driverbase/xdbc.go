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

package driverbase

import "database/sql"

// SQL type codes as reported through SQLGetTypeInfo/SQLColumns.  Codes that
// ODBC and JDBC share use the JDBC-flavoured names; ODBC-only codes follow.
const (
	XdbcDataTypeBigint        int16 = -5
	XdbcDataTypeBinary        int16 = -2
	XdbcDataTypeBit           int16 = -7
	XdbcDataTypeChar          int16 = 1
	XdbcDataTypeDate          int16 = 91
	XdbcDataTypeDecimal       int16 = 3
	XdbcDataTypeDouble        int16 = 8
	XdbcDataTypeFloat         int16 = 6
	XdbcDataTypeInteger       int16 = 4
	XdbcDataTypeLongVarBinary int16 = -4
	XdbcDataTypeLongVarChar   int16 = -1
	XdbcDataTypeNull          int16 = 0
	XdbcDataTypeNumeric       int16 = 2
	XdbcDataTypeReal          int16 = 7
	XdbcDataTypeSmallint      int16 = 5
	XdbcDataTypeTime          int16 = 92
	XdbcDataTypeTimestamp     int16 = 93
	XdbcDataTypeTinyint       int16 = -6
	XdbcDataTypeVarBinary     int16 = -3
	XdbcDataTypeVarChar       int16 = 12
)

// ODBC 2.x and ODBC-only codes.
const (
	// Legacy (ODBC 2.x) date/time codes, still emitted by some drivers.
	XdbcDataTypeDateTime        int16 = 9
	XdbcDataTypeLegacyTime      int16 = 10
	XdbcDataTypeLegacyTimestamp int16 = 11

	XdbcDataTypeWChar        int16 = -8
	XdbcDataTypeWVarChar     int16 = -9
	XdbcDataTypeWLongVarChar int16 = -10
	XdbcDataTypeGUID         int16 = -11

	// C data type codes with the signed/unsigned offsets applied.  Some
	// drivers leak these into the DATA_TYPE column for integer columns.
	XdbcCTypeSBigint  int16 = -25
	XdbcCTypeSTinyint int16 = -26
	XdbcCTypeUBigint  int16 = -27
	XdbcCTypeUTinyint int16 = -28
)

const (
	XdbcColumnNoNulls         int16 = 0
	XdbcColumnNullable        int16 = 1
	XdbcColumnNullableUnknown int16 = 2
)

// Values of the SEARCHABLE column of SQLGetTypeInfo.
const (
	XdbcPredNone   int16 = 0
	XdbcPredChar   int16 = 1
	XdbcPredBasic  int16 = 2
	XdbcSearchable int16 = 3
)

// NullStringToPtr converts a sql.NullString to a *string.
func NullStringToPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func ToPtr[T any](i T) *T {
	return &i
}
