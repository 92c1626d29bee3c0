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
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

var TypeInfoSchema = arrow.NewSchema([]arrow.Field{
	{Name: "type_name", Type: arrow.BinaryTypes.String},
	{Name: "data_type", Type: arrow.PrimitiveTypes.Int16},
	{Name: "column_size", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	{Name: "literal_prefix", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "literal_suffix", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "create_params", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "nullable", Type: arrow.PrimitiveTypes.Int16},
	{Name: "case_sensitive", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "searchable", Type: arrow.PrimitiveTypes.Int16},
	{Name: "unsigned_attribute", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
	{Name: "fixed_prec_scale", Type: arrow.FixedWidthTypes.Boolean},
	{Name: "auto_unique_value", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
	{Name: "local_type_name", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "minimum_scale", Type: arrow.PrimitiveTypes.Int16, Nullable: true},
	{Name: "maximum_scale", Type: arrow.PrimitiveTypes.Int16, Nullable: true},
	{Name: "sql_data_type", Type: arrow.PrimitiveTypes.Int16},
	{Name: "sql_datetime_sub", Type: arrow.PrimitiveTypes.Int16, Nullable: true},
	{Name: "num_prec_radix", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
}, nil)

var ColumnInfoSchema = arrow.NewSchema([]arrow.Field{
	{Name: "table_cat", Type: arrow.BinaryTypes.String},
	{Name: "table_schem", Type: arrow.BinaryTypes.String},
	{Name: "table_name", Type: arrow.BinaryTypes.String},
	{Name: "column_name", Type: arrow.BinaryTypes.String},
	{Name: "data_type", Type: arrow.PrimitiveTypes.Int16},
	{Name: "type_name", Type: arrow.BinaryTypes.String},
	{Name: "column_size", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
	{Name: "decimal_digits", Type: arrow.PrimitiveTypes.Int16, Nullable: true},
	{Name: "num_prec_radix", Type: arrow.PrimitiveTypes.Int16, Nullable: true},
	{Name: "nullable", Type: arrow.BinaryTypes.String},
	{Name: "remarks", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "ordinal_position", Type: arrow.PrimitiveTypes.Int32},
}, nil)

type appender[T any] interface {
	Append(T)
	AppendNull()
}

func appendPtr[T any](b appender[T], v *T) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}

// TypeInfoRecord renders type-info rows as a single record batch with
// TypeInfoSchema.  The caller owns the returned record.
func TypeInfoRecord(mem memory.Allocator, rows []TypeInfoRow) arrow.Record {
	bldr := array.NewRecordBuilder(mem, TypeInfoSchema)
	defer bldr.Release()
	bldr.Reserve(len(rows))

	for _, row := range rows {
		bldr.Field(0).(*array.StringBuilder).Append(row.TypeName)
		bldr.Field(1).(*array.Int16Builder).Append(row.DataType)
		appendPtr[int32](bldr.Field(2).(*array.Int32Builder), row.ColumnSize)
		appendPtr[string](bldr.Field(3).(*array.StringBuilder), row.LiteralPrefix)
		appendPtr[string](bldr.Field(4).(*array.StringBuilder), row.LiteralSuffix)
		appendPtr[string](bldr.Field(5).(*array.StringBuilder), row.CreateParams)
		bldr.Field(6).(*array.Int16Builder).Append(row.Nullable)
		bldr.Field(7).(*array.BooleanBuilder).Append(row.CaseSensitive)
		bldr.Field(8).(*array.Int16Builder).Append(row.Searchable)
		appendPtr[bool](bldr.Field(9).(*array.BooleanBuilder), row.UnsignedAttribute)
		bldr.Field(10).(*array.BooleanBuilder).Append(row.FixedPrecScale)
		appendPtr[bool](bldr.Field(11).(*array.BooleanBuilder), row.AutoUniqueValue)
		appendPtr[string](bldr.Field(12).(*array.StringBuilder), row.LocalTypeName)
		appendPtr[int16](bldr.Field(13).(*array.Int16Builder), row.MinimumScale)
		appendPtr[int16](bldr.Field(14).(*array.Int16Builder), row.MaximumScale)
		bldr.Field(15).(*array.Int16Builder).Append(row.SQLDataType)
		appendPtr[int16](bldr.Field(16).(*array.Int16Builder), row.SQLDatetimeSub)
		appendPtr[int32](bldr.Field(17).(*array.Int32Builder), row.NumPrecRadix)
	}
	return bldr.NewRecord()
}

// ColumnInfoRecord renders a table's column metadata as a single record
// batch with ColumnInfoSchema.  The caller owns the returned record.
func ColumnInfoRecord(mem memory.Allocator, info ColumnInfo) arrow.Record {
	bldr := array.NewRecordBuilder(mem, ColumnInfoSchema)
	defer bldr.Release()
	bldr.Reserve(len(info.Rows))

	for _, row := range info.Rows {
		bldr.Field(0).(*array.StringBuilder).Append(row.Catalog)
		bldr.Field(1).(*array.StringBuilder).Append(row.Schema)
		bldr.Field(2).(*array.StringBuilder).Append(row.Table)
		bldr.Field(3).(*array.StringBuilder).Append(row.Column)
		bldr.Field(4).(*array.Int16Builder).Append(row.DataType)
		bldr.Field(5).(*array.StringBuilder).Append(row.TypeName)
		appendPtr[int32](bldr.Field(6).(*array.Int32Builder), row.ColumnSize)
		appendPtr[int16](bldr.Field(7).(*array.Int16Builder), row.DecimalDigits)
		appendPtr[int16](bldr.Field(8).(*array.Int16Builder), row.NumPrecRadix)
		bldr.Field(9).(*array.StringBuilder).Append(row.Nullable)
		appendPtr[string](bldr.Field(10).(*array.StringBuilder), row.Remarks)
		bldr.Field(11).(*array.Int32Builder).Append(row.OrdinalPosition)
	}
	return bldr.NewRecord()
}
