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
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/extensions"
	"golang.org/x/exp/constraints"
)

const (
	MetaKeyDatabaseTypeName           = "sql.database_type_name"
	MetaKeyColumnName                 = "sql.column_name"
	MetaKeyPrecision                  = "sql.precision"
	MetaKeyScale                      = "sql.scale"
	MetaKeyFractionalSecondsPrecision = "sql.fractional_seconds_precision"
	MetaKeyLength                     = "sql.length"
	// MetaKeyBigIntAsString marks integer columns delivered as text.
	MetaKeyBigIntAsString = "clickhouse.bigint_as_string"
)

// ColumnType is the subset of *sql.ColumnType the converter reads.
type ColumnType interface {
	Name() string
	DatabaseTypeName() string
	Nullable() (nullable, ok bool)
	DecimalSize() (precision, scale int64, ok bool)
	Length() (length int64, ok bool)
}

// TypeConverter customizes SQL-to-Arrow type and value conversion.
type TypeConverter interface {
	// ConvertColumnType converts a SQL column type to an Arrow type and
	// nullable flag, plus metadata for the Arrow field.
	ConvertColumnType(colType ColumnType) (arrowType arrow.DataType, nullable bool, metadata arrow.Metadata, err error)

	// ConvertSQLToArrow converts a scanned SQL value to the Go value the
	// field's builder expects.  It returns nil for NULL.
	ConvertSQLToArrow(sqlValue any, field *arrow.Field) (any, error)
}

// ClickHouseTypeConverter understands both ClickHouse type names (native
// and HTTP protocols) and the MySQL-style names of the MySQL interface.
type ClickHouseTypeConverter struct {
	// BigIntAsString delivers 64-bit and wider integers as text.
	BigIntAsString bool
	// TimestampUnit is the unit of every timestamp column.
	TimestampUnit arrow.TimeUnit
}

// NewTypeConverter returns a converter for the given number of fractional
// second digits.
func NewTypeConverter(bigIntAsString bool, fractionalSecondsScale int) *ClickHouseTypeConverter {
	return &ClickHouseTypeConverter{
		BigIntAsString: bigIntAsString,
		TimestampUnit:  convertPrecisionToTimeUnit(int64(fractionalSecondsScale)),
	}
}

// convertPrecisionToTimeUnit converts fractional seconds precision to Arrow TimeUnit
// Clamps precision to maximum supported value (9 fractional digits = nanoseconds)
func convertPrecisionToTimeUnit(precision int64) arrow.TimeUnit {
	precision = min(max(precision, 0), 9)
	return arrow.TimeUnit(precision / 3)
}

func (c *ClickHouseTypeConverter) wideInt(signed bool) arrow.DataType {
	if c.BigIntAsString {
		return arrow.BinaryTypes.String
	}
	if signed {
		return arrow.PrimitiveTypes.Int64
	}
	return arrow.PrimitiveTypes.Uint64
}

func (c *ClickHouseTypeConverter) ConvertColumnType(colType ColumnType) (arrow.DataType, bool, arrow.Metadata, error) {
	dbType := colType.DatabaseTypeName()
	base, nullable := unwrapType(dbType)
	if n, ok := colType.Nullable(); ok {
		nullable = nullable || n
	}
	name, args := typeArgs(base)

	md := map[string]string{
		MetaKeyDatabaseTypeName: dbType,
		MetaKeyColumnName:       colType.Name(),
	}
	if length, ok := colType.Length(); ok {
		md[MetaKeyLength] = strconv.FormatInt(length, 10)
	}

	var arrowType arrow.DataType
	switch name {
	case "Int8":
		arrowType = arrow.PrimitiveTypes.Int8
	case "Int16":
		arrowType = arrow.PrimitiveTypes.Int16
	case "Int32":
		arrowType = arrow.PrimitiveTypes.Int32
	case "UInt8":
		arrowType = arrow.PrimitiveTypes.Uint8
	case "UInt16":
		arrowType = arrow.PrimitiveTypes.Uint16
	case "UInt32":
		arrowType = arrow.PrimitiveTypes.Uint32
	case "Int64":
		arrowType = c.wideInt(true)
	case "UInt64":
		arrowType = c.wideInt(false)
	case "Int128", "Int256", "UInt128", "UInt256":
		arrowType = arrow.BinaryTypes.String
	case "Float32":
		arrowType = arrow.PrimitiveTypes.Float32
	case "Float64":
		arrowType = arrow.PrimitiveTypes.Float64
	case "Bool":
		arrowType = arrow.FixedWidthTypes.Boolean
	case "Date", "Date32":
		arrowType = arrow.FixedWidthTypes.Date32
	case "DateTime", "DateTime64":
		arrowType = c.timestamp(name, args, md)
	case "Decimal", "Decimal32", "Decimal64", "Decimal128", "Decimal256":
		precision, scale := decimalSize(name, args)
		return c.decimal(precision, scale, nullable, md)
	case "JSON", "Object":
		jsonType, err := extensions.NewJSONType(arrow.BinaryTypes.String)
		if err != nil {
			return nil, false, arrow.Metadata{}, err
		}
		arrowType = jsonType
	default:
		return c.convertMySQLType(colType, nullable, md)
	}

	if arrowType == arrow.BinaryTypes.String && (name == "Int64" || name == "UInt64") {
		md[MetaKeyBigIntAsString] = "true"
	}
	return arrowType, nullable, arrow.MetadataFrom(md), nil
}

// timestamp builds the timestamp type for DateTime('tz') and
// DateTime64(p, 'tz').
func (c *ClickHouseTypeConverter) timestamp(name string, args []string, md map[string]string) arrow.DataType {
	tzArg := 0
	if name == "DateTime64" {
		md[MetaKeyFractionalSecondsPrecision] = "0"
		if len(args) > 0 {
			md[MetaKeyFractionalSecondsPrecision] = args[0]
		}
		tzArg = 1
	}
	ts := &arrow.TimestampType{Unit: c.TimestampUnit}
	if tzArg < len(args) {
		ts.TimeZone = strings.Trim(args[tzArg], `'"`)
	}
	return ts
}

func (c *ClickHouseTypeConverter) decimal(precision, scale int64, nullable bool, md map[string]string) (arrow.DataType, bool, arrow.Metadata, error) {
	md[MetaKeyPrecision] = strconv.FormatInt(precision, 10)
	md[MetaKeyScale] = strconv.FormatInt(scale, 10)
	arrowType, err := arrow.NarrowestDecimalType(int32(precision), int32(scale))
	if err != nil {
		return nil, false, arrow.Metadata{}, fmt.Errorf("invalid decimal precision/scale (%d, %d): %w", precision, scale, err)
	}
	return arrowType, nullable, arrow.MetadataFrom(md), nil
}

// convertMySQLType handles the names the MySQL interface reports, and
// falls back to string for everything else.
func (c *ClickHouseTypeConverter) convertMySQLType(colType ColumnType, nullable bool, md map[string]string) (arrow.DataType, bool, arrow.Metadata, error) {
	typeName := strings.ToUpper(colType.DatabaseTypeName())

	switch typeName {
	case "DECIMAL", "NUMERIC":
		if precision, scale, ok := colType.DecimalSize(); ok {
			return c.decimal(precision, scale, nullable, md)
		}
	case "DATETIME", "TIMESTAMP":
		if precision, _, ok := colType.DecimalSize(); ok {
			md[MetaKeyFractionalSecondsPrecision] = strconv.FormatInt(precision, 10)
		}
		return &arrow.TimestampType{Unit: c.TimestampUnit}, nullable, arrow.MetadataFrom(md), nil
	case "BIGINT", "UNSIGNED BIGINT", "BIGINT UNSIGNED":
		arrowType := c.wideInt(typeName == "BIGINT")
		if c.BigIntAsString {
			md[MetaKeyBigIntAsString] = "true"
		}
		return arrowType, nullable, arrow.MetadataFrom(md), nil
	}

	arrowType, ok := mysqlTypes[typeName]
	if !ok {
		arrowType = arrow.BinaryTypes.String
	}
	return arrowType, nullable, arrow.MetadataFrom(md), nil
}

var mysqlTypes = map[string]arrow.DataType{
	"TINYINT":            arrow.PrimitiveTypes.Int8,
	"SMALLINT":           arrow.PrimitiveTypes.Int16,
	"MEDIUMINT":          arrow.PrimitiveTypes.Int32,
	"INT":                arrow.PrimitiveTypes.Int32,
	"INTEGER":            arrow.PrimitiveTypes.Int32,
	"UNSIGNED TINYINT":   arrow.PrimitiveTypes.Uint8,
	"TINYINT UNSIGNED":   arrow.PrimitiveTypes.Uint8,
	"UNSIGNED SMALLINT":  arrow.PrimitiveTypes.Uint16,
	"SMALLINT UNSIGNED":  arrow.PrimitiveTypes.Uint16,
	"UNSIGNED MEDIUMINT": arrow.PrimitiveTypes.Uint32,
	"UNSIGNED INT":       arrow.PrimitiveTypes.Uint32,
	"INT UNSIGNED":       arrow.PrimitiveTypes.Uint32,
	"FLOAT":              arrow.PrimitiveTypes.Float32,
	"DOUBLE":             arrow.PrimitiveTypes.Float64,
	"DOUBLE PRECISION":   arrow.PrimitiveTypes.Float64,
	"DATE":               arrow.FixedWidthTypes.Date32,
	"BOOL":               arrow.FixedWidthTypes.Boolean,
	"BOOLEAN":            arrow.FixedWidthTypes.Boolean,
}

// deref follows the pointers clickhouse-go returns for Nullable columns
// and unwraps driver.Valuer.  It returns nil for NULL.
func deref(val any) (any, error) {
	if v, ok := val.(driver.Valuer); ok {
		inner, err := v.Value()
		if err != nil {
			return nil, err
		}
		val = inner
	}
	rv := reflect.ValueOf(val)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, nil
	}
	out := rv.Interface()
	if _, ok := out.(time.Time); ok {
		return out, nil
	}
	// *big.Int only formats through its pointer
	if s, ok := val.(fmt.Stringer); ok && reflect.ValueOf(val).Kind() == reflect.Pointer {
		return s.String(), nil
	}
	return out, nil
}

// number converts any Go integer, float or bool to T.  Text is parsed, as
// the HTTP and MySQL protocols deliver numbers that way.
func number[T constraints.Integer | constraints.Float](val any) (T, error) {
	rv := reflect.ValueOf(val)
	switch {
	case rv.CanInt():
		return T(rv.Int()), nil
	case rv.CanUint():
		return T(rv.Uint()), nil
	case rv.CanFloat():
		return T(rv.Float()), nil
	case rv.Kind() == reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	}

	text := string(toText(val))
	var (
		out T
		err error
	)
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Float32, reflect.Float64:
		var f float64
		f, err = strconv.ParseFloat(text, 64)
		out = T(f)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var u uint64
		u, err = strconv.ParseUint(text, 10, 64)
		out = T(u)
	default:
		var i int64
		i, err = strconv.ParseInt(text, 10, 64)
		out = T(i)
	}
	if err != nil {
		return 0, fmt.Errorf("cannot convert %q to %T: %w", text, out, err)
	}
	return out, nil
}

func toText(val any) []byte {
	switch v := val.(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	default:
		return fmt.Appendf(nil, "%v", val)
	}
}

func toBool(val any) (bool, error) {
	if b, ok := val.(bool); ok {
		return b, nil
	}
	rv := reflect.ValueOf(val)
	if rv.CanInt() {
		return rv.Int() != 0, nil
	}
	if rv.CanUint() {
		return rv.Uint() != 0, nil
	}
	text := string(toText(val))
	b, err := strconv.ParseBool(text)
	if err != nil {
		return false, fmt.Errorf("cannot convert %q to bool: %w", text, err)
	}
	return b, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	time.DateTime,
	time.DateOnly,
}

func toTime(val any) (time.Time, error) {
	switch v := val.(type) {
	case time.Time:
		return v, nil
	case string, []byte:
		text := string(toText(v))
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse %q as a timestamp", text)
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to a timestamp", val)
}

func (c *ClickHouseTypeConverter) ConvertSQLToArrow(sqlValue any, field *arrow.Field) (any, error) {
	val, err := deref(sqlValue)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap value: %w", err)
	}
	if val == nil {
		return nil, nil
	}

	switch field.Type.ID() {
	case arrow.INT8:
		return number[int8](val)
	case arrow.INT16:
		return number[int16](val)
	case arrow.INT32:
		return number[int32](val)
	case arrow.INT64:
		return number[int64](val)
	case arrow.UINT8:
		return number[uint8](val)
	case arrow.UINT16:
		return number[uint16](val)
	case arrow.UINT32:
		return number[uint32](val)
	case arrow.UINT64:
		return number[uint64](val)
	case arrow.FLOAT32:
		return number[float32](val)
	case arrow.FLOAT64:
		return number[float64](val)
	case arrow.BOOL:
		return toBool(val)
	case arrow.DATE32:
		t, err := toTime(val)
		if err != nil {
			return nil, err
		}
		return arrow.Date32FromTime(t), nil
	case arrow.TIMESTAMP:
		return toTime(val)
	case arrow.STRING, arrow.EXTENSION, arrow.DECIMAL32, arrow.DECIMAL64, arrow.DECIMAL128, arrow.DECIMAL256:
		// JSON and decimals are appended from their text form
		return string(toText(val)), nil
	default:
		return val, nil
	}
}

// buildArrowSchemaFromColumnTypes runs every column through the converter.
func buildArrowSchemaFromColumnTypes[C ColumnType](columnTypes []C, converter TypeConverter) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(columnTypes))
	for _, col := range columnTypes {
		typ, nullable, md, err := converter.ConvertColumnType(col)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name(), err)
		}
		fields = append(fields, arrow.Field{Name: col.Name(), Type: typ, Nullable: nullable, Metadata: md})
	}
	return arrow.NewSchema(fields, nil), nil
}
