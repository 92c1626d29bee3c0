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
	"fmt"

	"github.com/adbc-drivers/clickhouse-bi-go/driverbase/arrowext"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DefaultBatchSize is the number of rows per record batch.
const DefaultBatchSize = 64 * 1024

// Inserter appends converted values to one column builder.
type Inserter func(val any) error

// newInserter binds a builder once so rows don't switch on its type.
func newInserter(builder array.Builder) Inserter {
	switch b := builder.(type) {
	case *array.Int8Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Int16Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Int32Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Int64Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Uint8Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Uint16Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Uint32Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Uint64Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Float32Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Float64Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.BooleanBuilder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.StringBuilder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.Date32Builder:
		return typedInserter(b.Append, b.AppendNull)
	case *array.TimestampBuilder:
		return typedInserter(b.AppendTime, b.AppendNull)
	default:
		return func(val any) error {
			if val == nil {
				builder.AppendNull()
				return nil
			}
			s, ok := val.(string)
			if !ok {
				s = fmt.Sprint(val)
			}
			return builder.AppendValueFromString(s)
		}
	}
}

func typedInserter[T any](appendFn func(T), appendNull func()) Inserter {
	return func(val any) error {
		if val == nil {
			appendNull()
			return nil
		}
		v, ok := val.(T)
		if !ok {
			var zero T
			return fmt.Errorf("expected %T, got %T", zero, val)
		}
		appendFn(v)
		return nil
	}
}

// scanner is the part of *LoggingRows the materializer reads.
type scanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// readAll drains rows into record batches of up to batchSize rows and
// returns a reader over them.  rows stays open; the caller closes it.
func readAll(mem memory.Allocator, rows scanner, schema *arrow.Schema, converter TypeConverter, batchSize int) (array.RecordReader, error) {
	if schema.NumFields() == 0 {
		return arrowext.EmptyReader{}, nil
	}

	bldr := array.NewRecordBuilder(mem, schema)
	defer bldr.Release()

	inserters := make([]Inserter, schema.NumFields())
	for i := range inserters {
		inserters[i] = newInserter(bldr.Field(i))
	}

	values := make([]any, schema.NumFields())
	valuePtrs := make([]any, len(values))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	var batches []arrow.Record
	release := func() {
		for _, rec := range batches {
			rec.Release()
		}
	}

	pending := 0
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			release()
			return nil, err
		}
		for i := range values {
			field := schema.Field(i)
			val, err := converter.ConvertSQLToArrow(values[i], &field)
			if err == nil {
				err = inserters[i](val)
			}
			if err != nil {
				release()
				return nil, fmt.Errorf("failed to append value to column %q: %w", field.Name, err)
			}
		}
		if pending++; pending == batchSize {
			batches = append(batches, bldr.NewRecord())
			pending = 0
		}
	}
	if err := rows.Err(); err != nil {
		release()
		return nil, err
	}
	if pending > 0 || len(batches) == 0 {
		batches = append(batches, bldr.NewRecord())
	}

	defer release()
	return array.NewRecordReader(schema, batches)
}
