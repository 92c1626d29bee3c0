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

// Package testutil has assertions shared by the connector's tests.
package testutil

import (
	"bytes"
	"io"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// CheckedClose validates that a deferred Close call did not fail.
// See: https://github.com/stretchr/testify/issues/1067
func CheckedClose(t *testing.T, obj io.Closer) {
	if err := obj.Close(); err != nil {
		t.Errorf("Failed to close object of type %T: %s", obj, err)
	}
}

// RecordFromJSON is the same as array.RecordFromJSON, but fails the test on error.
func RecordFromJSON(t *testing.T, mem memory.Allocator, schema *arrow.Schema, json string) arrow.RecordBatch {
	record, _, err := array.RecordFromJSON(mem, schema, bytes.NewReader([]byte(json)))
	if err != nil {
		t.Fatalf("failed to create record from JSON: %v", err)
	}
	return record
}

// Concat drains rdr and returns its rows as one record, so results can be
// compared without regard to batch boundaries.  It also returns the number
// of batches read.  The caller releases the record.
func Concat(t *testing.T, mem memory.Allocator, rdr array.RecordReader) (arrow.RecordBatch, int) {
	schema := rdr.Schema()
	columns := make([][]arrow.Array, schema.NumFields())
	var rows int64
	batches := 0
	for rdr.Next() {
		rec := rdr.Record()
		for i := range columns {
			col := rec.Column(i)
			col.Retain()
			columns[i] = append(columns[i], col)
		}
		rows += rec.NumRows()
		batches++
	}
	if err := rdr.Err(); err != nil {
		t.Fatalf("failed to read batches: %v", err)
	}

	merged := make([]arrow.Array, len(columns))
	for i, chunks := range columns {
		if len(chunks) == 0 {
			merged[i] = array.MakeArrayOfNull(mem, schema.Field(i).Type, 0)
			continue
		}
		arr, err := array.Concatenate(chunks, mem)
		for _, chunk := range chunks {
			chunk.Release()
		}
		if err != nil {
			t.Fatalf("failed to concatenate column %d: %v", i, err)
		}
		merged[i] = arr
	}
	defer func() {
		for _, arr := range merged {
			arr.Release()
		}
	}()
	return array.NewRecord(schema, merged, rows), batches
}
