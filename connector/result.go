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

package connector

import (
	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/adbc-drivers/clickhouse-bi-go/metadata"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// State is a step of a Contents call.
type State int

const (
	StateOpening State = iota
	StateFullCatalog
	StateScopedDatabase
	StateAdHocQuery
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateOpening:
		return "OPENING"
	case StateFullCatalog:
		return "FULL_CATALOG"
	case StateScopedDatabase:
		return "SCOPED_DATABASE"
	case StateAdHocQuery:
		return "AD_HOC_QUERY"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Route picks the result shape from the supplied parameters.  A query
// always wins over a database.
func Route(params descriptor.Params) State {
	switch {
	case params.Query != nil:
		return StateAdHocQuery
	case params.Database != nil:
		return StateScopedDatabase
	default:
		return StateFullCatalog
	}
}

// Result is what Contents returns.  Exactly one of Navigation, Database
// and Table is set, according to Kind.
type Result struct {
	Kind State

	Navigation []*Node
	Database   *Node
	// Table is owned by the caller; see Release.
	Table array.RecordReader

	// TypeInfo is the corrected type-info table of the data source.  It is
	// empty for ad-hoc queries.
	TypeInfo []metadata.TypeInfoRow
}

// TypeInfoRecord renders TypeInfo as Arrow.  The caller releases it.
func (r *Result) TypeInfoRecord(mem memory.Allocator) arrow.Record {
	return metadata.TypeInfoRecord(mem, r.TypeInfo)
}

// Release frees the query result, if any.
func (r *Result) Release() {
	if r.Table != nil {
		r.Table.Release()
		r.Table = nil
	}
}
