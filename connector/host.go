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

// Package connector is the entry point the BI host calls.  It builds the
// connection descriptor, opens the data source through a Host, and returns
// the navigation catalog, one database, or the result of an ad-hoc query.
package connector

import (
	"context"

	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/adbc-drivers/clickhouse-bi-go/metadata"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Host is the driver host: the component that actually connects to the
// database and runs SQL.
type Host interface {
	// OpenDataSource connects and returns a catalog handle.  The hooks in
	// opts are applied to every type-info and column-info result.
	OpenDataSource(ctx context.Context, desc descriptor.Descriptor, opts OpenOptions) (Catalog, error)
	// RunQuery executes query and returns its result.  The caller releases
	// the reader.
	RunQuery(ctx context.Context, desc descriptor.Descriptor, query string, creds descriptor.Fragment) (array.RecordReader, error)
}

// OpenOptions is the options bundle passed with OpenDataSource.
type OpenOptions struct {
	Credentials descriptor.Fragment
	// Pooling asks the host to pool connections.  The connector itself
	// never pools.
	Pooling                bool
	HierarchicalNavigation bool
	Capabilities           Capabilities
	TypeInfoHook           func([]metadata.TypeInfoRow) []metadata.TypeInfoRow
	ColumnInfoHook         func(metadata.ColumnInfo) metadata.ColumnInfo
}

// Catalog is an open data source.
type Catalog interface {
	// Navigation returns every user database with its tables and columns.
	Navigation(ctx context.Context) ([]*Node, error)
	// Database returns a single database, or nil if it does not exist.
	Database(ctx context.Context, name string) (*Node, error)
	TypeInfo(ctx context.Context) ([]metadata.TypeInfoRow, error)
	// GetInfo answers an SQLGetInfo code.
	GetInfo(code uint16) (uint32, bool)
	Close() error
}

type NodeKind int

const (
	NodeDatabase NodeKind = iota
	NodeTable
	NodeView
)

func (k NodeKind) String() string {
	switch k {
	case NodeDatabase:
		return "Database"
	case NodeTable:
		return "Table"
	case NodeView:
		return "View"
	}
	return "Unknown"
}

// Node is one entry of the navigation tree.  Tables and views carry their
// corrected column info; databases carry children.
type Node struct {
	Name     string
	Kind     NodeKind
	Columns  *metadata.ColumnInfo
	Children []*Node
}

// Child returns the direct child called name.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
