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
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/adbc-drivers/clickhouse-bi-go/connector"
	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	"github.com/adbc-drivers/clickhouse-bi-go/metadata"
	"github.com/adbc-drivers/clickhouse-bi-go/sqldriver"
)

// chq builds catalog queries with ? placeholders, which both clickhouse-go
// and the MySQL driver bind.
var chq = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// systemDatabases are never shown in navigation.
var systemDatabases = []string{"system", "INFORMATION_SCHEMA", "information_schema"}

var viewEngines = map[string]bool{
	"View":             true,
	"MaterializedView": true,
	"LiveView":         true,
	"WindowView":       true,
}

// catalog implements connector.Catalog on one database/sql pool.
type catalog struct {
	host *Host
	db   *driverbase.Shared[sqldriver.DB]
	opts connector.OpenOptions
}

func newCatalog(host *Host, db *sqldriver.DB, opts connector.OpenOptions) *catalog {
	return &catalog{
		host: host,
		db:   driverbase.NewShared("catalog pool", db, db),
		opts: opts,
	}
}

// query runs one catalog query and calls scan for every row.
func (c *catalog) query(ctx context.Context, qb sq.Sqlizer, scan func(rows *LoggingRows) error) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return c.host.errorHelper.Internal("failed to build catalog query: %v", err)
	}

	return c.db.Run(func(db *sqldriver.DB) (err error) {
		sqlConn, err := db.Conn(ctx)
		if err != nil {
			return c.host.errorHelper.WrapIO(err, "failed to acquire database connection")
		}
		conn := &LoggingConn{Conn: sqlConn, Logger: c.host.logger, Purpose: "catalog"}
		defer func() {
			err = errors.Join(err, conn.Close())
		}()

		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return c.host.errorHelper.WrapIO(err, "catalog query failed")
		}
		defer func() {
			err = errors.Join(err, rows.Close())
		}()

		for rows.Next() {
			if err := scan(rows); err != nil {
				return c.host.errorHelper.WrapIO(err, "failed to read catalog row")
			}
		}
		return c.host.errorHelper.WrapIO(rows.Err(), "catalog query failed")
	})
}

func (c *catalog) databaseNames(ctx context.Context, only *string) ([]string, error) {
	qb := chq.Select("name").
		From("system.databases").
		Where(sq.NotEq{"name": systemDatabases}).
		OrderBy("name")
	if only != nil {
		qb = qb.Where(sq.Eq{"name": *only})
	}

	var names []string
	err := c.query(ctx, qb, func(rows *LoggingRows) error {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		names = append(names, name)
		return nil
	})
	return names, err
}

func (c *catalog) tables(ctx context.Context, database string) ([]*connector.Node, error) {
	qb := chq.Select("name", "engine").
		From("system.tables").
		Where(sq.Eq{"database": database, "is_temporary": 0}).
		OrderBy("name")

	var tables []*connector.Node
	err := c.query(ctx, qb, func(rows *LoggingRows) error {
		var name, engine string
		if err := rows.Scan(&name, &engine); err != nil {
			return err
		}
		kind := connector.NodeTable
		if viewEngines[engine] {
			kind = connector.NodeView
		}
		tables = append(tables, &connector.Node{Name: name, Kind: kind})
		return nil
	})
	return tables, err
}

// columns returns the driver-reported column rows of every table in
// database, keyed by table.
func (c *catalog) columns(ctx context.Context, database string) (map[string][]metadata.ColumnInfoRow, error) {
	qb := chq.Select("table", "name", "type", "position", "comment").
		From("system.columns").
		Where(sq.Eq{"database": database}).
		OrderBy("table", "position")

	columns := make(map[string][]metadata.ColumnInfoRow)
	err := c.query(ctx, qb, func(rows *LoggingRows) error {
		var (
			table, name, chType string
			position             int64
			comment              sql.NullString
		)
		if err := rows.Scan(&table, &name, &chType, &position, &comment); err != nil {
			return err
		}
		reported, nullable := reportType(chType)
		row := metadata.ColumnInfoRow{
			Catalog:         database,
			Table:           table,
			Column:          name,
			DataType:        reported.Code,
			TypeName:        reported.Name,
			ColumnSize:      reported.ColumnSize,
			DecimalDigits:   reported.DecimalDigits,
			NumPrecRadix:    reported.Radix,
			Nullable:        reportedNullable(nullable),
			OrdinalPosition: int32(position),
		}
		// an empty comment means none
		comment.Valid = comment.Valid && comment.String != ""
		row.Remarks = driverbase.NullStringToPtr(comment)
		columns[table] = append(columns[table], row)
		return nil
	})
	return columns, err
}

func (c *catalog) database(ctx context.Context, name string) (*connector.Node, error) {
	tables, err := c.tables(ctx, name)
	if err != nil {
		return nil, err
	}
	columns, err := c.columns(ctx, name)
	if err != nil {
		return nil, err
	}

	for _, table := range tables {
		info := metadata.ColumnInfo{Catalog: name, Table: table.Name, Rows: columns[table.Name]}
		if c.opts.ColumnInfoHook != nil {
			info = c.opts.ColumnInfoHook(info)
		}
		table.Columns = &info
	}
	return &connector.Node{Name: name, Kind: connector.NodeDatabase, Children: tables}, nil
}

func (c *catalog) Navigation(ctx context.Context) ([]*connector.Node, error) {
	names, err := c.databaseNames(ctx, nil)
	if err != nil {
		return nil, err
	}
	nodes := make([]*connector.Node, 0, len(names))
	for _, name := range names {
		node, err := c.database(ctx, name)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (c *catalog) Database(ctx context.Context, name string) (*connector.Node, error) {
	names, err := c.databaseNames(ctx, &name)
	if err != nil || len(names) == 0 {
		return nil, err
	}
	return c.database(ctx, name)
}

func (c *catalog) TypeInfo(context.Context) ([]metadata.TypeInfoRow, error) {
	rows := reportedTypeInfo()
	if c.opts.TypeInfoHook != nil {
		rows = c.opts.TypeInfoHook(rows)
	}
	return rows, nil
}

func (c *catalog) GetInfo(code uint16) (uint32, bool) {
	return c.opts.Capabilities.Info(code)
}

func (c *catalog) Close() error {
	return c.db.Close()
}
