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
	"log/slog"
	"time"

	"github.com/apache/arrow-adbc/go/adbc"
)

// LoggingConn wraps a pooled connection so every round trip leaves a debug
// record tagged with Purpose ("catalog", "query").  Query text is only
// logged in builds with the assert tag.
type LoggingConn struct {
	Conn    *sql.Conn
	Logger  *slog.Logger
	Purpose string
}

func (lc *LoggingConn) QueryContext(ctx context.Context, query string, args ...any) (*LoggingRows, error) {
	if lc.Conn == nil {
		return nil, adbc.Error{Code: adbc.StatusInvalidState, Msg: "query on a closed connection"}
	}
	start := time.Now()
	rows, err := lc.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		attrs := append([]any{slog.String("purpose", lc.Purpose), slog.Any("err", err)}, queryAttrs(query, args)...)
		lc.Logger.DebugContext(ctx, "query failed", attrs...)
		return nil, err
	}
	lc.Logger.DebugContext(ctx, "query started", append([]any{slog.String("purpose", lc.Purpose)}, queryAttrs(query, args)...)...)
	return &LoggingRows{Rows: rows, Logger: lc.Logger, purpose: lc.Purpose, start: start}, nil
}

func (lc *LoggingConn) Close() error {
	if lc.Conn == nil {
		return nil
	}
	err := lc.Conn.Close()
	lc.Conn = nil
	return err
}

// LoggingRows counts scanned rows and logs a summary when closed.
type LoggingRows struct {
	Rows   *sql.Rows
	Logger *slog.Logger

	purpose string
	start   time.Time
	scanned int
}

func (lr *LoggingRows) Close() error {
	if lr.Rows == nil {
		return nil
	}
	err := lr.Rows.Close()
	lr.Rows = nil
	lr.Logger.Debug("query finished",
		slog.String("purpose", lr.purpose),
		slog.Int("rows", lr.scanned),
		slog.Duration("elapsed", time.Since(lr.start)),
		slog.Any("err", err))
	return err
}

func (lr *LoggingRows) ColumnTypes() ([]*sql.ColumnType, error) {
	if lr.Rows == nil {
		return nil, adbc.Error{Code: adbc.StatusInvalidState, Msg: "column types of closed rows"}
	}
	return lr.Rows.ColumnTypes()
}

func (lr *LoggingRows) Err() error {
	if lr.Rows == nil {
		return nil
	}
	return lr.Rows.Err()
}

func (lr *LoggingRows) Next() bool {
	return lr.Rows != nil && lr.Rows.Next()
}

func (lr *LoggingRows) Scan(dest ...any) error {
	if lr.Rows == nil {
		return adbc.Error{Code: adbc.StatusInvalidState, Msg: "scan of closed rows"}
	}
	if err := lr.Rows.Scan(dest...); err != nil {
		lr.Logger.Debug("scan failed", slog.String("purpose", lr.purpose), slog.Int("row", lr.scanned), slog.Any("err", err))
		return err
	}
	lr.scanned++
	return nil
}
