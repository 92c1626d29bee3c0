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

// Package sqldriver opens database/sql pools with the connector's pooling
// policy applied.
package sqldriver

import (
	"database/sql"
	"errors"
	"time"
)

type DB struct{ *sql.DB }

func New(opts ...Option) (*DB, error) {
	// defaults
	cfg := &config{pooling: true, maxOpen: 10, maxIdle: 5, maxLifetime: 30 * time.Minute}
	for _, o := range opts {
		o(cfg)
	}

	var db *sql.DB
	switch {
	case cfg.connector != nil:
		db = sql.OpenDB(cfg.connector)
	case cfg.driverName != "":
		var err error
		if db, err = sql.Open(cfg.driverName, cfg.dsn); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("sqldriver: no connector or driver name")
	}

	if !cfg.pooling {
		cfg.maxIdle = 0
	}
	db.SetMaxOpenConns(cfg.maxOpen)
	db.SetMaxIdleConns(cfg.maxIdle)
	db.SetConnMaxLifetime(cfg.maxLifetime)
	return &DB{db}, nil
}

// Close closes the pool.  A nil DB is already closed.
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}
