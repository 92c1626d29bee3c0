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

package sqldriver

import (
	"database/sql/driver"
	"time"
)

// Option configures New.
type Option func(*config)

type config struct {
	connector   driver.Connector
	driverName  string
	dsn         string
	pooling     bool
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

// WithConnector opens the pool from a driver.Connector.  It takes
// precedence over WithDriverName/WithDSN.
func WithConnector(connector driver.Connector) Option {
	return func(c *config) { c.connector = connector }
}

// WithDriverName sets the name the driver registered with database/sql.
func WithDriverName(name string) Option {
	return func(c *config) { c.driverName = name }
}

// WithDSN sets the connection string.
func WithDSN(dsn string) Option {
	return func(c *config) { c.dsn = dsn }
}

// WithPooling disables idle connection reuse when false.
func WithPooling(enabled bool) Option {
	return func(c *config) { c.pooling = enabled }
}

// WithMaxOpenConns tunes the open-connections pool.
func WithMaxOpenConns(n int) Option {
	return func(c *config) { c.maxOpen = n }
}

// WithMaxIdleConns tunes the idle-connections pool.
func WithMaxIdleConns(n int) Option {
	return func(c *config) { c.maxIdle = n }
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(c *config) { c.maxLifetime = d }
}
