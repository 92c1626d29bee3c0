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
	"crypto/tls"
	"net"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/adbc-drivers/clickhouse-bi-go/sqldriver"
	"github.com/go-sql-driver/mysql"
)

// Descriptor extension keys understood by the factories.
const (
	KeyConnectTimeout = "ConnectTimeout"
	KeyReadTimeout    = "ReadTimeout"
	KeyCompress       = "Compress"
)

// TLSPolicy is what a factory should do about TLS for one attempt.
type TLSPolicy int

const (
	TLSRequired TLSPolicy = iota
	// TLSPreferred lets the factory fall back to plaintext if it can do so
	// natively.  Otherwise the host retries with TLSDisabled.
	TLSPreferred
	TLSDisabled
)

func (p TLSPolicy) String() string {
	switch p {
	case TLSRequired:
		return "required"
	case TLSPreferred:
		return "preferred"
	case TLSDisabled:
		return "disabled"
	}
	return "unknown"
}

func policyFor(mode descriptor.TLSMode) TLSPolicy {
	if mode == descriptor.TLSModePrefer {
		return TLSPreferred
	}
	return TLSRequired
}

// DBRequest is everything a DBFactory needs to open one pool.
type DBRequest struct {
	Descriptor  descriptor.Descriptor
	Credentials descriptor.Fragment
	TLS         TLSPolicy
	Pooling     bool
}

// Database returns the default database, or "default".
func (r DBRequest) Database() string {
	if db, ok := r.Descriptor.Database(); ok && db != "" {
		return db
	}
	return "default"
}

func (r DBRequest) seconds(key string) (time.Duration, bool) {
	v := r.Descriptor.String(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}

func (r DBRequest) tlsConfig() *tls.Config {
	host, _, err := net.SplitHostPort(r.Descriptor.Server())
	if err != nil {
		host = r.Descriptor.Server()
	}
	return &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
}

// DBFactory opens the database/sql pool for a request.  Individual
// protocols implement this; tests substitute a mock.
type DBFactory interface {
	OpenDB(ctx context.Context, req DBRequest) (*sqldriver.DB, error)
}

// ClickHouseDBFactory connects with clickhouse-go over the native or HTTP
// protocol.
type ClickHouseDBFactory struct {
	Protocol clickhouse.Protocol
}

func (f *ClickHouseDBFactory) Options(req DBRequest) *clickhouse.Options {
	opts := &clickhouse.Options{
		Protocol: f.Protocol,
		Addr:     []string{req.Descriptor.Server()},
		Auth: clickhouse.Auth{
			Database: req.Database(),
			Username: req.Credentials.UID,
			Password: req.Credentials.PWD,
		},
	}
	if req.TLS != TLSDisabled {
		opts.TLS = req.tlsConfig()
	}
	if d, ok := req.seconds(KeyConnectTimeout); ok {
		opts.DialTimeout = d
	}
	if d, ok := req.seconds(KeyReadTimeout); ok {
		opts.ReadTimeout = d
	}
	if compress, _ := strconv.ParseBool(req.Descriptor.String(KeyCompress)); compress {
		opts.Compression = &clickhouse.Compression{Method: clickhouse.CompressionLZ4}
	}
	return opts
}

func (f *ClickHouseDBFactory) OpenDB(_ context.Context, req DBRequest) (*sqldriver.DB, error) {
	return sqldriver.New(
		sqldriver.WithConnector(clickhouse.Connector(f.Options(req))),
		sqldriver.WithPooling(req.Pooling),
	)
}

// MySQLDBFactory connects to ClickHouse's MySQL wire protocol interface.
type MySQLDBFactory struct{}

func (f *MySQLDBFactory) Config(req DBRequest) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = req.Descriptor.Server()
	cfg.DBName = req.Database()
	cfg.User = req.Credentials.UID
	cfg.Passwd = req.Credentials.PWD
	cfg.ParseTime = true
	switch req.TLS {
	case TLSRequired:
		cfg.TLS = req.tlsConfig()
	case TLSPreferred:
		cfg.TLSConfig = "preferred"
	}
	if d, ok := req.seconds(KeyConnectTimeout); ok {
		cfg.Timeout = d
	}
	if d, ok := req.seconds(KeyReadTimeout); ok {
		cfg.ReadTimeout = d
	}
	return cfg
}

func (f *MySQLDBFactory) OpenDB(_ context.Context, req DBRequest) (*sqldriver.DB, error) {
	connector, err := mysql.NewConnector(f.Config(req))
	if err != nil {
		return nil, err
	}
	return sqldriver.New(sqldriver.WithConnector(connector), sqldriver.WithPooling(req.Pooling))
}
