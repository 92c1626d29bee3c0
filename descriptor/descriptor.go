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

// Package descriptor assembles the non-secret connection descriptor and the
// separate credential fragment handed to the driver host.
package descriptor

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
)

// DriverName identifies the driver the descriptor targets.
const DriverName = "clickhouse"

const (
	KeyDriver   = "Driver"
	KeyURL      = "URL"
	KeyServer   = "Server"
	KeyDatabase = "Database"
	// KeyBigIntAsString makes the driver return 64-bit and wider integers
	// as text, since the host's number type is a float64.
	KeyBigIntAsString = "BigIntAsString"
	// KeyVerifyOnConnect makes the driver round-trip to the server when the
	// data source is opened instead of on first use.
	KeyVerifyOnConnect = "VerifyOnConnect"
	KeySSLMode         = "SSLMode"
)

var reservedKeys = []string{
	KeyDriver, KeyURL, KeyServer, KeyDatabase, KeyBigIntAsString, KeyVerifyOnConnect, KeySSLMode,
}

var errorHelper = driverbase.ErrorHelper{DriverName: DriverName}

// Params are the caller-supplied connection parameters.
type Params struct {
	// Endpoint is required, e.g. `Server="ch.example.com:9440"`.
	Endpoint string
	Database *string
	Query    *string
}

// Descriptor is an immutable mapping of connection keys to string or bool
// values.  With and WithOptional return modified copies.
type Descriptor struct {
	values map[string]any
}

func (d Descriptor) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// String returns the value of key if it is a string.
func (d Descriptor) String(key string) string {
	s, _ := d.values[key].(string)
	return s
}

// Bool returns the value of key if it is a bool.
func (d Descriptor) Bool(key string) bool {
	b, _ := d.values[key].(bool)
	return b
}

func (d Descriptor) Keys() []string {
	return slices.Sorted(maps.Keys(d.values))
}

func (d Descriptor) Len() int {
	return len(d.values)
}

// Map returns a copy of the underlying values.
func (d Descriptor) Map() map[string]any {
	return maps.Clone(d.values)
}

func (d Descriptor) With(key string, value any) Descriptor {
	values := maps.Clone(d.values)
	if values == nil {
		values = make(map[string]any, 1)
	}
	values[key] = value
	return Descriptor{values: values}
}

func (d Descriptor) Server() string   { return d.String(KeyServer) }
func (d Descriptor) TLSMode() TLSMode { return TLSMode(d.String(KeySSLMode)) }

// Database returns the default database, if one was supplied.
func (d Descriptor) Database() (string, bool) {
	db, ok := d.values[KeyDatabase].(string)
	return db, ok
}

func (d Descriptor) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(d.values))
	for _, k := range d.Keys() {
		attrs = append(attrs, slog.Any(k, d.values[k]))
	}
	return slog.GroupValue(attrs...)
}

// WithOptional adds key only when value is non-nil.
func WithOptional[T string | bool](d Descriptor, key string, value *T) Descriptor {
	if value == nil {
		return d
	}
	return d.With(key, *value)
}

// ParseEndpoint extracts the server fragment from an endpoint of the form
// key=value, where value may be quoted.  Only the first '=' separates, and
// the endpoint holds a single pair, so ';' is rejected.
func ParseEndpoint(endpoint string) (string, error) {
	if strings.TrimSpace(endpoint) == "" {
		return "", errorHelper.InvalidArgument("endpoint is required")
	}

	if strings.Contains(endpoint, ";") {
		return "", errorHelper.InvalidArgument("endpoint %q must hold a single key=value pair", endpoint)
	}

	fragment := endpoint
	if _, value, found := strings.Cut(endpoint, "="); found {
		fragment = value
	}
	fragment = strings.TrimSpace(strings.NewReplacer(`"`, "", `'`, "").Replace(fragment))
	if fragment == "" {
		return "", errorHelper.InvalidArgument("endpoint %q does not name a server", endpoint)
	}
	return fragment, nil
}

// Build assembles the descriptor and credential fragment for one call.
// Optional tuning parameters are not merged; see Extensions.
func Build(params Params, cred Credential) (Descriptor, Fragment, error) {
	fragment, err := ResolveCredential(cred)
	if err != nil {
		return Descriptor{}, Fragment{}, err
	}

	server, err := ParseEndpoint(params.Endpoint)
	if err != nil {
		return Descriptor{}, Fragment{}, err
	}
	if params.Query != nil && strings.TrimSpace(*params.Query) == "" {
		return Descriptor{}, Fragment{}, errorHelper.InvalidArgument("query is empty")
	}

	d := Descriptor{values: map[string]any{
		KeyDriver:          DriverName,
		KeyURL:             params.Endpoint,
		KeyServer:          server,
		KeyBigIntAsString:  true,
		KeyVerifyOnConnect: true,
		KeySSLMode:         string(ResolveTLSMode(cred.EncryptConnection)),
	}}
	d = WithOptional(d, KeyDatabase, params.Database)
	return d, fragment, nil
}
