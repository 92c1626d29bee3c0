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
	"fmt"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	"github.com/apache/arrow-adbc/go/adbc"
	"gopkg.in/yaml.v3"
)

// Option keys accepted by ConfigFromOptions.
const (
	OptionKeyDiagnostics  = "clickhouse.bi.diagnostics"
	OptionKeyPooling      = "clickhouse.bi.pooling"
	OptionKeyProtocol     = "clickhouse.bi.protocol"
	OptionKeyLegacyParity = "clickhouse.bi.legacy_error_parity"
	// OptionKeyExtensionPrefix prefixes descriptor extensions, e.g.
	// "clickhouse.bi.ext.ConnectTimeout".
	OptionKeyExtensionPrefix = "clickhouse.bi.ext."
)

const (
	ProtocolNative = "native"
	ProtocolHTTP   = "http"
	ProtocolMySQL  = "mysql"
)

var protocols = []string{ProtocolNative, ProtocolHTTP, ProtocolMySQL}

var traceExporters = []string{
	driverbase.TraceExporterNone,
	driverbase.TraceExporterStdout,
	driverbase.TraceExporterOtlpGrpc,
	driverbase.TraceExporterOtlpHttp,
}

// Config is the deployment configuration of a connector.
type Config struct {
	// Diagnostics enables the column-info debug records.
	Diagnostics bool `yaml:"diagnostics"`
	// Pooling is forwarded to the host; see OpenOptions.
	Pooling bool `yaml:"pooling"`
	// Protocol selects how the host reaches ClickHouse: native, http or
	// mysql.
	Protocol      string `yaml:"protocol"`
	TraceExporter string `yaml:"trace_exporter"`
	// LegacyParity sends every credential-shaped error to
	// encryption-not-supported.
	LegacyParity bool                  `yaml:"legacy_error_parity"`
	Extensions   descriptor.Extensions `yaml:"extensions"`
}

func DefaultConfig() Config {
	return Config{
		Pooling:       true,
		Protocol:      ProtocolNative,
		TraceExporter: driverbase.TraceExporterNone,
	}
}

func (c Config) Validate() error {
	if !slices.Contains(protocols, c.Protocol) {
		return errorHelper.InvalidArgument("invalid protocol %q, expected one of %s", c.Protocol, strings.Join(protocols, ", "))
	}
	if !slices.Contains(traceExporters, c.TraceExporter) {
		return errorHelper.InvalidArgument("invalid trace exporter %q, expected one of %s", c.TraceExporter, strings.Join(traceExporters, ", "))
	}
	return c.Extensions.Validate()
}

// ConfigFromOptions reads an ADBC-style option map on top of DefaultConfig.
func ConfigFromOptions(opts map[string]string) (Config, error) {
	cfg := DefaultConfig()
	for key, value := range opts {
		var err error
		switch key {
		case OptionKeyDiagnostics:
			cfg.Diagnostics, err = parseBool(key, value)
		case OptionKeyPooling:
			cfg.Pooling, err = parseBool(key, value)
		case OptionKeyLegacyParity:
			cfg.LegacyParity, err = parseBool(key, value)
		case OptionKeyProtocol:
			cfg.Protocol = value
		case driverbase.OptionKeyTraceExporter:
			cfg.TraceExporter = value
		default:
			name, ok := strings.CutPrefix(key, OptionKeyExtensionPrefix)
			if !ok || name == "" {
				return Config{}, errorHelper.Errorf(adbc.StatusNotImplemented, "unknown option '%s'", key)
			}
			if cfg.Extensions == nil {
				cfg.Extensions = make(descriptor.Extensions)
			}
			cfg.Extensions[name] = &value
		}
		if err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errorHelper.InvalidArgument("invalid value '%s' for option '%s'", value, key)
	}
	return b, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
// ${VAR} references are expanded from the environment first.
func LoadConfig(path string) (Config, error) {
	// #nosec G304 -- path is supplied by the deployment
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig on an in-memory document.
func ParseConfig(data []byte) (Config, error) {
	expanded := envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		return []byte(os.Getenv(string(match[2 : len(match)-1])))
	})

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.Validate()
}
