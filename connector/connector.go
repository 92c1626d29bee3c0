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
	"context"
	"errors"
	"log/slog"

	"github.com/adbc-drivers/clickhouse-bi-go/classify"
	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	"github.com/adbc-drivers/clickhouse-bi-go/metadata"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/adbc-drivers/clickhouse-bi-go/connector"

var errorHelper = driverbase.ErrorHelper{DriverName: descriptor.DriverName}

// Connector dispatches Contents calls to a Host.  It holds only
// configuration, so one Connector may serve concurrent calls.
type Connector struct {
	host        Host
	logger      *slog.Logger
	tracer      trace.Tracer
	caps        Capabilities
	classifier  *classify.Classifier
	diagnostics bool
	pooling     bool
	extensions  descriptor.Extensions

	// set by WithConfig, applied to the classifier once every option ran
	legacyParity *bool
}

type Option func(*Connector)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) { c.logger = logger }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Connector) { c.tracer = tp.Tracer(tracerName) }
}

func WithCapabilities(caps Capabilities) Option {
	return func(c *Connector) { c.caps = caps.Clone() }
}

func WithClassifier(classifier *classify.Classifier) Option {
	return func(c *Connector) { c.classifier = classifier }
}

// WithDiagnostics turns the column-info debug records on or off.
func WithDiagnostics(enabled bool) Option {
	return func(c *Connector) { c.diagnostics = enabled }
}

func WithPooling(enabled bool) Option {
	return func(c *Connector) { c.pooling = enabled }
}

// WithExtensions merges deployment options into every descriptor.
func WithExtensions(ext descriptor.Extensions) Option {
	return func(c *Connector) { c.extensions = ext }
}

// WithConfig applies the connector-level settings of cfg.
func WithConfig(cfg Config) Option {
	return func(c *Connector) {
		c.diagnostics = cfg.Diagnostics
		c.pooling = cfg.Pooling
		c.extensions = cfg.Extensions
		c.legacyParity = &cfg.LegacyParity
	}
}

// New returns a Connector over host.
func New(host Host, opts ...Option) *Connector {
	c := &Connector{
		host:       host,
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.GetTracerProvider().Tracer(tracerName),
		caps:       DefaultCapabilities(),
		classifier: classify.New(),
		pooling:    true,
	}
	for _, o := range opts {
		o(c)
	}
	if c.classifier == nil {
		c.classifier = classify.New()
	}
	if c.legacyParity != nil {
		classifier := *c.classifier
		classifier.LegacyParity = *c.legacyParity
		c.classifier = &classifier
	}
	return c
}

func (c *Connector) Capabilities() Capabilities {
	return c.caps.Clone()
}

func (c *Connector) openOptions(creds descriptor.Fragment) OpenOptions {
	corrector := metadata.ColumnCorrector{}
	if c.diagnostics {
		corrector.Logger = c.logger
	}
	return OpenOptions{
		Credentials:            creds,
		Pooling:                c.pooling,
		HierarchicalNavigation: true,
		Capabilities:           c.caps.Clone(),
		TypeInfoHook:           metadata.CorrectTypeInfo,
		ColumnInfoHook:         corrector.Correct,
	}
}

// Contents is the connector's entry point.  Depending on params it returns
// the full catalog, one database, or the result of an ad-hoc query.  Every
// failure is classified once before it is returned.
func (c *Connector) Contents(ctx context.Context, creds CredentialSource, params descriptor.Params) (result *Result, err error) {
	ctx, span := c.tracer.Start(ctx, "clickhouse.Contents")
	defer span.End()

	state := StateOpening
	var desc descriptor.Descriptor
	defer func() {
		if err != nil {
			err = c.classifier.Classify(err, desc.TLSMode())
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("clickhouse.failed_in", state.String()))
			c.logger.ErrorContext(ctx, "contents failed",
				slog.String("state", state.String()), slog.Any("error", err))
			result = nil
			state = StateFailed
		} else {
			state = StateDone
		}
		span.SetAttributes(attribute.String("clickhouse.final_state", state.String()))
	}()

	cred, err := creds.Current(ctx)
	if err != nil {
		return nil, err
	}
	desc, frag, err := descriptor.Build(params, cred)
	if err != nil {
		return nil, err
	}
	if desc, err = c.extensions.Apply(desc); err != nil {
		return nil, err
	}

	state = Route(params)
	span.SetAttributes(
		attribute.String("clickhouse.state", state.String()),
		attribute.String("clickhouse.server", desc.Server()),
		attribute.String("clickhouse.tls_mode", string(desc.TLSMode())),
	)
	c.logger.DebugContext(ctx, "contents", slog.String("state", state.String()),
		slog.Any("descriptor", desc), slog.Any("credentials", frag))

	if state == StateAdHocQuery {
		reader, err := c.host.RunQuery(ctx, desc, *params.Query, frag)
		if err != nil {
			return nil, err
		}
		return &Result{Kind: state, Table: reader}, nil
	}

	catalog, err := c.host.OpenDataSource(ctx, desc, c.openOptions(frag))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, catalog.Close())
	}()

	return c.browse(ctx, catalog, state, params)
}

func (c *Connector) browse(ctx context.Context, catalog Catalog, state State, params descriptor.Params) (*Result, error) {
	typeInfo, err := catalog.TypeInfo(ctx)
	if err != nil {
		return nil, err
	}
	result := &Result{Kind: state, TypeInfo: typeInfo}

	if state == StateFullCatalog {
		if result.Navigation, err = catalog.Navigation(ctx); err != nil {
			return nil, err
		}
		return result, nil
	}

	name := *params.Database
	if result.Database, err = catalog.Database(ctx, name); err != nil {
		return nil, err
	}
	if result.Database == nil {
		return nil, errorHelper.NotFound("database %q does not exist", name)
	}
	return result, nil
}
