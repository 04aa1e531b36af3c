package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	authdomain "github.com/Apurer/pawmatch/internal/domains/auth/domain"
	"github.com/Apurer/pawmatch/internal/domains/dogs/domain"
	"github.com/Apurer/pawmatch/internal/domains/dogs/ports"
)

const tracerName = "github.com/Apurer/pawmatch/internal/domains/dogs/adapters/observability/catalog"

// Catalog decorates a dogs catalog port with tracing, logging, and metrics.
type Catalog struct {
	inner   ports.Catalog
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics catalogMetrics
}

type Option func(*Catalog)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(c *Catalog) {
		c.tracer = tr
	}
}

// WithMeter injects the meter used to create catalog metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(c *Catalog) {
		c.metrics = newCatalogMetrics(m)
	}
}

// New wires a decorator around the catalog.
func New(inner ports.Catalog, opts ...Option) ports.Catalog {
	c := &Catalog{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newCatalogMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.tracer == nil {
		c.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if c.logger == nil {
		c.logger = defaultLogger()
	}
	return c
}

func (c *Catalog) Search(ctx context.Context, criteria domain.Criteria, cursor string) (*domain.Page, error) {
	ctx, span := c.startSpan(ctx, "Catalog.Search",
		attribute.StringSlice("dogs.breeds", criteria.Breeds),
		attribute.StringSlice("dogs.zip_codes", criteria.ZipCodes),
		attribute.String("dogs.sort", criteria.Sort),
		attribute.Int("dogs.size", criteria.Size),
		attribute.Bool("dogs.paged", cursor != ""),
	)
	defer span.End()

	c.logDebug(ctx, "searching dogs", slog.Any("breeds", criteria.Breeds), slog.String("cursor", cursor))
	page, err := c.inner.Search(ctx, criteria, cursor)
	if err != nil {
		c.metrics.recordFailure(ctx, domain.OpSearch, err)
		return nil, c.handleError(ctx, span, err, "failed to search dogs")
	}
	c.metrics.recordSearch(ctx)
	span.SetAttributes(attribute.Int("dogs.result.count", len(page.ResultIDs)), attribute.Int("dogs.result.total", page.Total))
	c.logInfo(ctx, "searched dogs", slog.Int("count", len(page.ResultIDs)), slog.Int("total", page.Total))
	return page, nil
}

func (c *Catalog) FetchByIDs(ctx context.Context, ids []string) ([]domain.Dog, error) {
	ctx, span := c.startSpan(ctx, "Catalog.FetchByIDs", attribute.Int("dogs.ids.count", len(ids)))
	defer span.End()

	dogs, err := c.inner.FetchByIDs(ctx, ids)
	if err != nil {
		c.metrics.recordFailure(ctx, domain.OpFetch, err)
		return nil, c.handleError(ctx, span, err, "failed to fetch dogs", slog.Int("ids", len(ids)))
	}
	span.SetAttributes(attribute.Int("dogs.result.count", len(dogs)))
	c.logDebug(ctx, "fetched dogs", slog.Int("count", len(dogs)))
	return dogs, nil
}

func (c *Catalog) Match(ctx context.Context, ids []string) (*domain.MatchResult, error) {
	ctx, span := c.startSpan(ctx, "Catalog.Match", attribute.Int("dogs.ids.count", len(ids)))
	defer span.End()

	c.logInfo(ctx, "requesting match", slog.Any("ids", ids))
	result, err := c.inner.Match(ctx, ids)
	if err != nil {
		c.metrics.recordFailure(ctx, domain.OpMatch, err)
		return nil, c.handleError(ctx, span, err, "failed to match dogs", slog.Int("ids", len(ids)))
	}
	c.metrics.recordMatch(ctx)
	span.SetAttributes(attribute.String("dogs.match.id", result.MatchedID))
	c.logInfo(ctx, "matched dog", slog.String("dog.id", result.MatchedID))
	return result, nil
}

func (c *Catalog) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := c.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (c *Catalog) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (c *Catalog) logDebug(ctx context.Context, msg string, attrs ...slog.Attr) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, msg, attrs...)
}

func (c *Catalog) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	level := slog.LevelError
	if errors.Is(err, authdomain.ErrSessionExpired) {
		level = slog.LevelWarn
	}
	if c.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		c.logger.LogAttrs(ctx, level, msg, attrs...)
	}
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type catalogMetrics struct {
	searches metric.Int64Counter
	matches  metric.Int64Counter
	failures metric.Int64Counter
}

func newCatalogMetrics(m metric.Meter) catalogMetrics {
	if m == nil {
		return catalogMetrics{}
	}
	searches, _ := m.Int64Counter("dogs.catalog.searches", metric.WithDescription("Number of successful dog searches"))
	matches, _ := m.Int64Counter("dogs.catalog.matches", metric.WithDescription("Number of matches generated"))
	failures, _ := m.Int64Counter("dogs.catalog.failures", metric.WithDescription("Number of failed catalog calls"))
	return catalogMetrics{searches: searches, matches: matches, failures: failures}
}

func (m catalogMetrics) recordSearch(ctx context.Context) {
	addCounter(ctx, m.searches, 1)
}

func (m catalogMetrics) recordMatch(ctx context.Context) {
	addCounter(ctx, m.matches, 1)
}

func (m catalogMetrics) recordFailure(ctx context.Context, op string, err error) {
	reason := "query"
	if errors.Is(err, authdomain.ErrSessionExpired) {
		reason = "session_expired"
	}
	addCounter(ctx, m.failures, 1, attribute.String("dogs.op", op), attribute.String("reason", reason))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Catalog = (*Catalog)(nil)
