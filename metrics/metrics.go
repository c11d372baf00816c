package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/hentesoposszum/toldi/engine"
)

// meterName identifies the instrumentation scope of this package's
// instruments.
const meterName = "github.com/hentesoposszum/toldi/metrics"

// DefaultDurationBuckets are histogram boundaries for request duration in
// seconds, covering sub-millisecond to 10 second responses.
var DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Recorder owns the metric instruments for an engine and the Prometheus
// registry they are exported through. Create one with NewRecorder, attach
// it to an engine with Attach, and expose Handler on a scrape endpoint.
type Recorder struct {
	registry *promclient.Registry
	provider *sdkmetric.MeterProvider
	handler  http.Handler

	requests metric.Int64Counter
	duration metric.Float64Histogram
	inflight metric.Int64UpDownCounter
	errors   metric.Int64Counter

	// baseAttrs is set once in NewRecorder and read-only afterwards.
	baseAttrs []attribute.KeyValue
}

// config collects NewRecorder options before the provider is built.
type config struct {
	serviceName     string
	durationBuckets []float64
}

// Option configures a Recorder.
type Option func(*config)

// WithServiceName sets the service_name attribute recorded on every
// instrument. Defaults to "toldi".
func WithServiceName(name string) Option {
	return func(c *config) {
		c.serviceName = name
	}
}

// WithDurationBuckets overrides the request duration histogram boundaries.
func WithDurationBuckets(buckets []float64) Option {
	return func(c *config) {
		c.durationBuckets = buckets
	}
}

// NewRecorder builds a Recorder backed by an isolated Prometheus registry,
// so multiple recorders (and tests) never collide on the global one.
func NewRecorder(opts ...Option) (*Recorder, error) {
	cfg := config{
		serviceName:     "toldi",
		durationBuckets: DefaultDurationBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "http_request_duration_seconds"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: cfg.durationBuckets,
				},
			},
		)),
	)

	meter := provider.Meter(meterName)

	r := &Recorder{
		registry: registry,
		provider: provider,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if r.requests, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of dispatched HTTP requests"),
	); err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}

	if r.duration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	if r.inflight, err = meter.Int64UpDownCounter(
		"http_requests_in_flight",
		metric.WithDescription("Number of requests currently in the pipeline"),
	); err != nil {
		return nil, fmt.Errorf("create in-flight counter: %w", err)
	}

	if r.errors, err = meter.Int64Counter(
		"http_pipeline_errors_total",
		metric.WithDescription("Total number of internal pipeline errors"),
	); err != nil {
		return nil, fmt.Errorf("create error counter: %w", err)
	}

	r.baseAttrs = []attribute.KeyValue{attribute.String("service_name", cfg.serviceName)}

	return r, nil
}

// Attach subscribes the recorder to the engine's request lifecycle
// notifications. Setup phase only.
func (r *Recorder) Attach(e *engine.Engine) {
	e.OnRequest(func(c *engine.Context) {
		r.inflight.Add(c.Request().Context(), 1, metric.WithAttributes(r.baseAttrs...))
	})

	e.OnFinished(func(c *engine.Context) {
		ctx := c.Request().Context()

		r.inflight.Add(ctx, -1, metric.WithAttributes(r.baseAttrs...))

		attrs := r.requestAttrs(c)
		r.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
		r.duration.Record(ctx, time.Since(c.Started()).Seconds(), metric.WithAttributes(attrs...))
	})

	e.OnError(func(c *engine.Context, _ error) {
		r.errors.Add(c.Request().Context(), 1, metric.WithAttributes(r.baseAttrs...))
	})
}

// requestAttrs builds the per-request attribute set. The matched route
// pattern keeps cardinality bounded; unmatched requests share one value.
func (r *Recorder) requestAttrs(c *engine.Context) []attribute.KeyValue {
	route := c.RoutePath()
	if route == "" {
		route = "unmatched"
	}

	attrs := make([]attribute.KeyValue, 0, len(r.baseAttrs)+3)
	attrs = append(attrs, r.baseAttrs...)
	attrs = append(attrs,
		attribute.String("http_method", c.Method()),
		attribute.String("http_route", route),
		attribute.String("http_status", strconv.Itoa(c.StatusCode())),
	)

	return attrs
}

// Handler returns the HTTP handler serving the Prometheus scrape endpoint
// for this recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return r.handler
}

// Shutdown flushes and stops the underlying meter provider.
func (r *Recorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}
