package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/barcode"
	"github.com/mamadbah2/pantry/internal/service/chef"
)

const namespace = "pantry"

// Upstream service labels.
const (
	UpstreamTextGeneration = "text_generation"
	UpstreamProductLookup  = "product_lookup"
)

// Metrics owns a private registry and the collectors the service exports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamCalls    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	items            *prometheus.GaugeVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests served, by route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time spent serving HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		upstreamCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Calls to external services, by outcome.",
			},
			[]string{"service", "outcome"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Latency of calls to external services.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"service"},
		),
		items: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "items",
				Help:      "Pantry items by expiry status at the last sweep.",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.upstreamCalls,
		m.upstreamDuration,
		m.items,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveUpstream records one call to an external service.
func (m *Metrics) ObserveUpstream(service string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.upstreamCalls.WithLabelValues(service, outcome).Inc()
	m.upstreamDuration.WithLabelValues(service).Observe(elapsed.Seconds())
}

// SetItemCounts replaces the per-status item gauge. Missing statuses are reset to zero.
func (m *Metrics) SetItemCounts(counts map[models.ExpiryStatus]int) {
	if m == nil {
		return
	}
	for _, status := range models.Statuses {
		m.items.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}

// InstrumentGenerator wraps a text generator with upstream metrics.
func (m *Metrics) InstrumentGenerator(next chef.TextGenerator) chef.TextGenerator {
	return &instrumentedGenerator{next: next, metrics: m}
}

// InstrumentLookup wraps a product lookup with upstream metrics.
func (m *Metrics) InstrumentLookup(next barcode.ProductLookup) barcode.ProductLookup {
	return &instrumentedLookup{next: next, metrics: m}
}

type instrumentedGenerator struct {
	next    chef.TextGenerator
	metrics *Metrics
}

func (g *instrumentedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := g.next.Generate(ctx, prompt)
	g.metrics.ObserveUpstream(UpstreamTextGeneration, time.Since(start), err)
	return text, err
}

type instrumentedLookup struct {
	next    barcode.ProductLookup
	metrics *Metrics
}

func (l *instrumentedLookup) LookupProduct(ctx context.Context, code string) (barcode.Product, error) {
	start := time.Now()
	product, err := l.next.LookupProduct(ctx, code)
	l.metrics.ObserveUpstream(UpstreamProductLookup, time.Since(start), err)
	return product, err
}
