package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes invoicing instruments. Every signal is recorded on the
// Prometheus registry scraped from /metrics and on the OTel meter, which
// exports over OTLP when enabled.
type Metrics struct {
	invoicesCreated  metric.Int64Counter
	invoiceTotal     metric.Float64Histogram
	paymentsRecorded metric.Int64Counter
	wordsOverflow    metric.Int64Counter
	rateLimitDenied  metric.Int64Counter

	promInvoicesCreated  *prometheus.CounterVec
	promInvoiceTotal     *prometheus.HistogramVec
	promPaymentsRecorded *prometheus.CounterVec
	promWordsOverflow    prometheus.Counter
	promRateLimitDenied  *prometheus.CounterVec
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New creates the instruments on provider and the default Prometheus
// registry.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	return NewWith(cfg, provider, prometheus.DefaultRegisterer)
}

// NewWith creates the instruments on provider and reg.
func NewWith(cfg Config, provider metric.MeterProvider, reg prometheus.Registerer) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "gstbill"
	}
	meter := provider.Meter(name)

	invoicesCreated, err := meter.Int64Counter("gstbill_invoices_created_total")
	if err != nil {
		return nil, err
	}
	invoiceTotal, err := meter.Float64Histogram("gstbill_invoice_rounded_total",
		metric.WithDescription("Rounded invoice totals in rupees."),
	)
	if err != nil {
		return nil, err
	}
	paymentsRecorded, err := meter.Int64Counter("gstbill_payments_recorded_total")
	if err != nil {
		return nil, err
	}
	wordsOverflow, err := meter.Int64Counter("gstbill_words_overflow_total")
	if err != nil {
		return nil, err
	}
	rateLimitDenied, err := meter.Int64Counter("gstbill_rate_limit_denied_total")
	if err != nil {
		return nil, err
	}

	m := &Metrics{
		invoicesCreated:  invoicesCreated,
		invoiceTotal:     invoiceTotal,
		paymentsRecorded: paymentsRecorded,
		wordsOverflow:    wordsOverflow,
		rateLimitDenied:  rateLimitDenied,

		promInvoicesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gstbill_invoices_created_total",
			Help: "Invoices created by template.",
		}, []string{"template"}),
		promInvoiceTotal: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gstbill_invoice_rounded_total",
			Help:    "Rounded invoice totals in rupees.",
			Buckets: prometheus.ExponentialBuckets(100, 10, 7),
		}, []string{"template"}),
		promPaymentsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gstbill_payments_recorded_total",
			Help: "Payments recorded by resulting invoice status.",
		}, []string{"status"}),
		promWordsOverflow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gstbill_words_overflow_total",
			Help: "Documents rendered without an amount in words.",
		}),
		promRateLimitDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gstbill_rate_limit_denied_total",
			Help: "Requests rejected by a rate limiter.",
		}, []string{"endpoint", "reason"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{
			m.promInvoicesCreated,
			m.promInvoiceTotal,
			m.promPaymentsRecorded,
			m.promWordsOverflow,
			m.promRateLimitDenied,
		} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// RecordInvoiceCreated counts an invoice and observes its rounded total.
func (m *Metrics) RecordInvoiceCreated(ctx context.Context, orgID, template string, roundedTotal float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("template", strings.TrimSpace(template)),
	)...)
	m.invoicesCreated.Add(ctx, 1, attrs)
	m.invoiceTotal.Record(ctx, roundedTotal, attrs)

	m.promInvoicesCreated.WithLabelValues(strings.TrimSpace(template)).Inc()
	m.promInvoiceTotal.WithLabelValues(strings.TrimSpace(template)).Observe(roundedTotal)
}

// RecordPayment counts a payment by resulting invoice status.
func (m *Metrics) RecordPayment(ctx context.Context, orgID, status string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
		attribute.String("status", strings.TrimSpace(status)),
	)...))
	m.promPaymentsRecorded.WithLabelValues(strings.TrimSpace(status)).Inc()
}

// RecordWordsOverflow counts documents rendered without a words line.
func (m *Metrics) RecordWordsOverflow(ctx context.Context, orgID string) {
	if m == nil {
		return
	}
	m.wordsOverflow.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("org_id", strings.TrimSpace(orgID)),
	)...))
	m.promWordsOverflow.Inc()
}

// RecordRateLimitDenied counts requests rejected by a limiter.
func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, reason string) {
	if m == nil {
		return
	}
	m.rateLimitDenied.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("reason", strings.TrimSpace(reason)),
	)...))
	m.promRateLimitDenied.WithLabelValues(strings.TrimSpace(endpoint), strings.TrimSpace(reason)).Inc()
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"org_id":      {},
	"endpoint":    {},
	"status_code": {},
	"status":      {},
	"template":    {},
	"reason":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
