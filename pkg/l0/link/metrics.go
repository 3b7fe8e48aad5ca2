package link

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Link statistics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	bytesRead         prometheus.Counter
	bytesWritten      prometheus.Counter
	reports           *prometheus.CounterVec
	handshakes        prometheus.Counter
	transportFailures *prometheus.CounterVec
	reconnects        prometheus.Counter
	subscriberErrors  *prometheus.CounterVec
	connected         prometheus.Gauge
	pending           prometheus.Gauge
}

// MetricsNamespace prefixes all metric names.
const MetricsNamespace = "iolink"

// NewMetrics creates and registers metrics with reg, labeled with the
// transport name.
func NewMetrics(reg prometheus.Registerer, port string) *Metrics {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"port": port}
	return &Metrics{
		bytesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "bytes_read_total",
			Help:        "Total number of bytes read from the transport",
			ConstLabels: labels,
		}),
		bytesWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "bytes_written_total",
			Help:        "Total number of bytes written to the transport",
			ConstLabels: labels,
		}),
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "reports_total",
			Help:        "Total number of inbound report bytes by result",
			ConstLabels: labels,
		}, []string{"result"}),
		handshakes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "handshakes_total",
			Help:        "Total number of handshake markers received",
			ConstLabels: labels,
		}),
		transportFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "transport_failures_total",
			Help:        "Total number of transport read/write failures",
			ConstLabels: labels,
		}, []string{"op"}),
		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "reconnect_attempts_total",
			Help:        "Total number of transport reopen attempts",
			ConstLabels: labels,
		}),
		subscriberErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   MetricsNamespace,
			Name:        "subscriber_errors_total",
			Help:        "Total number of failed event handler invocations",
			ConstLabels: labels,
		}, []string{"event"}),
		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Name:        "connected",
			Help:        "1 if the device completed the handshake",
			ConstLabels: labels,
		}),
		pending: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   MetricsNamespace,
			Name:        "pending_bytes",
			Help:        "Number of bytes waiting in the output queue",
			ConstLabels: labels,
		}),
	}
}

// Report results.
const (
	reportDispatched = "dispatched"
	reportDiscarded  = "discarded"
	reportIgnored    = "ignored"
)

func (m *Metrics) read(n int) {
	if m != nil && n > 0 {
		m.bytesRead.Add(float64(n))
	}
}

func (m *Metrics) written(n int) {
	if m != nil && n > 0 {
		m.bytesWritten.Add(float64(n))
	}
}

func (m *Metrics) report(result string) {
	if m != nil {
		m.reports.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) handshake() {
	if m != nil {
		m.handshakes.Inc()
	}
}

func (m *Metrics) transportFailed(op string) {
	if m != nil {
		m.transportFailures.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) reconnect() {
	if m != nil {
		m.reconnects.Inc()
	}
}

func (m *Metrics) subscriberFailed(event string) {
	if m != nil {
		m.subscriberErrors.WithLabelValues(event).Inc()
	}
}

func (m *Metrics) setConnected(connected bool) {
	if m != nil {
		if connected {
			m.connected.Set(1)
		} else {
			m.connected.Set(0)
		}
	}
}

func (m *Metrics) setPending(n int) {
	if m != nil {
		m.pending.Set(float64(n))
	}
}
