package actor

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mfcatalog"

// Store write operations, as counted by the writes metric.
const (
	opInsert = "insert"
	opUpdate = "update"
	opDelete = "delete"
)

type metrics struct {
	requests     *prometheus.CounterVec
	writes       *prometheus.CounterVec
	queueDepth   prometheus.Gauge
	cacheEntries prometheus.Gauge
}

// newMetrics creates the actor collectors and registers them with reg when it
// is not nil.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Catalog requests answered, by kind, command and result.",
		}, []string{"kind", "command", "result"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_writes_total",
			Help:      "Rows written to the catalog store, by table and operation.",
		}, []string{"table", "op"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Requests waiting for the catalog actor.",
		}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_entries",
			Help:      "Datasets held in the catalog cache.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.writes, m.queueDepth, m.cacheEntries)
	}
	return m
}

func (m *metrics) request(req Request) {
	base := req.Base()
	m.requests.WithLabelValues(string(req.Kind()), base.Command.String(), base.Result.String()).Inc()
}

func (m *metrics) write(table, op string) {
	m.writes.WithLabelValues(table, op).Inc()
}
