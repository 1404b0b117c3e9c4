package metric

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/specs-feup/specs-go/pkg/datastore"
)

const namespace = "specs"

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// StoreOps counts store operations by store, op and result.
	StoreOps *prometheus.CounterVec
	// Reloads counts configuration reloads by store and result.
	Reloads *prometheus.CounterVec
	// LastReload is the Unix time of the last successful reload per store.
	LastReload *prometheus.GaugeVec
}

// NewRegistry creates a registry with Go runtime and process collectors
// and the store metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Registry{
		registry: reg,
		StoreOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Store operations by store, operation and result",
		}, []string{"store", "op", "result"}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "reloads_total",
			Help:      "Configuration reloads by store and result",
		}, []string{"store", "result"}),
		LastReload: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "last_reload_timestamp_seconds",
			Help:      "Unix timestamp of the last successful reload",
		}, []string{"store"}),
	}
	reg.MustRegister(r.StoreOps, r.Reloads, r.LastReload)
	return r
}

// Registerer exposes the underlying registry for additional collectors.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the underlying registry for scraping.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveReload records the outcome of a reload of store at unixTime.
func (r *Registry) ObserveReload(store string, unixTime float64, err error) {
	if err != nil {
		r.Reloads.WithLabelValues(store, ResultError).Inc()
		return
	}
	r.Reloads.WithLabelValues(store, ResultOK).Inc()
	r.LastReload.WithLabelValues(store).Set(unixTime)
}

// Observe implements datastore.Observer.
func (r *Registry) Observe(store string, op datastore.Op, _ string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	r.StoreOps.WithLabelValues(store, string(op), result).Inc()
}

var (
	globalOnce sync.Once
	global     *Registry
)

// Global returns the process-wide registry.
func Global() *Registry {
	globalOnce.Do(func() {
		global = NewRegistry()
	})
	return global
}

// Handler returns an HTTP handler serving the process-wide registry.
func Handler() http.Handler {
	return Global().Handler()
}
