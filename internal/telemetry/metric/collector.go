package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SizeSource reports the number of stored values per live store.
type SizeSource func() map[string]int

// Collector reports store sizes at scrape time.
type Collector struct {
	source SizeSource
	desc   *prometheus.Desc
}

// NewCollector creates a collector reading sizes from source. source must
// be safe to call from the scrape goroutine.
func NewCollector(source SizeSource) *Collector {
	return &Collector{
		source: source,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "values"),
			"Number of values stored per store",
			[]string{"store"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for store, n := range c.source() {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), store)
	}
}
