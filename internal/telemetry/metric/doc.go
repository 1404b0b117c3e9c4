// Package metric exposes Prometheus metrics for store operations.
//
//   - prometheus.go: the metric registry, the store observer and the HTTP handler
//   - collector.go: a collector reporting the size of live stores
//
// Metrics are served at /metrics by `specs-opt store watch`.
package metric
