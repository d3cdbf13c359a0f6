// Package prometheus exposes the engine's counters as a
// prometheus.Collector. Collect reads a snapshot, so scrapes never contend
// with engine hot paths.
package prometheus
