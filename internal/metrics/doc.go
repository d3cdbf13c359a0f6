// Package metrics holds the engine's in-process counters. Counters are
// plain atomics indexed by MetricID, so incrementing on a hot path costs
// one atomic add; exporters read a consistent snapshot instead of the live
// array.
package metrics
