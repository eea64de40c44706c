// Package metrics defines the sink interfaces the allocation manager records
// to. Concrete sinks live under infra/metrics.
package metrics
