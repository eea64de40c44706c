package metrics

import (
	"time"

	coremetrics "github.com/retailops/fleetalloc/core/metrics"
)

// MultiSink fans allocation records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAllocations forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAllocations(records []coremetrics.AllocationRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAllocations(records); err != nil {
			return err
		}
	}
	return nil
}

// RecordFleetUtilization forwards utilization snapshots to sinks that
// support them.
func (m *MultiSink) RecordFleetUtilization(u coremetrics.FleetUtilization) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.UtilizationRecorder); ok {
			if err := rec.RecordFleetUtilization(u); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPass forwards pass timings to sinks that support them.
func (m *MultiSink) RecordPass(duration time.Duration, requests int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.PassRecorder); ok {
			if err := rec.RecordPass(duration, requests); err != nil {
				return err
			}
		}
	}
	return nil
}
