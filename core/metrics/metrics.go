package metrics

import (
	"time"

	"github.com/retailops/fleetalloc/core/model"
)

// AllocationRecord represents one processed request to be recorded.
type AllocationRecord struct {
	PassID         string
	RequestID      string
	StoreID        string
	Status         model.RequestStatus
	VolumeNeeded   float64
	VolumeAssigned float64
	VehiclesUsed   int
	Time           time.Time
}

// Sink records allocation results for observability purposes.
type Sink interface {
	RecordAllocations(records []AllocationRecord) error
}

// FleetUtilization is a per-pass snapshot of how loaded the fleet is.
// Fractions are consumed/capacity per vehicle, aggregated across the fleet.
type FleetUtilization struct {
	Vehicles     int     `json:"vehicles"`
	VolumeMean   float64 `json:"volume_mean"`
	VolumeStdDev float64 `json:"volume_stddev"`
	WeightMean   float64 `json:"weight_mean"`
	WeightStdDev float64 `json:"weight_stddev"`
}

// UtilizationRecorder is implemented by sinks able to record fleet
// utilization snapshots.
type UtilizationRecorder interface {
	RecordFleetUtilization(u FleetUtilization) error
}

// PassRecorder is implemented by sinks able to record pass durations.
type PassRecorder interface {
	RecordPass(duration time.Duration, requests int) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAllocations([]AllocationRecord) error    { return nil }
func (NopSink) RecordFleetUtilization(FleetUtilization) error { return nil }
func (NopSink) RecordPass(time.Duration, int) error           { return nil }
