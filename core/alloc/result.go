package alloc

import (
	"time"

	"github.com/retailops/fleetalloc/core/metrics"
	"github.com/retailops/fleetalloc/core/model"
)

// PassResult is the outcome of one allocation pass.
type PassResult struct {
	PassID      string                   `json:"pass_id"`
	Timestamp   time.Time                `json:"timestamp"`
	Duration    time.Duration            `json:"duration"`
	Assignments []model.Assignment       `json:"assignments"`
	Unfulfilled []string                 `json:"unfulfilled,omitempty"` // request ids left short of their demand
	Rejected    map[string]string        `json:"rejected,omitempty"`    // request id -> validation error
	Utilization metrics.FleetUtilization `json:"utilization"`
}
