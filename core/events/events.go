package events

import (
	"time"

	"github.com/retailops/fleetalloc/core/model"
)

// AssignmentEvent is emitted once per processed request when a pass
// completes.
type AssignmentEvent struct {
	PassID     string           `json:"pass_id"`
	StoreID    string           `json:"store_id"`
	Assignment model.Assignment `json:"assignment"`
	Time       time.Time        `json:"timestamp"`
}

// RequestStatusEvent is the companion event emitted whenever a request's
// status changes, so inventory bookkeeping can react.
type RequestStatusEvent struct {
	RequestID string              `json:"request_id"`
	StoreID   string              `json:"store_id"`
	Status    model.RequestStatus `json:"status"`
	Reason    string              `json:"reason,omitempty"`
	Time      time.Time           `json:"timestamp"`
}

// PassEvent signals that an allocation pass ran.
type PassEvent struct {
	PassID   string        `json:"pass_id"`
	Requests int           `json:"requests"`
	Duration time.Duration `json:"duration"`
}
