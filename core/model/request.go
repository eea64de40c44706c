package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRequest marks restock requests that are rejected before entering
// an allocation batch. Invalid requests never mutate fleet state.
var ErrInvalidRequest = errors.New("invalid restock request")

// Priority orders restock requests for allocation. Higher values are served
// first.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

// String returns the wire representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ParsePriority converts the wire representation back to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch s {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	case "critical":
		return PriorityCritical, nil
	default:
		return PriorityLow, fmt.Errorf("unknown priority %q", s)
	}
}

// MarshalJSON encodes the priority as its string form.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes the string form of a priority.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// RequestStatus is the lifecycle state of a restock request.
type RequestStatus string

const (
	StatusPending            RequestStatus = "pending"
	StatusProcessing         RequestStatus = "processing"
	StatusFulfilled          RequestStatus = "fulfilled"
	StatusPartiallyFulfilled RequestStatus = "partially_fulfilled"
	StatusFailed             RequestStatus = "failed"
)

// RestockRequest is a demand for additional stock of one product at one
// store. UnitWeight and UnitVolume are the per-unit footprint looked up from
// product metadata by the request producer.
type RestockRequest struct {
	RequestID         string        `json:"request_id"`
	StoreID           string        `json:"store_id"`
	ProductID         string        `json:"product_id"`
	RequestedQuantity int           `json:"requested_quantity"`
	Priority          Priority      `json:"priority"`
	Status            RequestStatus `json:"status"`
	UnitWeight        float64       `json:"unit_weight"`
	UnitVolume        float64       `json:"unit_volume"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Validate rejects malformed requests: non-positive quantity or an unknown
// product footprint.
func (r RestockRequest) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("%w: request id is required", ErrInvalidRequest)
	}
	if r.StoreID == "" || r.ProductID == "" {
		return fmt.Errorf("%w: %s: store and product ids are required", ErrInvalidRequest, r.RequestID)
	}
	if r.RequestedQuantity <= 0 {
		return fmt.Errorf("%w: %s: quantity must be positive, got %d", ErrInvalidRequest, r.RequestID, r.RequestedQuantity)
	}
	if r.UnitWeight <= 0 || r.UnitVolume <= 0 {
		return fmt.Errorf("%w: %s: unknown product footprint", ErrInvalidRequest, r.RequestID)
	}
	return nil
}

// TotalWeightNeeded returns the full weight demand of the request.
func (r RestockRequest) TotalWeightNeeded() float64 {
	return float64(r.RequestedQuantity) * r.UnitWeight
}

// TotalVolumeNeeded returns the full volume demand of the request.
func (r RestockRequest) TotalVolumeNeeded() float64 {
	return float64(r.RequestedQuantity) * r.UnitVolume
}
