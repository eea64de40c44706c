package logging

import (
	"context"
	"time"

	"github.com/retailops/fleetalloc/core/model"
)

// PassRecord is the persisted trace of one allocation pass.
type PassRecord struct {
	PassID      string             `json:"pass_id"`
	Timestamp   time.Time          `json:"timestamp"`
	Requests    int                `json:"requests"`
	Assignments []model.Assignment `json:"assignments"`
	Unfulfilled []string           `json:"unfulfilled,omitempty"`
	Rejected    map[string]string  `json:"rejected,omitempty"`
}

// PassQuery filters persisted pass records.
type PassQuery struct {
	Start     time.Time
	End       time.Time
	StoreID   string
	RequestID string
}

// Matches reports whether the record satisfies the query.
func (q PassQuery) Matches(r PassRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.StoreID == "" && q.RequestID == "" {
		return true
	}
	for _, a := range r.Assignments {
		if q.StoreID != "" && a.StoreID == q.StoreID {
			return true
		}
		if q.RequestID != "" && a.RequestID == q.RequestID {
			return true
		}
	}
	return false
}

// PassStore persists pass records.
type PassStore interface {
	Append(ctx context.Context, rec PassRecord) error
	Query(ctx context.Context, q PassQuery) ([]PassRecord, error)
	Close() error
}
