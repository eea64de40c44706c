package alloc

import (
	"sort"

	"github.com/retailops/fleetalloc/core/model"
)

// RequestOrderer decides the order in which pending requests consume fleet
// capacity within one pass. Earlier requests see a fuller fleet.
type RequestOrderer interface {
	Order(reqs []model.RestockRequest) []model.RestockRequest
}

// CandidateRanker ranks the candidate vehicles for a single request. The
// engine walks the ranked list front to back while demand remains.
type CandidateRanker interface {
	Rank(vehicles []model.Vehicle) []model.Vehicle
}

// PriorityFIFO orders requests by priority (critical first) and, within equal
// priority, by creation time ascending. Request id breaks exact timestamp
// collisions so the ordering is total.
type PriorityFIFO struct{}

func (PriorityFIFO) Order(reqs []model.RestockRequest) []model.RestockRequest {
	out := append([]model.RestockRequest(nil), reqs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].RequestID < out[j].RequestID
	})
	return out
}

// LargestAvailableFirst ranks vehicles by descending available volume, which
// minimizes the number of vehicles touched per request. Vehicle id ascending
// breaks capacity ties.
type LargestAvailableFirst struct{}

func (LargestAvailableFirst) Rank(vehicles []model.Vehicle) []model.Vehicle {
	out := append([]model.Vehicle(nil), vehicles...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvailableVolume != out[j].AvailableVolume {
			return out[i].AvailableVolume > out[j].AvailableVolume
		}
		return out[i].ID < out[j].ID
	})
	return out
}
