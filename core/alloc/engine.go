package alloc

import (
	"fmt"
	"math"

	"github.com/retailops/fleetalloc/core/fleet"
	"github.com/retailops/fleetalloc/core/logger"
	"github.com/retailops/fleetalloc/core/model"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// Engine is the allocation core. The ordering and ranking policies are
// injected so they can be swapped without touching the allocation loop.
type Engine struct {
	orderer RequestOrderer
	ranker  CandidateRanker
	log     logger.Logger
}

// NewEngine creates an engine. Nil policies default to PriorityFIFO and
// LargestAvailableFirst; a nil logger disables engine logging.
func NewEngine(orderer RequestOrderer, ranker CandidateRanker, log logger.Logger) *Engine {
	if orderer == nil {
		orderer = PriorityFIFO{}
	}
	if ranker == nil {
		ranker = LargestAvailableFirst{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Engine{orderer: orderer, ranker: ranker, log: log}
}

// Process allocates fleet capacity to the pending requests and returns one
// assignment per request, in processing order. The registry is mutated in
// place, so later requests in the batch see the capacity consumed by earlier
// ones.
//
// All requests are validated before any fleet mutation; a malformed request
// fails the whole call with the fleet untouched. A request that cannot be
// assigned any capacity is not an error: it is reported with a failed status
// and processing continues. A capacity violation from the registry aborts
// the batch, since it signals corrupted bookkeeping.
func (e *Engine) Process(pending []model.RestockRequest, reg *fleet.Registry) ([]model.Assignment, error) {
	for _, r := range pending {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	// Snapshot the largest candidate at pass start; vehicles_required is
	// quoted against the best vehicle class, not the shrinking pool.
	var maxVolume float64
	for _, v := range reg.Available() {
		if v.AvailableVolume > maxVolume {
			maxVolume = v.AvailableVolume
		}
	}

	ordered := e.orderer.Order(pending)
	assignments := make([]model.Assignment, 0, len(ordered))
	for _, req := range ordered {
		a, err := e.allocate(req, reg, maxVolume)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func (e *Engine) allocate(req model.RestockRequest, reg *fleet.Registry, maxVolume float64) (model.Assignment, error) {
	needed := req.TotalVolumeNeeded()
	weightPerVolume := req.UnitWeight / req.UnitVolume

	asn := model.Assignment{
		RequestID:         req.RequestID,
		StoreID:           req.StoreID,
		TotalVolumeNeeded: needed,
		VehiclesRequired:  vehiclesRequired(needed, maxVolume),
	}

	remaining := needed
	for _, cand := range e.ranker.Rank(reg.Available()) {
		if remaining <= 0 {
			break
		}
		take := remaining
		if cand.AvailableVolume < take {
			take = cand.AvailableVolume
		}
		if byWeight := cand.AvailableWeight / weightPerVolume; byWeight < take {
			take = byWeight
		}
		if take <= 0 {
			continue
		}
		weight := take * weightPerVolume
		if weight > cand.AvailableWeight {
			// float rounding from the division above
			weight = cand.AvailableWeight
		}
		if err := reg.Reserve(cand.ID, weight, take); err != nil {
			return model.Assignment{}, fmt.Errorf("alloc: reserving %s for request %s: %w", cand.ID, req.RequestID, err)
		}
		after, _ := reg.Get(cand.ID)
		asn.Vehicles = append(asn.Vehicles, model.VehicleAssignment{
			VehicleID:      cand.ID,
			AssignedVolume: take,
			AssignedWeight: weight,
			LeftoverVolume: after.AvailableVolume,
		})
		asn.TotalVolumeAssigned += take
		remaining -= take
	}

	switch {
	case remaining <= 0:
		asn.Status = model.StatusFulfilled
	case asn.TotalVolumeAssigned > 0:
		asn.Status = model.StatusPartiallyFulfilled
	default:
		asn.Status = model.StatusFailed
	}

	e.log.Debugw("request allocated", map[string]any{
		"request_id":      req.RequestID,
		"store_id":        req.StoreID,
		"priority":        req.Priority.String(),
		"status":          asn.Status,
		"volume_needed":   needed,
		"volume_assigned": asn.TotalVolumeAssigned,
		"vehicles_used":   len(asn.Vehicles),
	})
	return asn, nil
}

// vehiclesRequired estimates how many vehicles of the largest available
// class the demand would need. Zero when the fleet has no spare capacity.
func vehiclesRequired(needed, maxVolume float64) int {
	if maxVolume <= 0 {
		return 0
	}
	return int(math.Ceil(needed / maxVolume))
}
