package model

import "fmt"

// VehicleAssignment is one slice of a request's demand placed on a single
// vehicle. LeftoverVolume is the vehicle's remaining volume right after the
// slice was reserved.
type VehicleAssignment struct {
	VehicleID      string  `json:"vehicle_id"`
	AssignedVolume float64 `json:"assigned_volume"`
	AssignedWeight float64 `json:"assigned_weight"`
	LeftoverVolume float64 `json:"leftover_volume"`
}

// Assignment records which vehicles were allocated to one restock request
// during a processing pass. It is created exactly once per pass per request
// and never mutated afterwards.
type Assignment struct {
	RequestID           string              `json:"request_id"`
	StoreID             string              `json:"store_id"`
	TotalVolumeNeeded   float64             `json:"total_volume_needed"`
	TotalVolumeAssigned float64             `json:"total_volume_assigned"`
	VehiclesRequired    int                 `json:"vehicles_required"`
	Vehicles            []VehicleAssignment `json:"vehicles_assigned"`
	Status              RequestStatus       `json:"status"`
}

// Validate checks the assignment invariants: the assigned total never exceeds
// the need and always equals the sum over the per-vehicle slices.
func (a Assignment) Validate() error {
	if a.TotalVolumeAssigned > a.TotalVolumeNeeded {
		return fmt.Errorf("assignment %s: assigned %.3f exceeds needed %.3f", a.RequestID, a.TotalVolumeAssigned, a.TotalVolumeNeeded)
	}
	var sum float64
	for _, v := range a.Vehicles {
		sum += v.AssignedVolume
	}
	if sum != a.TotalVolumeAssigned {
		return fmt.Errorf("assignment %s: slice sum %.3f != assigned %.3f", a.RequestID, sum, a.TotalVolumeAssigned)
	}
	return nil
}
