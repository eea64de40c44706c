package model

import "fmt"

// VehicleStatus describes whether a vehicle can take on deliveries.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleInUse       VehicleStatus = "in_use"
	VehicleMaintenance VehicleStatus = "maintenance"
)

// Vehicle represents a delivery vehicle with finite weight and volume capacity.
// AvailableWeight and AvailableVolume track the remaining capacity; they are
// decremented by allocation and restored by the trip-complete workflow.
type Vehicle struct {
	ID              string        `json:"vehicle_id"`
	Type            string        `json:"type"` // category tag, e.g. "van" or "truck"
	WeightCapacity  float64       `json:"weight_capacity"`
	VolumeCapacity  float64       `json:"volume_capacity"`
	AvailableWeight float64       `json:"available_weight_capacity"`
	AvailableVolume float64       `json:"available_volume_capacity"`
	Status          VehicleStatus `json:"status"`
}

// Validate checks that the vehicle configuration is sound: capacities must be
// positive and the remaining capacity must lie within [0, capacity].
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if v.WeightCapacity <= 0 || v.VolumeCapacity <= 0 {
		return fmt.Errorf("vehicle %s: capacities must be positive", v.ID)
	}
	if v.AvailableWeight < 0 || v.AvailableWeight > v.WeightCapacity {
		return fmt.Errorf("vehicle %s: available weight %.3f outside [0, %.3f]", v.ID, v.AvailableWeight, v.WeightCapacity)
	}
	if v.AvailableVolume < 0 || v.AvailableVolume > v.VolumeCapacity {
		return fmt.Errorf("vehicle %s: available volume %.3f outside [0, %.3f]", v.ID, v.AvailableVolume, v.VolumeCapacity)
	}
	switch v.Status {
	case VehicleAvailable, VehicleInUse, VehicleMaintenance:
	default:
		return fmt.Errorf("vehicle %s: unknown status %q", v.ID, v.Status)
	}
	return nil
}

// HasSpareCapacity returns true if the vehicle is available for selection and
// has both spare volume and spare weight.
func (v Vehicle) HasSpareCapacity() bool {
	return v.Status == VehicleAvailable && v.AvailableVolume > 0 && v.AvailableWeight > 0
}
