package config

import (
	"fmt"

	"github.com/retailops/fleetalloc/core/model"
)

// VehicleConfig declares one vehicle of the initial fleet.
type VehicleConfig struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	WeightCapacity float64 `json:"weight_capacity"`
	VolumeCapacity float64 `json:"volume_capacity"`
	Status         string  `json:"status"`
}

// FleetConfig declares the initial fleet.
type FleetConfig struct {
	Vehicles []VehicleConfig `json:"vehicles"`
}

// Validate checks every declared vehicle.
func (c FleetConfig) Validate() error {
	seen := make(map[string]bool, len(c.Vehicles))
	for _, v := range c.Vehicles {
		if seen[v.ID] {
			return fmt.Errorf("duplicate vehicle id %s", v.ID)
		}
		seen[v.ID] = true
		if err := v.Model().Validate(); err != nil {
			return fmt.Errorf("vehicle %s: %w", v.ID, err)
		}
	}
	return nil
}

// Model converts the declaration to a domain vehicle with full capacity
// available.
func (v VehicleConfig) Model() model.Vehicle {
	status := model.VehicleStatus(v.Status)
	if v.Status == "" {
		status = model.VehicleAvailable
	}
	return model.Vehicle{
		ID:              v.ID,
		Type:            v.Type,
		WeightCapacity:  v.WeightCapacity,
		VolumeCapacity:  v.VolumeCapacity,
		AvailableWeight: v.WeightCapacity,
		AvailableVolume: v.VolumeCapacity,
		Status:          status,
	}
}

// Models converts all declarations.
func (c FleetConfig) Models() []model.Vehicle {
	out := make([]model.Vehicle, 0, len(c.Vehicles))
	for _, v := range c.Vehicles {
		out = append(out, v.Model())
	}
	return out
}
