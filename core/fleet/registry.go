package fleet

import (
	"sort"
	"sync"

	"github.com/retailops/fleetalloc/core/model"
)

// Registry holds the current capacity state of the vehicle fleet. It is the
// single owned resource that allocation passes mutate; callers serialize
// passes against one registry, the registry itself only defends per-vehicle
// invariants.
type Registry struct {
	mu   sync.RWMutex
	data map[string]model.Vehicle
}

// NewRegistry creates a registry seeded with the given vehicles.
func NewRegistry(vehicles ...model.Vehicle) (*Registry, error) {
	r := &Registry{data: make(map[string]model.Vehicle, len(vehicles))}
	for _, v := range vehicles {
		if err := r.Add(v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers or replaces a vehicle after validating it.
func (r *Registry) Add(v model.Vehicle) error {
	if err := v.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.data[v.ID] = v
	r.mu.Unlock()
	return nil
}

// Get returns the vehicle with the given id.
func (r *Registry) Get(id string) (model.Vehicle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.data[id]
	return v, ok
}

// List returns all vehicles sorted by id.
func (r *Registry) List() []model.Vehicle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]model.Vehicle, 0, len(r.data))
	for _, v := range r.data {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Available returns the vehicles eligible for allocation: status available
// with spare volume and spare weight, sorted by id.
func (r *Registry) Available() []model.Vehicle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]model.Vehicle, 0, len(r.data))
	for _, v := range r.data {
		if v.HasSpareCapacity() {
			res = append(res, v)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Reserve decrements the vehicle's available weight and volume. It rejects
// over-reservation with a CapacityError instead of clamping.
func (r *Registry) Reserve(id string, weight, volume float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[id]
	if !ok {
		return ErrVehicleNotFound
	}
	if weight < 0 || volume < 0 {
		return &CapacityError{VehicleID: id, Dimension: "volume", Requested: volume, Available: v.AvailableVolume}
	}
	if volume > v.AvailableVolume {
		return &CapacityError{VehicleID: id, Dimension: "volume", Requested: volume, Available: v.AvailableVolume}
	}
	if weight > v.AvailableWeight {
		return &CapacityError{VehicleID: id, Dimension: "weight", Requested: weight, Available: v.AvailableWeight}
	}
	v.AvailableWeight -= weight
	v.AvailableVolume -= volume
	r.data[id] = v
	return nil
}

// Release restores capacity consumed by a completed trip. Restoring beyond
// the vehicle's total capacity is rejected the same way over-reservation is.
func (r *Registry) Release(id string, weight, volume float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[id]
	if !ok {
		return ErrVehicleNotFound
	}
	if weight < 0 || volume < 0 {
		return &CapacityError{VehicleID: id, Dimension: "volume", Requested: volume, Available: v.AvailableVolume}
	}
	if v.AvailableVolume+volume > v.VolumeCapacity {
		return &CapacityError{VehicleID: id, Dimension: "volume", Requested: volume, Available: v.VolumeCapacity - v.AvailableVolume}
	}
	if v.AvailableWeight+weight > v.WeightCapacity {
		return &CapacityError{VehicleID: id, Dimension: "weight", Requested: weight, Available: v.WeightCapacity - v.AvailableWeight}
	}
	v.AvailableWeight += weight
	v.AvailableVolume += volume
	r.data[id] = v
	return nil
}

// SetStatus updates a vehicle's status. Vehicles that leave the available
// state keep their capacity counters but stop being candidates.
func (r *Registry) SetStatus(id string, status model.VehicleStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[id]
	if !ok {
		return ErrVehicleNotFound
	}
	v.Status = status
	if err := v.Validate(); err != nil {
		return err
	}
	r.data[id] = v
	return nil
}

// Clone returns an independent copy of the registry. Used to snapshot fleet
// state for dry runs and determinism checks.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := &Registry{data: make(map[string]model.Vehicle, len(r.data))}
	for id, v := range r.data {
		cp.data[id] = v
	}
	return cp
}
