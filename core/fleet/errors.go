package fleet

import (
	"errors"
	"fmt"
)

// ErrVehicleNotFound is returned when an operation references an unknown vehicle.
var ErrVehicleNotFound = errors.New("fleet: vehicle not found")

// CapacityError reports an attempted reservation or release that would push a
// vehicle's remaining capacity outside [0, capacity]. The engine never
// triggers it with correct bookkeeping; any occurrence is an invariant breach
// on the caller's side and must not be retried.
type CapacityError struct {
	VehicleID string
	Dimension string // "weight" or "volume"
	Requested float64
	Available float64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("fleet: vehicle %s: %s reservation of %.3f exceeds available %.3f", e.VehicleID, e.Dimension, e.Requested, e.Available)
}

// IsCapacityError reports whether err is a CapacityError.
func IsCapacityError(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}
