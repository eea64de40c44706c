package alloc

import (
	"gonum.org/v1/gonum/stat"

	"github.com/retailops/fleetalloc/core/metrics"
	"github.com/retailops/fleetalloc/core/model"
)

// Utilization summarizes how loaded the fleet is after a pass. The per
// vehicle utilization is consumed capacity over total capacity.
func Utilization(vehicles []model.Vehicle) metrics.FleetUtilization {
	u := metrics.FleetUtilization{Vehicles: len(vehicles)}
	if len(vehicles) == 0 {
		return u
	}
	volume := make([]float64, 0, len(vehicles))
	weight := make([]float64, 0, len(vehicles))
	for _, v := range vehicles {
		volume = append(volume, (v.VolumeCapacity-v.AvailableVolume)/v.VolumeCapacity)
		weight = append(weight, (v.WeightCapacity-v.AvailableWeight)/v.WeightCapacity)
	}
	u.VolumeMean = stat.Mean(volume, nil)
	u.WeightMean = stat.Mean(weight, nil)
	if len(vehicles) > 1 {
		u.VolumeStdDev = stat.StdDev(volume, nil)
		u.WeightStdDev = stat.StdDev(weight, nil)
	}
	return u
}
