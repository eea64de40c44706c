package fleet

import (
	"encoding/json"
	"net/http"

	corefleet "github.com/retailops/fleetalloc/core/fleet"
	"github.com/retailops/fleetalloc/core/model"
)

// NewVehiclesHandler returns an HTTP handler exposing the fleet via
// GET /api/fleet/vehicles. The optional status query parameter filters by
// vehicle status.
func NewVehiclesHandler(reg *corefleet.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		vehicles := reg.List()
		if status := r.URL.Query().Get("status"); status != "" {
			filtered := make([]model.Vehicle, 0, len(vehicles))
			for _, v := range vehicles {
				if v.Status == model.VehicleStatus(status) {
					filtered = append(filtered, v)
				}
			}
			vehicles = filtered
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(vehicles); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
