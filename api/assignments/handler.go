package assignments

import (
	"encoding/json"
	"net/http"

	"github.com/retailops/fleetalloc/core/alloc"
	"github.com/retailops/fleetalloc/core/model"
)

// NewLatestHandler returns an HTTP handler exposing the assignments of the
// most recent allocation pass via GET /api/assignments/latest. Repeated calls
// between passes return identical payloads.
func NewLatestHandler(m *alloc.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		out := struct {
			Assignments []model.Assignment `json:"assignments"`
		}{Assignments: m.LatestAssignments()}
		if out.Assignments == nil {
			out.Assignments = []model.Assignment{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewProcessHandler triggers one allocation pass via POST /api/assignments/process
// and returns the resulting pass.
func NewProcessHandler(m *alloc.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, err := m.ProcessPendingRequests()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
