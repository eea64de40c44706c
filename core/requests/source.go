package requests

import (
	"errors"

	"github.com/retailops/fleetalloc/core/model"
)

// ErrUnknownRequest is returned for status updates on requests the source
// has never seen.
var ErrUnknownRequest = errors.New("requests: unknown request")

// Source supplies pending restock requests to the allocation manager and
// records the status transitions it decides. Implementations are expected to
// be safe for concurrent use; how requests are persisted is the producer's
// concern.
type Source interface {
	// Pending returns all requests currently in pending status, ordered by
	// creation time then request id. The allocation ordering policy is applied
	// by the engine, not here.
	Pending() []model.RestockRequest

	// SetStatus transitions a request to the given status.
	SetStatus(requestID string, status model.RequestStatus) error
}
