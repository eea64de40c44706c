package requests

import (
	"sort"
	"sync"

	"github.com/retailops/fleetalloc/core/model"
)

// MemorySource is an in-memory Source implementation fed by the MQTT
// subscription or by tests.
type MemorySource struct {
	mu   sync.RWMutex
	data map[string]model.RestockRequest
}

// NewMemorySource creates an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{data: map[string]model.RestockRequest{}}
}

// Add validates the request and queues it as pending. Malformed requests are
// rejected here, before they can ever enter a batch.
func (s *MemorySource) Add(req model.RestockRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	req.Status = model.StatusPending
	s.mu.Lock()
	s.data[req.RequestID] = req
	s.mu.Unlock()
	return nil
}

// Pending returns pending requests ordered by creation time, request id as a
// tie-break.
func (s *MemorySource) Pending() []model.RestockRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.RestockRequest, 0, len(s.data))
	for _, r := range s.data {
		if r.Status == model.StatusPending {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.Before(res[j].CreatedAt)
		}
		return res[i].RequestID < res[j].RequestID
	})
	return res
}

// Get returns the request with the given id.
func (s *MemorySource) Get(id string) (model.RestockRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data[id]
	return r, ok
}

// SetStatus transitions a request to the given status.
func (s *MemorySource) SetStatus(requestID string, status model.RequestStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[requestID]
	if !ok {
		return ErrUnknownRequest
	}
	r.Status = status
	s.data[requestID] = r
	return nil
}
