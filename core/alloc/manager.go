package alloc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/retailops/fleetalloc/core/alloc/logging"
	"github.com/retailops/fleetalloc/core/events"
	"github.com/retailops/fleetalloc/core/fleet"
	"github.com/retailops/fleetalloc/core/logger"
	"github.com/retailops/fleetalloc/core/metrics"
	"github.com/retailops/fleetalloc/core/model"
	"github.com/retailops/fleetalloc/core/publisher"
	"github.com/retailops/fleetalloc/core/requests"
	"github.com/retailops/fleetalloc/internal/eventbus"
)

// Manager serializes allocation passes against one fleet registry. Two
// passes must never overlap on the same registry: overlapping execution
// would double-reserve vehicle capacity. The critical section covers pull
// pending, allocate and commit statuses; event publication, metrics and the
// pass log run outside it.
type Manager struct {
	engine *Engine
	fleet  *fleet.Registry
	source requests.Source
	pub    publisher.Publisher
	sink   metrics.Sink
	bus    eventbus.EventBus
	log    logger.Logger
	store  logging.PassStore

	mu      sync.Mutex
	history []PassResult
}

// NewManager creates a manager.
func NewManager(engine *Engine, reg *fleet.Registry, source requests.Source, pub publisher.Publisher, sink metrics.Sink, bus eventbus.EventBus, log logger.Logger) (*Manager, error) {
	if engine == nil || reg == nil || source == nil || pub == nil {
		return nil, fmt.Errorf("alloc: nil parameter provided to NewManager")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = nopLogger{}
	}
	return &Manager{
		engine: engine,
		fleet:  reg,
		source: source,
		pub:    pub,
		sink:   sink,
		bus:    bus,
		log:    log,
	}, nil
}

// SetPassStore configures the store used to persist pass records.
func (m *Manager) SetPassStore(store logging.PassStore) {
	m.mu.Lock()
	m.store = store
	m.mu.Unlock()
}

// ProcessPendingRequests runs one allocation pass over all currently pending
// requests. Invalid requests are rejected before the batch and marked
// failed; the remainder is allocated in policy order. A capacity violation
// aborts the pass with an error since it indicates corrupted fleet state;
// request statuses then stay in processing to make the breach visible.
func (m *Manager) ProcessPendingRequests() (PassResult, error) {
	start := time.Now()

	m.mu.Lock()
	pending := m.source.Pending()

	batch := make([]model.RestockRequest, 0, len(pending))
	var rejected map[string]string
	rejectedStores := make(map[string]string)
	for _, r := range pending {
		if err := r.Validate(); err != nil {
			if rejected == nil {
				rejected = make(map[string]string)
			}
			rejected[r.RequestID] = err.Error()
			rejectedStores[r.RequestID] = r.StoreID
			continue
		}
		batch = append(batch, r)
	}

	for id := range rejected {
		if err := m.source.SetStatus(id, model.StatusFailed); err != nil {
			m.log.Errorf("mark rejected request %s failed: %v", id, err)
		}
	}
	for _, r := range batch {
		if err := m.source.SetStatus(r.RequestID, model.StatusProcessing); err != nil {
			m.log.Errorf("mark request %s processing: %v", r.RequestID, err)
		}
	}

	assignments, err := m.engine.Process(batch, m.fleet)
	if err != nil {
		m.mu.Unlock()
		m.log.Errorf("allocation pass aborted: %v", err)
		return PassResult{}, err
	}

	res := PassResult{
		PassID:      uuid.NewString(),
		Timestamp:   start,
		Assignments: assignments,
		Rejected:    rejected,
		Utilization: Utilization(m.fleet.List()),
	}
	for _, a := range assignments {
		if err := m.source.SetStatus(a.RequestID, a.Status); err != nil {
			m.log.Errorf("set status for request %s: %v", a.RequestID, err)
		}
		if a.TotalVolumeAssigned < a.TotalVolumeNeeded {
			res.Unfulfilled = append(res.Unfulfilled, a.RequestID)
		}
	}
	res.Duration = time.Since(start)
	m.history = append(m.history, res)
	m.mu.Unlock()

	m.publish(res, rejectedStores)
	m.record(res)
	m.persist(res, len(pending))

	m.log.Infof("allocated %d requests across fleet, %d unfulfilled, %d rejected",
		len(assignments), len(res.Unfulfilled), len(rejected))
	return res, nil
}

// LatestAssignments returns the assignments of the most recent pass. Calling
// it repeatedly without an intervening pass yields identical results.
func (m *Manager) LatestAssignments() []model.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.history) == 0 {
		return nil
	}
	last := m.history[len(m.history)-1]
	return append([]model.Assignment(nil), last.Assignments...)
}

// History returns a copy of all pass results since startup.
func (m *Manager) History() []PassResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PassResult(nil), m.history...)
}

// Run processes triggers until the context is canceled. Each trigger runs
// one allocation pass.
func (m *Manager) Run(ctx context.Context, triggers <-chan struct{}) {
	for {
		select {
		case <-triggers:
			if _, err := m.ProcessPendingRequests(); err != nil {
				m.log.Errorf("allocation pass: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close releases resources held by the manager.
func (m *Manager) Close() error {
	if m.bus != nil {
		m.bus.Close()
	}
	if m.store != nil {
		return m.store.Close()
	}
	return nil
}

// publish emits one assignment event per processed request and a status
// event for every request whose status changed, including rejected ones.
func (m *Manager) publish(res PassResult, rejectedStores map[string]string) {
	now := time.Now().UTC()
	for _, a := range res.Assignments {
		ev := events.AssignmentEvent{PassID: res.PassID, StoreID: a.StoreID, Assignment: a, Time: now}
		if err := m.pub.PublishAssignment(ev); err != nil {
			m.log.Errorf("publish assignment %s: %v", a.RequestID, err)
		}
		st := events.RequestStatusEvent{RequestID: a.RequestID, StoreID: a.StoreID, Status: a.Status, Time: now}
		if err := m.pub.PublishStatus(st); err != nil {
			m.log.Errorf("publish status %s: %v", a.RequestID, err)
		}
		if m.bus != nil {
			m.bus.Publish(ev)
			m.bus.Publish(st)
		}
	}
	for id, reason := range res.Rejected {
		st := events.RequestStatusEvent{RequestID: id, StoreID: rejectedStores[id], Status: model.StatusFailed, Reason: reason, Time: now}
		if err := m.pub.PublishStatus(st); err != nil {
			m.log.Errorf("publish status %s: %v", id, err)
		}
		if m.bus != nil {
			m.bus.Publish(st)
		}
	}
	if m.bus != nil {
		m.bus.Publish(events.PassEvent{PassID: res.PassID, Requests: len(res.Assignments), Duration: res.Duration})
	}
}

func (m *Manager) record(res PassResult) {
	recs := make([]metrics.AllocationRecord, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		recs = append(recs, metrics.AllocationRecord{
			PassID:         res.PassID,
			RequestID:      a.RequestID,
			StoreID:        a.StoreID,
			Status:         a.Status,
			VolumeNeeded:   a.TotalVolumeNeeded,
			VolumeAssigned: a.TotalVolumeAssigned,
			VehiclesUsed:   len(a.Vehicles),
			Time:           res.Timestamp,
		})
	}
	if err := m.sink.RecordAllocations(recs); err != nil {
		m.log.Errorf("metrics error: %v", err)
	}
	if ur, ok := m.sink.(metrics.UtilizationRecorder); ok {
		if err := ur.RecordFleetUtilization(res.Utilization); err != nil {
			m.log.Errorf("utilization metrics error: %v", err)
		}
	}
	if pr, ok := m.sink.(metrics.PassRecorder); ok {
		if err := pr.RecordPass(res.Duration, len(res.Assignments)); err != nil {
			m.log.Errorf("pass metrics error: %v", err)
		}
	}
}

func (m *Manager) persist(res PassResult, requests int) {
	m.mu.Lock()
	store := m.store
	m.mu.Unlock()
	if store == nil {
		return
	}
	rec := logging.PassRecord{
		PassID:      res.PassID,
		Timestamp:   res.Timestamp,
		Requests:    requests,
		Assignments: res.Assignments,
		Unfulfilled: res.Unfulfilled,
		Rejected:    res.Rejected,
	}
	if err := store.Append(context.Background(), rec); err != nil {
		m.log.Errorf("append pass record: %v", err)
	}
}
