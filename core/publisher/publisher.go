package publisher

import "github.com/retailops/fleetalloc/core/events"

// Publisher delivers allocation results to the external messaging
// collaborator. One assignment event is published per processed request and
// one status event per request whose status changed.
type Publisher interface {
	PublishAssignment(ev events.AssignmentEvent) error
	PublishStatus(ev events.RequestStatusEvent) error
}
