// Package events defines the payloads published on the internal event bus
// and mirrored to the external messaging collaborator.
package events
