package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestRestockRequestValidate(t *testing.T) {
	req := RestockRequest{
		RequestID:         "FUL_1",
		StoreID:           "store1",
		ProductID:         "prod1",
		RequestedQuantity: 5,
		Priority:          PriorityMedium,
		Status:            StatusPending,
		UnitWeight:        2,
		UnitVolume:        1,
		CreatedAt:         time.Now(),
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := req
	bad.RequestedQuantity = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	bad = req
	bad.UnitVolume = 0
	if err := bad.Validate(); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing footprint, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	req := RestockRequest{RequestedQuantity: 4, UnitWeight: 2.5, UnitVolume: 0.5}
	if got := req.TotalWeightNeeded(); got != 10 {
		t.Fatalf("weight needed = %v, want 10", got)
	}
	if got := req.TotalVolumeNeeded(); got != 2 {
		t.Fatalf("volume needed = %v, want 2", got)
	}
}

func TestPriorityJSON(t *testing.T) {
	b, err := json.Marshal(PriorityCritical)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"critical"` {
		t.Fatalf("got %s", b)
	}
	var p Priority
	if err := json.Unmarshal([]byte(`"high"`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p != PriorityHigh {
		t.Fatalf("got %v", p)
	}
	if err := json.Unmarshal([]byte(`"urgent"`), &p); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}
