package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/retailops/fleetalloc/core/metrics"
	"github.com/retailops/fleetalloc/core/model"
)

func TestInfluxSink_RecordAllocations(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	rec := coremetrics.AllocationRecord{
		PassID:         "pass1",
		RequestID:      "req1",
		StoreID:        "store1",
		Status:         model.StatusFulfilled,
		VolumeNeeded:   10,
		VolumeAssigned: 10,
		VehiclesUsed:   2,
		Time:           now,
	}

	if err := sink.RecordAllocations([]coremetrics.AllocationRecord{rec}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("allocation_event").
		AddTag("pass_id", "pass1").
		AddTag("request_id", "req1").
		AddTag("store_id", "store1").
		AddTag("status", "fulfilled").
		AddTag("component", "allocation_manager").
		AddField("volume_needed", 10.0).
		AddField("volume_assigned", 10.0).
		AddField("vehicles_used", 2).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not queried")
	}
}
