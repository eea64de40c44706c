package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/retailops/fleetalloc/core/metrics"
	"github.com/retailops/fleetalloc/infra/logger"
)

// InfluxSink writes allocation events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAllocations writes one point per processed request.
func (s *InfluxSink) RecordAllocations(records []coremetrics.AllocationRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("allocation_event").
			AddTag("pass_id", r.PassID).
			AddTag("request_id", r.RequestID).
			AddTag("store_id", r.StoreID).
			AddTag("status", string(r.Status)).
			AddTag("component", "allocation_manager").
			AddField("volume_needed", round3(r.VolumeNeeded)).
			AddField("volume_assigned", round3(r.VolumeAssigned)).
			AddField("vehicles_used", r.VehiclesUsed).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordFleetUtilization persists a post-pass utilization snapshot.
func (s *InfluxSink) RecordFleetUtilization(u coremetrics.FleetUtilization) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_utilization").
		AddTag("component", "allocation_manager").
		AddTag("vehicles", strconv.Itoa(u.Vehicles)).
		AddField("volume_mean", round3(u.VolumeMean)).
		AddField("volume_stddev", round3(u.VolumeStdDev)).
		AddField("weight_mean", round3(u.WeightMean)).
		AddField("weight_stddev", round3(u.WeightStdDev)).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPass records one completed allocation pass.
func (s *InfluxSink) RecordPass(duration time.Duration, requests int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("allocation_pass").
		AddTag("component", "allocation_manager").
		AddField("duration_ms", round3(duration.Seconds()*1000)).
		AddField("requests", requests).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
