package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/retailops/fleetalloc/core/metrics"
)

// PromSink records allocation events in Prometheus metrics.
type PromSink struct {
	requests    *prometheus.CounterVec
	volume      *prometheus.CounterVec
	passes      prometheus.Counter
	passSeconds prometheus.Histogram
	utilVolume  prometheus.Gauge
	utilWeight  prometheus.Gauge
	fleet       prometheus.Gauge
}

// NewPromSink registers allocation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_requests_total",
		Help: "Total number of processed restock requests",
	}, []string{"status"})
	volume := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_volume_total",
		Help: "Total volume assigned to vehicles",
	}, []string{"status"})
	passes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "allocation_passes_total",
		Help: "Total number of allocation passes",
	})
	passSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allocation_pass_duration_seconds",
		Help:    "Duration of one allocation pass",
		Buckets: prometheus.DefBuckets,
	})
	utilVolume := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_volume_utilization_ratio",
		Help: "Mean fleet volume utilization after the last pass",
	})
	utilWeight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_weight_utilization_ratio",
		Help: "Mean fleet weight utilization after the last pass",
	})
	fleet := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_vehicles_total",
		Help: "Number of vehicles in the fleet",
	})

	sink := &PromSink{
		requests:    requests,
		volume:      volume,
		passes:      passes,
		passSeconds: passSeconds,
		utilVolume:  utilVolume,
		utilWeight:  utilWeight,
		fleet:       fleet,
	}
	if err := register(reg, requests, func(c prometheus.Collector) { sink.requests = c.(*prometheus.CounterVec) }); err != nil {
		return nil, err
	}
	if err := register(reg, volume, func(c prometheus.Collector) { sink.volume = c.(*prometheus.CounterVec) }); err != nil {
		return nil, err
	}
	if err := register(reg, passes, func(c prometheus.Collector) { sink.passes = c.(prometheus.Counter) }); err != nil {
		return nil, err
	}
	if err := register(reg, passSeconds, func(c prometheus.Collector) { sink.passSeconds = c.(prometheus.Histogram) }); err != nil {
		return nil, err
	}
	if err := register(reg, utilVolume, func(c prometheus.Collector) { sink.utilVolume = c.(prometheus.Gauge) }); err != nil {
		return nil, err
	}
	if err := register(reg, utilWeight, func(c prometheus.Collector) { sink.utilWeight = c.(prometheus.Gauge) }); err != nil {
		return nil, err
	}
	if err := register(reg, fleet, func(c prometheus.Collector) { sink.fleet = c.(prometheus.Gauge) }); err != nil {
		return nil, err
	}
	return sink, nil
}

func register(reg prometheus.Registerer, c prometheus.Collector, replace func(prometheus.Collector)) error {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			replace(are.ExistingCollector)
			return nil
		}
		return err
	}
	return nil
}

// RecordAllocations increments the per-status counters for each processed
// request.
func (s *PromSink) RecordAllocations(records []coremetrics.AllocationRecord) error {
	for _, r := range records {
		s.requests.WithLabelValues(string(r.Status)).Inc()
		s.volume.WithLabelValues(string(r.Status)).Add(r.VolumeAssigned)
	}
	return nil
}

// RecordFleetUtilization sets the utilization gauges.
func (s *PromSink) RecordFleetUtilization(u coremetrics.FleetUtilization) error {
	s.utilVolume.Set(u.VolumeMean)
	s.utilWeight.Set(u.WeightMean)
	s.fleet.Set(float64(u.Vehicles))
	return nil
}

// RecordPass records the pass counter and duration histogram.
func (s *PromSink) RecordPass(duration time.Duration, _ int) error {
	s.passes.Inc()
	s.passSeconds.Observe(duration.Seconds())
	return nil
}
