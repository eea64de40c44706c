package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/retailops/fleetalloc/api/assignments"
	apifleet "github.com/retailops/fleetalloc/api/fleet"
	"github.com/retailops/fleetalloc/config"
	"github.com/retailops/fleetalloc/core/alloc"
	"github.com/retailops/fleetalloc/core/alloc/logging"
	"github.com/retailops/fleetalloc/core/fleet"
	coremetrics "github.com/retailops/fleetalloc/core/metrics"
	"github.com/retailops/fleetalloc/core/model"
	"github.com/retailops/fleetalloc/core/requests"
	"github.com/retailops/fleetalloc/infra/logger"
	"github.com/retailops/fleetalloc/infra/metrics"
	"github.com/retailops/fleetalloc/infra/mqtt"
	"github.com/retailops/fleetalloc/internal/eventbus"
)

// Service wires the allocation manager, the MQTT transport and the HTTP API.
type Service struct {
	Manager *alloc.Manager
	Fleet   *fleet.Registry
	Source  *requests.MemorySource

	client      *mqtt.PahoClient
	bus         eventbus.EventBus
	log         logger.Logger
	triggers    chan struct{}
	interval    time.Duration
	apiPort     string
	apiToken    string
	promEnabled bool
	promPort    string
	store       logging.PassStore
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("service")

	reg, err := fleet.NewRegistry(cfg.Fleet.Models()...)
	if err != nil {
		return nil, fmt.Errorf("fleet registry: %w", err)
	}
	source := requests.NewMemorySource()

	triggers := make(chan struct{}, 1)
	urgent := cfg.Engine.ImmediateOnUrgent
	client, err := mqtt.NewPahoClient(cfg.MQTT, func(req model.RestockRequest) {
		if err := source.Add(req); err != nil {
			logg.Errorf("rejected request %s: %v", req.RequestID, err)
			return
		}
		if urgent && req.Priority >= model.PriorityHigh {
			select {
			case triggers <- struct{}{}:
			default:
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("mqtt client: %w", err)
	}

	var sinks []coremetrics.Sink
	promEnabled := cfg.Metrics.PrometheusEnabled
	promPort := cfg.Metrics.PrometheusPort
	if promEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.Sink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	manager, err := alloc.NewManager(alloc.NewEngine(nil, nil, logger.New("engine")), reg, source, client, sink, bus, logg)
	if err != nil {
		return nil, fmt.Errorf("alloc manager: %w", err)
	}

	store, err := newPassStore(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("pass store: %w", err)
	}
	manager.SetPassStore(store)

	return &Service{
		Manager:     manager,
		Fleet:       reg,
		Source:      source,
		client:      client,
		bus:         bus,
		log:         logg,
		triggers:    triggers,
		interval:    time.Duration(cfg.Engine.ProcessIntervalSeconds) * time.Second,
		apiPort:     cfg.Engine.APIPort,
		apiToken:    cfg.Engine.APIToken,
		promEnabled: promEnabled,
		promPort:    promPort,
		store:       store,
	}, nil
}

func newPassStore(cfg config.LoggingConfig) (logging.PassStore, error) {
	switch cfg.Backend {
	case "rotating":
		return logging.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	default:
		return logging.NewJSONLStore(cfg.Path)
	}
}

// Run starts the service and blocks until the context is cancelled. Passes
// run on every interval tick and on every urgent-request trigger.
func (s *Service) Run(ctx context.Context) error {
	go s.Manager.Run(ctx, s.triggers)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ticker.C:
				select {
				case s.triggers <- struct{}{}:
				default:
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/assignments/latest", assignments.NewLatestHandler(s.Manager))
	mux.Handle("/api/assignments/process", assignments.NewProcessHandler(s.Manager))
	mux.Handle("/api/assignments/logs", assignments.NewLogHandler(s.store, s.apiToken))
	mux.Handle("/api/fleet/vehicles", apifleet.NewVehiclesHandler(s.Fleet))
	srv := &http.Server{Addr: s.apiPort, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.client != nil {
		s.client.Disconnect()
	}
	return s.Manager.Close()
}
