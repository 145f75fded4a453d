package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/dronedispatch/config"
	"github.com/kilianp07/dronedispatch/core/dispatch"
	"github.com/kilianp07/dronedispatch/core/facility"
	coremetrics "github.com/kilianp07/dronedispatch/core/metrics"
	"github.com/kilianp07/dronedispatch/core/monitoring"
	"github.com/kilianp07/dronedispatch/core/planner"
	"github.com/kilianp07/dronedispatch/infra/logger"
	"github.com/kilianp07/dronedispatch/infra/metrics"
	inframon "github.com/kilianp07/dronedispatch/infra/monitoring"
	"github.com/kilianp07/dronedispatch/internal/eventbus"
)

// DefaultTick is the interval at which Run advances the engine clock.
const DefaultTick = time.Second

// busBuffer holds the events a simulation burst produces for slow sinks.
const busBuffer = 1024

// Service wires the facility, the dispatch engine and the metrics sinks.
type Service struct {
	Engine *dispatch.Engine
	Graph  *facility.Graph

	bus      *eventbus.Bus
	sink     coremetrics.MetricsSink
	log      logger.Logger
	promAddr string
	tick     time.Duration
	stop     context.CancelFunc
}

// New creates a Service from the configuration. The configured fleet is
// registered before New returns.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	logger.SetConsole(cfg.Logging.Console)
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	monitoring.Init(mon)

	graph, err := facility.FromLayout(cfg.Facility)
	if err != nil {
		return nil, fmt.Errorf("facility: %w", err)
	}
	p := planner.NewSeeded(cfg.Planner, graph.Bounds(), cfg.Planner.Seed)
	engine, err := dispatch.New(cfg.Dispatch, graph, p, logger.New("dispatch"))
	if err != nil {
		return nil, fmt.Errorf("dispatch engine: %w", err)
	}
	if err := engine.SetEnergyModel(cfg.Energy); err != nil {
		return nil, fmt.Errorf("energy model: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.NewWithBuffer(busBuffer)
	engine.SetBus(bus)
	ctx, stop := context.WithCancel(context.Background())
	metrics.StartEventCollector(ctx, bus, sink)

	for _, spec := range cfg.Fleet.Drones {
		if _, err := engine.AddDrone(spec); err != nil {
			stop()
			bus.Close()
			return nil, fmt.Errorf("drone %s: %w", spec.ID, err)
		}
	}
	logg.Infow("service ready", map[string]any{
		"locations": len(graph.Locations()),
		"stations":  len(graph.ChargingStations()),
		"drones":    len(cfg.Fleet.Drones),
	})
	return &Service{
		Engine:   engine,
		Graph:    graph,
		bus:      bus,
		sink:     sink,
		log:      logg,
		promAddr: cfg.Metrics.PrometheusAddr,
		tick:     DefaultTick,
		stop:     stop,
	}, nil
}

// SetTick changes the interval used by Run.
func (s *Service) SetTick(d time.Duration) {
	if d > 0 {
		s.tick = d
	}
}

// Run advances the engine on wall-clock ticks and serves /metrics when an
// address is configured. It blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
				monitoring.CaptureException(err, map[string]string{"component": "prom-server"})
			}
		}()
	}
	defer monitoring.Recover()
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			s.Engine.Advance(now)
		}
	}
}

// Close stops the collector and releases the sinks.
func (s *Service) Close() error {
	s.stop()
	s.bus.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	monitoring.Flush(2 * time.Second)
	return nil
}
