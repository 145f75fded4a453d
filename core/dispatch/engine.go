// Package dispatch owns the fleet state: it queues transport requests by
// priority, commits routes to drones, folds new requests into flights already
// underway and accounts the energy of every delivery.
package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kilianp07/dronedispatch/core/energy"
	"github.com/kilianp07/dronedispatch/core/events"
	"github.com/kilianp07/dronedispatch/core/facility"
	"github.com/kilianp07/dronedispatch/core/logger"
	"github.com/kilianp07/dronedispatch/core/model"
	"github.com/kilianp07/dronedispatch/core/planner"
	"github.com/kilianp07/dronedispatch/internal/eventbus"
)

// RoutePlanner refines a dispatch into a trajectory. A result shorter than
// two points means no feasible trajectory was found.
type RoutePlanner interface {
	Plan(q planner.Query, flights []model.ActiveFlight) []model.Point
	Lane(q planner.Query, flights []model.ActiveFlight) model.Lane
}

// DroneSpec registers a drone. Zero battery or capacity take the configured
// capacity, i.e. a full battery.
type DroneSpec struct {
	ID          string           `json:"id"`
	Location    model.LocationID `json:"location"`
	Emergency   bool             `json:"emergency"`
	BatteryKWh  float64          `json:"battery_kwh" validate:"gte=0"`
	CapacityKWh float64          `json:"capacity_kwh" validate:"gte=0"`
}

// SubmitInput is a new transport request.
type SubmitInput struct {
	Requester string `validate:"required"`
	Origin    model.LocationID
	Priority  model.Priority `validate:"min=1,max=5"`
	Emergency bool
	PayloadKg float64 `validate:"gte=0,lte=2"`
}

// Engine is safe for concurrent use. Every operation runs under one mutex
// and readers receive copies.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	graph    *facility.Graph
	planner  RoutePlanner
	energy   energy.Model
	bus      eventbus.EventBus
	log      logger.Logger
	now      func() time.Time
	validate *validator.Validate

	drones   map[string]*model.Drone
	requests map[string]*model.Request
	pending  map[string]struct{}
	flights  map[string]*model.ActiveFlight
	seq      uint64
	lastTick time.Time
	stats    tally
}

// New returns an engine over g. A nil planner uses the RRT planner with its
// default tuning; a nil logger discards output.
func New(cfg Config, g *facility.Graph, p RoutePlanner, log logger.Logger) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("dispatch: nil graph provided to New")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p == nil {
		pc := planner.DefaultConfig()
		p = planner.NewSeeded(pc, g.Bounds(), pc.Seed)
	}
	if log == nil {
		log = discard{}
	}
	e := &Engine{
		cfg:      cfg,
		graph:    g,
		planner:  p,
		energy:   energy.Default(),
		log:      log,
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		drones:   make(map[string]*model.Drone),
		requests: make(map[string]*model.Request),
		pending:  make(map[string]struct{}),
		flights:  make(map[string]*model.ActiveFlight),
	}
	e.lastTick = e.now()
	return e, nil
}

// SetBus configures the bus receiving engine events.
func (e *Engine) SetBus(bus eventbus.EventBus) {
	e.mu.Lock()
	e.bus = bus
	e.mu.Unlock()
}

// SetClock replaces the time source. Charging is measured from the
// clock's current reading.
func (e *Engine) SetClock(now func() time.Time) {
	if now == nil {
		return
	}
	e.mu.Lock()
	e.now = now
	e.lastTick = now()
	e.mu.Unlock()
}

// SetEnergyModel replaces the energy calibration.
func (e *Engine) SetEnergyModel(m energy.Model) error {
	m.SetDefaults()
	if err := m.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.energy = m
	e.mu.Unlock()
	return nil
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Graph returns the facility graph. It is immutable.
func (e *Engine) Graph() *facility.Graph { return e.graph }

// AddDrone registers a drone and returns its id, generated when spec.ID is empty.
func (e *Engine) AddDrone(spec DroneSpec) (string, error) {
	if err := e.validate.Struct(spec); err != nil {
		return "", fmt.Errorf("dispatch: invalid drone: %w", err)
	}
	if !e.graph.Has(spec.Location) {
		return "", fmt.Errorf("dispatch: drone location %d: %w", spec.Location, facility.ErrUnknownLocation)
	}
	capacity := spec.CapacityKWh
	if capacity == 0 {
		capacity = e.cfg.CapacityKWh
	}
	battery := spec.BatteryKWh
	if battery == 0 {
		battery = capacity
	}
	if battery > capacity {
		return "", fmt.Errorf("dispatch: battery %.3f kWh exceeds capacity %.3f kWh", battery, capacity)
	}
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.drones[id]; ok {
		return "", fmt.Errorf("dispatch: drone %s already registered: %w", id, ErrInvalidState)
	}
	d := &model.Drone{
		ID:          id,
		Location:    spec.Location,
		Class:       model.ClassFor(spec.Emergency),
		Status:      model.DroneAvailable,
		BatteryKWh:  battery,
		CapacityKWh: capacity,
	}
	e.drones[id] = d
	e.publishDrone(d, "added")
	e.log.Debugf("drone %s (%s) added at %d", id, d.Class, d.Location)
	e.processPending()
	return id, nil
}

// Submit validates and enqueues a request, then runs a processing pass.
// A request no drone can take yet still succeeds and stays pending.
func (e *Engine) Submit(in SubmitInput) (string, error) {
	if err := e.validate.Struct(in); err != nil {
		return "", fmt.Errorf("dispatch: invalid request: %w", err)
	}
	if !e.graph.Has(in.Origin) {
		return "", fmt.Errorf("dispatch: origin %d: %w", in.Origin, facility.ErrUnknownLocation)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.seq++
	r := &model.Request{
		ID:        uuid.NewString(),
		Requester: in.Requester,
		Origin:    in.Origin,
		Priority:  in.Priority,
		Emergency: in.Emergency,
		PayloadKg: in.PayloadKg,
		Status:    model.RequestPending,
		CreatedAt: e.now(),
		Seq:       e.seq,
	}
	e.requests[r.ID] = r
	e.pending[r.ID] = struct{}{}
	requestsSubmitted.WithLabelValues(r.Priority.String()).Inc()
	e.publish(events.RequestEvent{
		RequestID: r.ID,
		Priority:  r.Priority,
		Emergency: r.Emergency,
		Action:    "submitted",
		Time:      r.CreatedAt,
	})
	e.log.Infow("request submitted", map[string]any{
		"request_id": r.ID,
		"priority":   r.Priority.String(),
		"emergency":  r.Emergency,
		"origin":     int(r.Origin),
	})
	e.processPending()
	return r.ID, nil
}

func (e *Engine) publish(ev eventbus.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func (e *Engine) publishDrone(d *model.Drone, reason string) {
	e.publish(events.DroneStateEvent{Drone: d.Clone(), Reason: reason, Time: e.now()})
}

type discard struct{}

func (discard) Debugf(string, ...any)         {}
func (discard) Debugw(string, map[string]any) {}
func (discard) Infof(string, ...any)          {}
func (discard) Infow(string, map[string]any)  {}
func (discard) Warnf(string, ...any)          {}
func (discard) Errorf(string, ...any)         {}
