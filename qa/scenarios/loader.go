package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/dronedispatch/app"
	"github.com/kilianp07/dronedispatch/config"
	"github.com/kilianp07/dronedispatch/core/dispatch"
	"github.com/kilianp07/dronedispatch/core/model"
)

type DroneDef struct {
	ID         string  `yaml:"id"`
	Location   int     `yaml:"location"`
	Emergency  bool    `yaml:"emergency"`
	BatteryKWh float64 `yaml:"battery_kwh"`
}

func (d DroneDef) ToSpec() dispatch.DroneSpec {
	return dispatch.DroneSpec{
		ID:         d.ID,
		Location:   model.LocationID(d.Location),
		Emergency:  d.Emergency,
		BatteryKWh: d.BatteryKWh,
	}
}

type RequestDef struct {
	AtSeconds int     `yaml:"at_seconds"`
	Requester string  `yaml:"requester"`
	Origin    int     `yaml:"origin"`
	Priority  int     `yaml:"priority"`
	Emergency bool    `yaml:"emergency"`
	PayloadKg float64 `yaml:"payload_kg"`
}

func (r RequestDef) ToScripted() app.ScriptedRequest {
	return app.ScriptedRequest{
		At: time.Duration(r.AtSeconds) * time.Second,
		Input: dispatch.SubmitInput{
			Requester: r.Requester,
			Origin:    model.LocationID(r.Origin),
			Priority:  model.Priority(r.Priority),
			Emergency: r.Emergency,
			PayloadKg: r.PayloadKg,
		},
	}
}

type Expected struct {
	Completed        int `yaml:"completed"`
	Pending          int `yaml:"pending"`
	Rejected         int `yaml:"rejected"`
	MinInterceptions int `yaml:"min_interceptions"`
}

// Scenario is a scripted run on the configured facility. Drones replace the
// configured fleet when present.
type Scenario struct {
	Name            string       `yaml:"name"`
	Description     string       `yaml:"description,omitempty"`
	DurationSeconds int          `yaml:"duration_seconds"`
	TickSeconds     int          `yaml:"tick_seconds,omitempty"`
	Drones          []DroneDef   `yaml:"drones,omitempty"`
	Requests        []RequestDef `yaml:"requests"`
	Expected        Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.DurationSeconds <= 0 {
		return nil, fmt.Errorf("scenario %s: duration_seconds must be positive", sc.Name)
	}
	for i := 1; i < len(sc.Requests); i++ {
		if sc.Requests[i].AtSeconds < sc.Requests[i-1].AtSeconds {
			return nil, fmt.Errorf("scenario %s: requests must be ordered by at_seconds", sc.Name)
		}
	}
	return &sc, nil
}

// Apply replaces the fleet of cfg with the scenario drones, if any.
func (sc *Scenario) Apply(cfg *config.Config) {
	if len(sc.Drones) == 0 {
		return
	}
	cfg.Fleet.Drones = make([]dispatch.DroneSpec, len(sc.Drones))
	for i, d := range sc.Drones {
		cfg.Fleet.Drones[i] = d.ToSpec()
	}
}

// Simulation converts the scenario into an app.Simulation starting at start.
func (sc *Scenario) Simulation(start time.Time) app.Simulation {
	tick := time.Duration(sc.TickSeconds) * time.Second
	if tick <= 0 {
		tick = time.Second
	}
	script := make([]app.ScriptedRequest, len(sc.Requests))
	for i, r := range sc.Requests {
		script[i] = r.ToScripted()
	}
	return app.Simulation{
		Start:    start,
		Tick:     tick,
		Duration: time.Duration(sc.DurationSeconds) * time.Second,
		Script:   script,
	}
}
