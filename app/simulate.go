package app

import (
	"context"
	"time"

	"github.com/kilianp07/dronedispatch/core/dispatch"
	"github.com/kilianp07/dronedispatch/core/model"
)

// ScriptedRequest is submitted once the simulated clock reaches At.
type ScriptedRequest struct {
	At    time.Duration
	Input dispatch.SubmitInput
}

// Simulation drives the engine on a synthetic clock. Script must be ordered
// by At.
type Simulation struct {
	Start    time.Time
	Tick     time.Duration
	Duration time.Duration
	Script   []ScriptedRequest
}

// Report is the outcome of a simulation run.
type Report struct {
	Stats    dispatch.Stats
	Requests []model.Request
	Rejected int
	Elapsed  time.Duration
}

// DemoScript is a morning on the default hospital floor.
func DemoScript() []ScriptedRequest {
	return []ScriptedRequest{
		{0, dispatch.SubmitInput{Requester: "DR001", Origin: 2, Priority: model.PriorityResuscitation, Emergency: true, PayloadKg: 0.5}},
		{0, dispatch.SubmitInput{Requester: "NU001", Origin: 6, Priority: model.PriorityNonUrgent, PayloadKg: 0.8}},
		{0, dispatch.SubmitInput{Requester: "DR002", Origin: 1, Priority: model.PriorityEmergent, Emergency: true, PayloadKg: 0.3}},
		{30 * time.Second, dispatch.SubmitInput{Requester: "LB001", Origin: 4, Priority: model.PriorityUrgent, PayloadKg: 0.2}},
		{45 * time.Second, dispatch.SubmitInput{Requester: "NU002", Origin: 5, Priority: model.PriorityLessUrgent, PayloadKg: 1.2}},
		{60 * time.Second, dispatch.SubmitInput{Requester: "NU003", Origin: 7, Priority: model.PriorityUrgent, PayloadKg: 1.0}},
		{90 * time.Second, dispatch.SubmitInput{Requester: "DR003", Origin: 8, Priority: model.PriorityResuscitation, Emergency: true, PayloadKg: 0.4}},
		{120 * time.Second, dispatch.SubmitInput{Requester: "PH001", Origin: 3, Priority: model.PriorityNonUrgent, PayloadKg: 1.8}},
	}
}

// DefaultSimulation runs DemoScript for five minutes in one-second ticks.
func DefaultSimulation(start time.Time) Simulation {
	return Simulation{Start: start, Tick: time.Second, Duration: 5 * time.Minute, Script: DemoScript()}
}

// Simulate replaces the engine clock and steps it through sim. Script
// entries the engine rejects are logged and counted.
func (s *Service) Simulate(ctx context.Context, sim Simulation) (Report, error) {
	if sim.Tick <= 0 {
		sim.Tick = time.Second
	}
	clock := sim.Start
	s.Engine.SetClock(func() time.Time { return clock })

	var rep Report
	next := 0
	for elapsed := time.Duration(0); elapsed <= sim.Duration; elapsed += sim.Tick {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		clock = sim.Start.Add(elapsed)
		s.Engine.Advance(clock)
		for next < len(sim.Script) && sim.Script[next].At <= elapsed {
			in := sim.Script[next].Input
			if _, err := s.Engine.Submit(in); err != nil {
				rep.Rejected++
				s.log.Warnf("scripted request from %s rejected: %v", in.Requester, err)
			}
			next++
		}
		rep.Elapsed = elapsed
	}
	rep.Stats = s.Engine.Stats()
	rep.Requests = s.Engine.Requests()
	return rep, nil
}
