package scenarios

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/dronedispatch/app"
	"github.com/kilianp07/dronedispatch/config"
)

// RunScenario runs sc on the default hospital configuration and checks the
// expected outcome.
func RunScenario(t *testing.T, sc *Scenario) app.Report {
	t.Helper()
	cfg := &config.Config{}
	cfg.Planner.Seed = 1
	cfg.SetDefaults()
	sc.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	rep, err := svc.Simulate(context.Background(), sc.Simulation(time.Unix(0, 0).UTC()))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	exp := sc.Expected
	if rep.Stats.Completed != exp.Completed {
		t.Errorf("scenario %s expected %d completed, got %d", sc.Name, exp.Completed, rep.Stats.Completed)
	}
	if rep.Stats.Pending != exp.Pending {
		t.Errorf("scenario %s expected %d pending, got %d", sc.Name, exp.Pending, rep.Stats.Pending)
	}
	if rep.Rejected != exp.Rejected {
		t.Errorf("scenario %s expected %d rejected, got %d", sc.Name, exp.Rejected, rep.Rejected)
	}
	if rep.Stats.Interceptions < exp.MinInterceptions {
		t.Errorf("scenario %s expected at least %d interceptions, got %d", sc.Name, exp.MinInterceptions, rep.Stats.Interceptions)
	}
	return rep
}
