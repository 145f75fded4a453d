package scenarios

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kilianp07/dronedispatch/config"
	"github.com/kilianp07/dronedispatch/core/model"
)

func TestScenario(t *testing.T) {
	files, err := filepath.Glob("*.yaml")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no scenario files")
	}
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			t.Fatalf("load %s: %v", f, err)
		}
		t.Run(sc.Name, func(t *testing.T) {
			RunScenario(t, sc)
		})
	}
}

func TestScenarioConversion(t *testing.T) {
	sc := &Scenario{
		Name:            "conv",
		DurationSeconds: 60,
		TickSeconds:     2,
		Drones:          []DroneDef{{ID: "e1", Location: 3, Emergency: true}},
		Requests:        []RequestDef{{AtSeconds: 10, Requester: "R", Origin: 4, Priority: 2, Emergency: true, PayloadKg: 0.5}},
	}
	start := time.Unix(100, 0)
	sim := sc.Simulation(start)
	if sim.Tick != 2*time.Second || sim.Duration != time.Minute || !sim.Start.Equal(start) {
		t.Fatalf("unexpected simulation %+v", sim)
	}
	in := sim.Script[0].Input
	if sim.Script[0].At != 10*time.Second || in.Origin != 4 || in.Priority != model.PriorityEmergent || !in.Emergency {
		t.Fatalf("unexpected script %+v", sim.Script[0])
	}

	cfg := &config.Config{}
	cfg.SetDefaults()
	sc.Apply(cfg)
	if len(cfg.Fleet.Drones) != 1 || cfg.Fleet.Drones[0].Location != 3 || !cfg.Fleet.Drones[0].Emergency {
		t.Fatalf("fleet not replaced: %+v", cfg.Fleet.Drones)
	}
}

func writeScenario(t *testing.T, data string) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "sc*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tmp.WriteString(data); err != nil {
		t.Fatal(err)
	}
	if err := tmp.Close(); err != nil {
		t.Fatal(err)
	}
	return tmp.Name()
}

func TestLoadInvalid(t *testing.T) {
	if _, err := Load("no-file.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	cases := map[string]string{
		"syntax":   ":",
		"duration": "name: x\nrequests: []\n",
		"order":    "name: x\nduration_seconds: 10\nrequests:\n  - {at_seconds: 5}\n  - {at_seconds: 1}\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeScenario(t, data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
