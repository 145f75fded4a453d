package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/dronedispatch/core/energy"
	"github.com/kilianp07/dronedispatch/core/model"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `logging:
  level: debug
dispatch:
  intercept_tolerance: 0.05
  reserve_kwh: 0.03
  manual_completion: true
  default_method: walking
  speeds:
    emergency: 5
planner:
  seed: 42
  emergency_yield_factor: 2
energy:
  emission_factor: 0.3
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
facility:
  locations:
    - {id: 1, name: "ER", x: 0, y: 0}
    - {id: 2, name: "ICU", x: 10, y: 0}
    - {id: 3, name: "Dock", x: 5, y: 5, charging: true}
  pathways:
    - {from: 1, to: 2, weight: 10}
    - {from: 2, to: 3}
fleet:
  drones:
    - {id: "e1", location: 1, emergency: true}
    - {id: "n1", location: 3}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"logging.level", cfg.Logging.Level, "debug"},
		{"dispatch.intercept_tolerance", cfg.Dispatch.Tolerance(), 0.05},
		{"dispatch.reserve_kwh", cfg.Dispatch.ReserveKWh, 0.03},
		{"dispatch.manual_completion", cfg.Dispatch.ManualCompletion, true},
		{"dispatch.default_method", cfg.Dispatch.DefaultMethod, energy.MethodWalking},
		{"dispatch.speeds.emergency", cfg.Dispatch.Speeds.Emergency, 5.0},
		{"dispatch.speeds.normal default", cfg.Dispatch.Speeds.Normal, model.DefaultSpeeds().Normal},
		{"dispatch.capacity default", cfg.Dispatch.CapacityKWh, 0.5},
		{"planner.seed", cfg.Planner.Seed, int64(42)},
		{"planner.emergency_yield_factor", cfg.Planner.EmergencyYieldFactor, 2.0},
		{"energy.emission_factor", cfg.Energy.EmissionFactor, 0.3},
		{"energy.drone default", cfg.Energy.Drone.PerMeterKWh, energy.Default().Drone.PerMeterKWh},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"facility.locations", len(cfg.Facility.Locations), 3},
		{"facility.charging", cfg.Facility.Locations[2].Charging, true},
		{"fleet.drones", len(cfg.Fleet.Drones), 2},
		{"fleet.emergency", cfg.Fleet.Drones[0].Emergency, true},
		{"fleet.location", cfg.Fleet.Drones[1].Location, model.LocationID(3)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.json", `{}`))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("level = %s", cfg.Logging.Level)
	}
	if len(cfg.Facility.Locations) != 18 {
		t.Errorf("hospital layout has %d locations", len(cfg.Facility.Locations))
	}
	var emergency, normal int
	for _, d := range cfg.Fleet.Drones {
		if d.Emergency {
			emergency++
		} else {
			normal++
		}
	}
	if emergency != 6 || normal != 14 {
		t.Errorf("fleet = %d emergency, %d normal", emergency, normal)
	}
	if cfg.Dispatch.Tolerance() != 0.10 {
		t.Errorf("tolerance = %v", cfg.Dispatch.Tolerance())
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DD_DISPATCH__INTERCEPT_TOLERANCE", "0.2")
	t.Setenv("DD_LOGGING__LEVEL", "warn")
	cfg, err := Load(writeConfig(t, "config.yaml", "logging:\n  level: debug\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Dispatch.Tolerance() != 0.2 {
		t.Errorf("tolerance = %v, want 0.2", cfg.Dispatch.Tolerance())
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %s, want warn", cfg.Logging.Level)
	}
}

func TestLoadZeroTolerance(t *testing.T) {
	cfg, err := Load(writeConfig(t, "config.yaml", "dispatch:\n  intercept_tolerance: 0\n"))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Dispatch.Tolerance() != 0 {
		t.Errorf("tolerance = %v, want 0", cfg.Dispatch.Tolerance())
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		file string
		data string
	}{
		{"format", "config.toml", ""},
		{"level", "config.yaml", "logging:\n  level: loud\n"},
		{"reserve", "config.yaml", "dispatch:\n  reserve_kwh: 1\n"},
		{"method", "config.yaml", "dispatch:\n  default_method: bicycle\n"},
		{"fleet location", "config.yaml", "fleet:\n  drones:\n    - {id: a, location: 99}\n"},
		{"fleet duplicate", "config.yaml", "fleet:\n  drones:\n    - {id: a, location: 1}\n    - {id: a, location: 2}\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, c.file, c.data)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
