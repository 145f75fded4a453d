package factory

import (
	"errors"
	"strings"
	"testing"
)

type chargerSink struct {
	station string
	factor  float64
}

func chargerFactory(conf map[string]any) (*chargerSink, error) {
	c := struct {
		Station string  `json:"station"`
		Factor  float64 `json:"emission_factor"`
	}{Factor: 0.4}
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	if c.Station == "" {
		return nil, errors.New("station required")
	}
	return &chargerSink{station: c.Station, factor: c.Factor}, nil
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*chargerSink]()
	if err := reg.Register("charger", chargerFactory); err != nil {
		t.Fatalf("register: %v", err)
	}
	cases := []struct {
		name    string
		conf    map[string]any
		station string
		factor  float64
		wantErr string
	}{
		{"typed", map[string]any{"station": "dock-a", "emission_factor": 0.3}, "dock-a", 0.3, ""},
		{"from env strings", map[string]any{"station": "dock-b", "emission_factor": "0.25"}, "dock-b", 0.25, ""},
		{"default factor", map[string]any{"station": "dock-c"}, "dock-c", 0.4, ""},
		{"misspelt key", map[string]any{"station": "dock-a", "emision_factor": 0.3}, "", 0, "emision_factor"},
		{"factory error", map[string]any{}, "", 0, "charger: station required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := reg.Create(ModuleConfig{Type: "charger", Conf: tc.conf})
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("error %v, want %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if s.station != tc.station || s.factor != tc.factor {
				t.Fatalf("got %+v", s)
			}
		})
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[*chargerSink]()
	if err := reg.Register("charger", chargerFactory); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("charger", chargerFactory); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("dock", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if err := reg.Register("", chargerFactory); err == nil {
		t.Fatal("expected empty name error")
	}
	_, err := reg.Create(ModuleConfig{Type: "telemetry"})
	if !errors.Is(err, ErrUnknownType) || !strings.Contains(err.Error(), "known: charger") {
		t.Fatalf("unknown type error %v", err)
	}
	if got := reg.Types(); len(got) != 1 || got[0] != "charger" {
		t.Fatalf("types %v", got)
	}
}
