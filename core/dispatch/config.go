package dispatch

import (
	"fmt"

	"github.com/kilianp07/dronedispatch/core/energy"
	"github.com/kilianp07/dronedispatch/core/model"
)

// Config defines dispatch-related settings.
type Config struct {
	// InterceptTolerance is the accepted overhead of a combined route over
	// finishing the current route plus a second dispatch. Zero accepts only
	// detours that save energy; nil takes DefaultInterceptTolerance.
	InterceptTolerance *float64 `json:"intercept_tolerance"`
	// ReserveKWh must remain after reaching the origin and the nearest station.
	ReserveKWh  float64 `json:"reserve_kwh"`
	CapacityKWh float64 `json:"capacity_kwh"`
	// RechargeBelow sends a released drone to charge under this level.
	RechargeBelow       float64      `json:"recharge_below"`
	ChargeTarget        float64      `json:"charge_target"`
	ChargeRateKWhPerSec float64      `json:"charge_rate_kwh_per_sec"`
	Speeds              model.Speeds `json:"speeds"`
	// ManualCompletion disables completing requests when the drone passes their stop.
	ManualCompletion    bool          `json:"manual_completion"`
	DisableInterception bool          `json:"disable_interception"`
	DefaultMethod       energy.Method `json:"default_method"`
}

// DefaultInterceptTolerance applies when no tolerance is configured.
const DefaultInterceptTolerance = 0.10

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	c := Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.InterceptTolerance == nil {
		t := DefaultInterceptTolerance
		c.InterceptTolerance = &t
	}
	if c.ReserveKWh == 0 {
		c.ReserveKWh = 0.0243
	}
	if c.CapacityKWh == 0 {
		c.CapacityKWh = 0.5
	}
	if c.RechargeBelow == 0 {
		c.RechargeBelow = 0.25
	}
	if c.ChargeTarget == 0 {
		c.ChargeTarget = 0.8
	}
	if c.ChargeRateKWhPerSec == 0 {
		c.ChargeRateKWhPerSec = 0.01
	}
	def := model.DefaultSpeeds()
	if c.Speeds.Emergency == 0 {
		c.Speeds.Emergency = def.Emergency
	}
	if c.Speeds.Normal == 0 {
		c.Speeds.Normal = def.Normal
	}
	if c.Speeds.Low == 0 {
		c.Speeds.Low = def.Low
	}
	if c.DefaultMethod == "" {
		c.DefaultMethod = energy.MethodVehicle
	}
}

// Tolerance returns the effective interception tolerance.
func (c Config) Tolerance() float64 {
	if c.InterceptTolerance == nil {
		return DefaultInterceptTolerance
	}
	return *c.InterceptTolerance
}

// Validate checks ranges after defaults were applied.
func (c Config) Validate() error {
	if c.Tolerance() < 0 {
		return fmt.Errorf("dispatch: intercept_tolerance must be >= 0")
	}
	if c.ReserveKWh < 0 {
		return fmt.Errorf("dispatch: reserve_kwh must be >= 0")
	}
	if c.CapacityKWh <= 0 {
		return fmt.Errorf("dispatch: capacity_kwh must be > 0")
	}
	if c.ReserveKWh >= c.CapacityKWh {
		return fmt.Errorf("dispatch: reserve_kwh %.4f exceeds capacity", c.ReserveKWh)
	}
	if c.RechargeBelow <= 0 || c.RechargeBelow >= c.ChargeTarget || c.ChargeTarget > 1 {
		return fmt.Errorf("dispatch: need 0 < recharge_below < charge_target <= 1")
	}
	if c.ChargeRateKWhPerSec <= 0 {
		return fmt.Errorf("dispatch: charge_rate_kwh_per_sec must be > 0")
	}
	if c.Speeds.Emergency <= 0 || c.Speeds.Normal <= 0 || c.Speeds.Low <= 0 {
		return fmt.Errorf("dispatch: speeds must be > 0")
	}
	if _, err := energy.Default().BaselineEnergy(0, c.DefaultMethod); err != nil {
		return fmt.Errorf("dispatch: default_method: %w", err)
	}
	return nil
}
