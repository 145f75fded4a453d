package planner

import (
	"fmt"

	"github.com/kilianp07/dronedispatch/core/model"
)

// Config tunes the tree search and the traffic rules.
type Config struct {
	StepSize            float64 `json:"step_size"`
	GoalRadius          float64 `json:"goal_radius"`
	GoalBias            float64 `json:"goal_bias"`
	MaxIterations       int     `json:"max_iterations"`
	EmergencyIterations int     `json:"emergency_iterations"`
	BoundsMargin        float64 `json:"bounds_margin"`
	// SampleStep is the spacing of separation checks along a segment.
	SampleStep float64 `json:"sample_step"`

	LaneWidth      float64 `json:"lane_width"`
	ObstacleRadius float64 `json:"obstacle_radius"`
	// SameLaneFactor multiplies LaneWidth for comparable drones sharing a lane.
	SameLaneFactor float64 `json:"same_lane_factor"`
	// EmergencyYieldFactor scales ObstacleRadius when a normal drone meets emergency traffic.
	EmergencyYieldFactor float64 `json:"emergency_yield_factor"`
	// MinSeparation applies between comparable drones in different lanes.
	MinSeparation float64 `json:"min_separation"`
	// MiddleLaneThreshold is the least urgent tier still flying the middle lane.
	MiddleLaneThreshold model.Priority `json:"middle_lane_threshold"`

	Seed int64 `json:"seed"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	c := Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.StepSize == 0 {
		c.StepSize = 2.0
	}
	if c.GoalRadius == 0 {
		c.GoalRadius = 3.0
	}
	if c.GoalBias == 0 {
		c.GoalBias = 0.1
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 500
	}
	if c.EmergencyIterations == 0 {
		c.EmergencyIterations = 300
	}
	if c.BoundsMargin == 0 {
		c.BoundsMargin = 5
	}
	if c.SampleStep == 0 {
		c.SampleStep = 0.25
	}
	if c.LaneWidth == 0 {
		c.LaneWidth = 1.0
	}
	if c.ObstacleRadius == 0 {
		c.ObstacleRadius = 1.5
	}
	if c.SameLaneFactor == 0 {
		c.SameLaneFactor = 1.5
	}
	if c.EmergencyYieldFactor == 0 {
		c.EmergencyYieldFactor = 3
	}
	if c.MinSeparation == 0 {
		c.MinSeparation = 0.5
	}
	if c.MiddleLaneThreshold == 0 {
		c.MiddleLaneThreshold = model.PriorityEmergent
	}
}

// Validate rejects settings the search cannot run with.
func (c Config) Validate() error {
	switch {
	case c.StepSize <= 0:
		return fmt.Errorf("step_size must be positive")
	case c.GoalRadius <= 0:
		return fmt.Errorf("goal_radius must be positive")
	case c.GoalBias < 0 || c.GoalBias > 1:
		return fmt.Errorf("goal_bias must be within [0,1]")
	case c.MaxIterations <= 0 || c.EmergencyIterations <= 0:
		return fmt.Errorf("iteration budgets must be positive")
	case c.SampleStep <= 0:
		return fmt.Errorf("sample_step must be positive")
	case c.LaneWidth <= 0 || c.ObstacleRadius <= 0:
		return fmt.Errorf("lane_width and obstacle_radius must be positive")
	case c.EmergencyYieldFactor < 1:
		return fmt.Errorf("emergency_yield_factor must be at least 1")
	case !c.MiddleLaneThreshold.Valid():
		return fmt.Errorf("middle_lane_threshold must be a valid tier")
	}
	return nil
}
