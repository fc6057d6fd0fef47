package scroll

import (
	"fmt"
	"time"
)

// Policy names a scroll preset.
type Policy string

const (
	// PolicyStep advances a fixed step after every sample.
	PolicyStep Policy = "step"
	// PolicyAdaptive retries a position that yielded nothing and never lets
	// the offset fall back below the furthest point reached.
	PolicyAdaptive Policy = "adaptive"
)

// Config tunes the driver. Distances are in pixels.
type Config struct {
	StepSize        float64
	StepDelay       time.Duration
	SettleDelay     time.Duration
	StuckThreshold  int
	StuckEpsilon    float64
	BottomTolerance float64
	MaxSteps        int

	Adaptive     bool
	EmptyRetries int
	RetryDelay   time.Duration
}

// StepConfig is the fixed-step policy.
func StepConfig() Config {
	return Config{
		StepSize:        150,
		StepDelay:       100 * time.Millisecond,
		SettleDelay:     300 * time.Millisecond,
		StuckThreshold:  3,
		StuckEpsilon:    1,
		BottomTolerance: 5,
		MaxSteps:        2000,
	}
}

// AdaptiveConfig is the fixed-step policy plus retry-on-empty and the
// offset ratchet.
func AdaptiveConfig() Config {
	cfg := StepConfig()
	cfg.Adaptive = true
	cfg.EmptyRetries = 2
	cfg.RetryDelay = 250 * time.Millisecond
	return cfg
}

// ConfigFor returns the preset for p.
func ConfigFor(p Policy) (Config, error) {
	switch p {
	case PolicyStep:
		return StepConfig(), nil
	case PolicyAdaptive, "":
		return AdaptiveConfig(), nil
	}
	return Config{}, fmt.Errorf("unknown scroll policy %q", p)
}

// Validate reports settings the driver cannot run with.
func (c Config) Validate() error {
	if c.StepSize <= 0 {
		return fmt.Errorf("step size must be positive, got %v", c.StepSize)
	}
	if c.StuckThreshold <= 0 {
		return fmt.Errorf("stuck threshold must be positive, got %d", c.StuckThreshold)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", c.MaxSteps)
	}
	if c.StepDelay < 0 || c.SettleDelay < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.EmptyRetries < 0 {
		return fmt.Errorf("empty retries must not be negative, got %d", c.EmptyRetries)
	}
	return nil
}
