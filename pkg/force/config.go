package force

import (
	"fmt"
	"math"
)

const (
	// DefaultCanvasWidth is the rendered canvas width in pixels.
	DefaultCanvasWidth = 720.0
	// DefaultCanvasHeight is the rendered canvas height in pixels.
	DefaultCanvasHeight = 500.0
	// DefaultSizeRatio shrinks the simulation area relative to the canvas
	// so the layout stays inside it.
	DefaultSizeRatio = 0.5
	// DefaultSteps is the number of simulation steps per render.
	DefaultSteps = 600
	// DefaultCharge is the per-node repulsion strength (negative repels).
	DefaultCharge = -120.0
	// DefaultLinkDistance is the rest length of link springs.
	DefaultLinkDistance = 30.0
	// DefaultGravity is the pull toward the center of the simulation area.
	DefaultGravity = 0.1
	// DefaultFriction is the velocity decay applied at integration.
	DefaultFriction = 0.9
	// DefaultTheta is the Barnes–Hut accuracy parameter.
	DefaultTheta = 0.8
	// DefaultSeed makes layouts reproducible.
	DefaultSeed = uint64(42)
)

// Config holds the simulation parameters.
type Config struct {
	Width        float64 // simulation area width
	Height       float64 // simulation area height
	Charge       float64
	LinkDistance float64
	LinkStrength float64 // in [0, 1]
	Gravity      float64
	Friction     float64 // in [0, 1]
	Theta        float64 // 0 computes every pair exactly
	Alpha        float64 // initial cooling parameter
	AlphaDecay   float64 // alpha multiplier per step
	Steps        int
	Seed         uint64
}

// DefaultConfig returns the parameters used by the HTTP renderer:
// a 360×250 area (half of the 720×500 canvas), 600 steps.
func DefaultConfig() Config {
	return Config{
		Width:        DefaultCanvasWidth * DefaultSizeRatio,
		Height:       DefaultCanvasHeight * DefaultSizeRatio,
		Charge:       DefaultCharge,
		LinkDistance: DefaultLinkDistance,
		LinkStrength: 1,
		Gravity:      DefaultGravity,
		Friction:     DefaultFriction,
		Theta:        DefaultTheta,
		Alpha:        0.1,
		AlphaDecay:   0.99,
		Steps:        DefaultSteps,
		Seed:         DefaultSeed,
	}
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	finite := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", name)
		}
		return nil
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"width", c.Width}, {"height", c.Height}, {"charge", c.Charge},
		{"link distance", c.LinkDistance}, {"link strength", c.LinkStrength},
		{"gravity", c.Gravity}, {"friction", c.Friction}, {"theta", c.Theta},
		{"alpha", c.Alpha}, {"alpha decay", c.AlphaDecay},
	} {
		if err := finite(f.name, f.v); err != nil {
			return err
		}
	}
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("size must be positive, got %gx%g", c.Width, c.Height)
	case c.Steps < 0:
		return fmt.Errorf("steps must not be negative, got %d", c.Steps)
	case c.LinkDistance < 0:
		return fmt.Errorf("link distance must not be negative, got %g", c.LinkDistance)
	case c.LinkStrength < 0 || c.LinkStrength > 1:
		return fmt.Errorf("link strength must be in [0, 1], got %g", c.LinkStrength)
	case c.Friction < 0 || c.Friction > 1:
		return fmt.Errorf("friction must be in [0, 1], got %g", c.Friction)
	case c.Gravity < 0:
		return fmt.Errorf("gravity must not be negative, got %g", c.Gravity)
	case c.Theta < 0:
		return fmt.Errorf("theta must not be negative, got %g", c.Theta)
	case c.AlphaDecay <= 0 || c.AlphaDecay > 1:
		return fmt.Errorf("alpha decay must be in (0, 1], got %g", c.AlphaDecay)
	}
	return nil
}
