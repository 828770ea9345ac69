package force

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// chargeCheckInterval is how many bodies receive their repulsion between
// context checks inside one step.
const chargeCheckInterval = 256

// Link is a spring between two node indices.
type Link struct {
	Source int
	Target int
}

// Point is a 2D position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout is the result of a finished simulation.
type Layout struct {
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Steps     int     `json:"steps"`
	Positions []Point `json:"positions"`
}

type body struct {
	x, y   float64
	px, py float64 // previous position; velocity is (x-px, y-py)
	weight float64 // degree
}

func (b *body) Coord2() r2.Vec { return r2.Vec{X: b.x, Y: b.y} }

// Mass is the body's share of the total charge; every body carries the same.
func (b *body) Mass() float64 { return 1 }

// Simulation holds the state of one layout run. It is not safe for concurrent use.
type Simulation struct {
	cfg       Config
	nodes     []body
	particles []barneshut.Particle2
	links     []Link
	alpha float64
	steps int
	rng   *rand.Rand
}

// New creates a simulation over n nodes. Initial positions are uniform in
// the simulation area. It fails if cfg is invalid or a link refers to a
// node outside [0, n).
func New(n int, links []Link, cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("node count must not be negative, got %d", n)
	}

	s := &Simulation{
		cfg:   cfg,
		nodes: make([]body, n),
		links: append([]Link(nil), links...),
		alpha: cfg.Alpha,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}

	for i, l := range s.links {
		if l.Source < 0 || l.Source >= n || l.Target < 0 || l.Target >= n {
			return nil, fmt.Errorf("link %d (%d->%d) out of range for %d nodes", i, l.Source, l.Target, n)
		}
		s.nodes[l.Source].weight++
		s.nodes[l.Target].weight++
	}

	s.particles = make([]barneshut.Particle2, n)
	for i := range s.nodes {
		b := &s.nodes[i]
		b.x = s.rng.Float64() * cfg.Width
		b.y = s.rng.Float64() * cfg.Height
		b.px, b.py = b.x, b.y
		s.particles[i] = b
	}
	return s, nil
}

// Alpha returns the current cooling parameter.
func (s *Simulation) Alpha() float64 { return s.alpha }

// StepsTaken returns how many steps have run.
func (s *Simulation) StepsTaken() int { return s.steps }

// Step advances the simulation by one step.
func (s *Simulation) Step() {
	_ = s.step(context.Background())
}

// step advances the simulation by one step, abandoning it half done if
// ctx ends while repulsion is being applied.
func (s *Simulation) step(ctx context.Context) error {
	s.alpha *= s.cfg.AlphaDecay
	s.applyLinks()
	s.applyGravity()
	if err := s.applyCharge(ctx); err != nil {
		return err
	}
	s.integrate()
	s.steps++
	return nil
}

// Run performs exactly cfg.Steps steps and returns the positions. It
// returns ctx.Err() if the context ends first. The context is checked
// before every step and periodically within one, so large graphs stop
// close to the deadline.
func (s *Simulation) Run(ctx context.Context) (Layout, error) {
	for i := 0; i < s.cfg.Steps; i++ {
		if err := ctx.Err(); err != nil {
			return Layout{}, err
		}
		if err := s.step(ctx); err != nil {
			return Layout{}, err
		}
	}
	return s.Layout(), nil
}

// Layout snapshots the current positions.
func (s *Simulation) Layout() Layout {
	pos := make([]Point, len(s.nodes))
	for i, b := range s.nodes {
		pos[i] = Point{X: b.x, Y: b.y}
	}
	return Layout{Width: s.cfg.Width, Height: s.cfg.Height, Steps: s.steps, Positions: pos}
}

// applyLinks moves both endpoints of every link toward the rest length,
// the lighter endpoint moving more.
func (s *Simulation) applyLinks() {
	for _, l := range s.links {
		src, dst := &s.nodes[l.Source], &s.nodes[l.Target]
		dx, dy := dst.x-src.x, dst.y-src.y
		d2 := dx*dx + dy*dy
		if d2 == 0 {
			continue
		}
		d := math.Sqrt(d2)
		f := s.alpha * s.cfg.LinkStrength * (d - s.cfg.LinkDistance) / d
		dx, dy = dx*f, dy*f

		k := src.weight / (src.weight + dst.weight)
		dst.x -= dx * k
		dst.y -= dy * k
		k = 1 - k
		src.x += dx * k
		src.y += dy * k
	}
}

func (s *Simulation) applyGravity() {
	k := s.alpha * s.cfg.Gravity
	if k == 0 {
		return
	}
	cx, cy := s.cfg.Width/2, s.cfg.Height/2
	for i := range s.nodes {
		b := &s.nodes[i]
		b.x += (cx - b.x) * k
		b.y += (cy - b.y) * k
	}
}

// applyCharge adjusts previous positions, so repulsion acts as a velocity
// change. Distant groups of bodies are approximated by their centroid
// when Theta > 0.
func (s *Simulation) applyCharge(ctx context.Context) error {
	if s.cfg.Charge == 0 || len(s.nodes) < 2 {
		return nil
	}
	pointCharge := s.alpha * s.cfg.Charge

	plane, err := barneshut.NewPlane(s.particles)
	if err != nil {
		// Coincident bodies cannot be split into quadrants; sum every pair instead.
		plane = &barneshut.Plane{Particles: s.particles}
	}

	repulse := func(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		if p1 == p2 {
			return r2.Vec{}
		}
		d2 := v.X*v.X + v.Y*v.Y
		if d2 == 0 {
			v = r2.Vec{X: (s.rng.Float64() - 0.5) * 1e-6, Y: (s.rng.Float64() - 0.5) * 1e-6}
			d2 = v.X*v.X + v.Y*v.Y
		}
		return r2.Scale(pointCharge*m2/d2, v)
	}

	for i := range s.nodes {
		if i%chargeCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		b := &s.nodes[i]
		f := plane.ForceOn(b, s.cfg.Theta, repulse)
		b.px -= f.X
		b.py -= f.Y
	}
	return nil
}

func (s *Simulation) integrate() {
	f := s.cfg.Friction
	for i := range s.nodes {
		b := &s.nodes[i]
		x, y := b.x, b.y
		b.x -= (b.px - x) * f
		b.y -= (b.py - y) * f
		b.px, b.py = x, y
	}
}
