package orbit

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var ErrInvalidCreation = errors.New("invalid creation config")

// MaxBodiesLimit bounds CreationConfig.MaxBodies.
const MaxBodiesLimit = 10_000

// Range is a half-open interval [Min, Max).
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) Width() float64 { return r.Max - r.Min }

func (r Range) finite() bool {
	for _, v := range [...]float64{r.Min, r.Max} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (r Range) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*r.Width()
}

// CreationConfig controls how a layout is randomized.
type CreationConfig struct {
	MinBodies int `yaml:"min_bodies"`
	MaxBodies int `yaml:"max_bodies"`

	Size        Range   `yaml:"size"`
	Palette     []Color `yaml:"palette"`
	TargetColor Color   `yaml:"target_color"`

	// EllipseChance is the probability of an elliptical orbit.
	EllipseChance float64   `yaml:"ellipse_chance"`
	Speeds        []float64 `yaml:"speeds"`
	Elevation     Range     `yaml:"elevation"`

	CircleRadius   Range `yaml:"circle_radius"`
	EllipseRadiusX Range `yaml:"ellipse_radius_x"`
	EllipseRadiusZ Range `yaml:"ellipse_radius_z"`
}

// DefaultCreationConfig mirrors the classic layout: 40-60 spheres, six colors,
// yellow targets.
func DefaultCreationConfig() CreationConfig {
	return CreationConfig{
		MinBodies:      40,
		MaxBodies:      60,
		Size:           Range{Min: 0.3, Max: 0.8},
		Palette:        []Color{0xff0000, 0x00ff00, 0x0000ff, 0xffff00, 0x00ffff, 0xff00ff},
		TargetColor:    0xffff00,
		EllipseChance:  0.5,
		Speeds:         []float64{0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		Elevation:      Range{Min: -4, Max: 4},
		CircleRadius:   Range{Min: 3, Max: 15},
		EllipseRadiusX: Range{Min: 5, Max: 15},
		EllipseRadiusZ: Range{Min: 3, Max: 8},
	}
}

// Validate reports every problem at once. A config that validates can always
// be generated from.
func (c CreationConfig) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidCreation}, args...)...))
	}

	if c.MinBodies < 0 || c.MaxBodies < c.MinBodies || c.MaxBodies > MaxBodiesLimit {
		add("body count range [%d, %d] outside [0, %d]", c.MinBodies, c.MaxBodies, MaxBodiesLimit)
	}
	if !c.Size.finite() || c.Size.Min <= 0 || c.Size.Max < c.Size.Min {
		add("size range [%g, %g)", c.Size.Min, c.Size.Max)
	}
	if len(c.Palette) == 0 {
		add("empty palette")
	}
	if !(c.EllipseChance >= 0 && c.EllipseChance <= 1) {
		add("ellipse chance %g outside [0, 1]", c.EllipseChance)
	}
	if len(c.Speeds) == 0 {
		add("empty speed set")
	}
	for _, s := range c.Speeds {
		if s <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
			add("speed %g must be positive and finite", s)
		}
	}
	if !c.Elevation.finite() || c.Elevation.Max < c.Elevation.Min {
		add("elevation range [%g, %g)", c.Elevation.Min, c.Elevation.Max)
	}
	for _, r := range []struct {
		name string
		Range
	}{
		{"circle radius", c.CircleRadius},
		{"ellipse radius x", c.EllipseRadiusX},
		{"ellipse radius z", c.EllipseRadiusZ},
	} {
		if !r.finite() || r.Min <= 0 || r.Max < r.Min {
			add("%s range [%g, %g)", r.name, r.Min, r.Max)
		}
	}
	if c.EllipseRadiusX.Width() <= c.EllipseRadiusZ.Width() {
		add("ellipse x range must be wider than z range")
	}

	return errors.Join(errs...)
}

// Layout is one randomized body set.
type Layout struct {
	Seed    uint64
	Bodies  []Body
	Targets int
}

// Generator creates layouts from an explicit seed so runs are reproducible.
type Generator struct {
	cfg  CreationConfig
	rng  *rand.Rand
	seed uint64
}

func NewGenerator(cfg CreationConfig, seed uint64) *Generator {
	return &Generator{
		cfg:  cfg,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// Generate draws a full layout. Calling it again continues the same random
// stream, so a second call yields a different layout.
func (g *Generator) Generate() Layout {
	cfg := g.cfg
	n := cfg.MinBodies + g.rng.IntN(cfg.MaxBodies-cfg.MinBodies+1)

	layout := Layout{Seed: g.seed, Bodies: make([]Body, 0, n)}
	for i := 0; i < n; i++ {
		b := g.body(BodyID(i + 1))
		if b.IsTarget {
			layout.Targets++
		}
		layout.Bodies = append(layout.Bodies, b)
	}
	return layout
}

func (g *Generator) body(id BodyID) Body {
	cfg, rng := g.cfg, g.rng

	b := Body{ID: id}
	b.Size = cfg.Size.sample(rng)
	b.Color = cfg.Palette[rng.IntN(len(cfg.Palette))]
	b.IsTarget = b.Color == cfg.TargetColor

	if rng.Float64() < cfg.EllipseChance {
		b.Kind = KindEllipse
	} else {
		b.Kind = KindCircle
	}
	b.InitialAngle = rng.Float64() * 2 * math.Pi
	b.AngularSpeed = cfg.Speeds[rng.IntN(len(cfg.Speeds))]
	b.Elevation = cfg.Elevation.sample(rng)

	switch b.Kind {
	case KindEllipse:
		b.RadiusX = cfg.EllipseRadiusX.sample(rng)
		b.RadiusZ = cfg.EllipseRadiusZ.sample(rng)
	default:
		b.Radius = cfg.CircleRadius.sample(rng)
	}
	return b
}
