package orbit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func circle(id BodyID, r, angle, speed, y float64) Body {
	return Body{ID: id, Kind: KindCircle, Radius: r, InitialAngle: angle, AngularSpeed: speed, Elevation: y, Size: 0.5}
}

func ellipse(id BodyID, rx, rz, angle, speed, y float64) Body {
	return Body{ID: id, Kind: KindEllipse, RadiusX: rx, RadiusZ: rz, InitialAngle: angle, AngularSpeed: speed, Elevation: y, Size: 0.5}
}

var sampleTimes = []float64{0, 0.016, 0.5, 1, 3.3, 17.25, 120, 3600.125}

func TestPositionAtStart(t *testing.T) {
	p := Position(circle(1, 5, 0, 1, 2), 0)
	assert.InDelta(t, 5, p.X, eps)
	assert.InDelta(t, 2, p.Y, eps)
	assert.InDelta(t, 0, p.Z, eps)

	p = Position(ellipse(2, 10, 4, math.Pi/2, 0.5, -1), 0)
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, -1, p.Y, eps)
	assert.InDelta(t, 4, p.Z, eps)
}

func TestPositionQuarterTurn(t *testing.T) {
	b := circle(1, 3, 0, 0.5, 0)
	p := Position(b, math.Pi) // angle = pi/2
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, 3, p.Z, eps)
}

func TestCircleStaysOnCircle(t *testing.T) {
	b := circle(1, 7.5, 1.2, 0.7, 3)
	for _, tm := range sampleTimes {
		p := Position(b, tm)
		assert.InDelta(t, b.Radius*b.Radius, p.X*p.X+p.Z*p.Z, 1e-6, "t=%v", tm)
	}
}

func TestEllipseStaysOnEllipse(t *testing.T) {
	b := ellipse(1, 12, 4, 0.3, 0.9, -2)
	for _, tm := range sampleTimes {
		p := Position(b, tm)
		v := (p.X/b.RadiusX)*(p.X/b.RadiusX) + (p.Z/b.RadiusZ)*(p.Z/b.RadiusZ)
		assert.InDelta(t, 1.0, v, 1e-9, "t=%v", tm)
	}
}

func TestAdvanceDeterministicAndElevationFixed(t *testing.T) {
	layout := NewGenerator(DefaultCreationConfig(), 7).Generate()
	sim := NewSimulator(layout.Bodies)

	times := []float64{5, 0.1, 5, 99, 0.1, 42.42}
	first := map[float64][]Placement{}
	for _, tm := range times {
		got := sim.Advance(tm)
		if prev, ok := first[tm]; ok {
			assert.Equal(t, prev, got, "t=%v", tm)
		}
		first[tm] = got
		for i, pl := range got {
			assert.Equal(t, layout.Bodies[i].Elevation, pl.Position.Y)
			assert.Equal(t, layout.Bodies[i].ID, pl.ID)
		}
	}
}

func TestSimulatorRemove(t *testing.T) {
	sim := NewSimulator([]Body{
		circle(1, 3, 0, 1, 0),
		circle(2, 4, 0, 1, 0),
		circle(3, 5, 0, 1, 0),
	})
	require.Equal(t, 3, sim.Len())

	assert.True(t, sim.Remove(2))
	assert.False(t, sim.Remove(2))
	assert.Equal(t, 2, sim.Len())

	_, ok := sim.Body(2)
	assert.False(t, ok)
	b, ok := sim.Body(3)
	require.True(t, ok)
	assert.Equal(t, 5.0, b.Radius)

	ids := []BodyID{}
	for _, pl := range sim.Advance(1) {
		ids = append(ids, pl.ID)
	}
	assert.Equal(t, []BodyID{1, 3}, ids)
}

func TestSimulatorCopiesInput(t *testing.T) {
	bodies := []Body{circle(1, 3, 0, 1, 0)}
	sim := NewSimulator(bodies)
	bodies[0].Radius = 100

	b, _ := sim.Body(1)
	assert.Equal(t, 3.0, b.Radius)

	out := sim.Bodies()
	out[0].Radius = 50
	b, _ = sim.Body(1)
	assert.Equal(t, 3.0, b.Radius)
}

func TestGenerateWithinBounds(t *testing.T) {
	cfg := DefaultCreationConfig()
	require.NoError(t, cfg.Validate())

	for seed := uint64(0); seed < 50; seed++ {
		layout := NewGenerator(cfg, seed).Generate()
		n := len(layout.Bodies)
		assert.GreaterOrEqual(t, n, cfg.MinBodies)
		assert.LessOrEqual(t, n, cfg.MaxBodies)

		seen := map[BodyID]bool{}
		for _, b := range layout.Bodies {
			assert.False(t, seen[b.ID], "duplicate id %d", b.ID)
			seen[b.ID] = true

			assert.GreaterOrEqual(t, b.InitialAngle, 0.0)
			assert.Less(t, b.InitialAngle, 2*math.Pi)
			assert.Contains(t, cfg.Speeds, b.AngularSpeed)
			assert.Contains(t, cfg.Palette, b.Color)
			assert.GreaterOrEqual(t, b.Elevation, cfg.Elevation.Min)
			assert.Less(t, b.Elevation, cfg.Elevation.Max)
			assert.GreaterOrEqual(t, b.Size, cfg.Size.Min)
			assert.Less(t, b.Size, cfg.Size.Max)
			assert.Equal(t, b.Color == cfg.TargetColor, b.IsTarget)

			switch b.Kind {
			case KindCircle:
				assert.GreaterOrEqual(t, b.Radius, cfg.CircleRadius.Min)
				assert.Less(t, b.Radius, cfg.CircleRadius.Max)
			case KindEllipse:
				assert.GreaterOrEqual(t, b.RadiusX, cfg.EllipseRadiusX.Min)
				assert.Less(t, b.RadiusX, cfg.EllipseRadiusX.Max)
				assert.GreaterOrEqual(t, b.RadiusZ, cfg.EllipseRadiusZ.Min)
				assert.Less(t, b.RadiusZ, cfg.EllipseRadiusZ.Max)
			default:
				t.Fatalf("unexpected kind %v", b.Kind)
			}
		}
	}
}

func TestGenerateTargetTally(t *testing.T) {
	cfg := DefaultCreationConfig()

	// find a seed that yields exactly 45 bodies
	var layout Layout
	found := false
	for seed := uint64(0); seed < 10_000 && !found; seed++ {
		layout = NewGenerator(cfg, seed).Generate()
		found = len(layout.Bodies) == 45
	}
	require.True(t, found, "no seed produced 45 bodies")

	targets := 0
	for _, b := range layout.Bodies {
		if b.IsTarget {
			targets++
		}
	}
	assert.Equal(t, layout.Targets, targets)
	assert.Equal(t, 45-layout.Targets, len(layout.Bodies)-targets)
	assert.Equal(t, layout.Targets, NewSimulator(layout.Bodies).Targets())
}

func TestGenerateReproducible(t *testing.T) {
	cfg := DefaultCreationConfig()
	a := NewGenerator(cfg, 1234).Generate()
	b := NewGenerator(cfg, 1234).Generate()
	c := NewGenerator(cfg, 1235).Generate()

	assert.Equal(t, a, b)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestEllipseOnlyAndCircleOnly(t *testing.T) {
	cfg := DefaultCreationConfig()
	cfg.EllipseChance = 1
	for _, b := range NewGenerator(cfg, 3).Generate().Bodies {
		assert.Equal(t, KindEllipse, b.Kind)
		assert.Zero(t, b.Radius)
	}

	cfg.EllipseChance = 0
	for _, b := range NewGenerator(cfg, 3).Generate().Bodies {
		assert.Equal(t, KindCircle, b.Kind)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultCreationConfig()
	cfg.MaxBodies = 10
	cfg.Speeds = []float64{0.5, -1}
	cfg.Palette = nil
	cfg.EllipseRadiusX = Range{Min: 5, Max: 6}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCreation)
	assert.Contains(t, err.Error(), "body count")
	assert.Contains(t, err.Error(), "speed -1")
	assert.Contains(t, err.Error(), "empty palette")
	assert.Contains(t, err.Error(), "wider")
}

func TestValidateRejectsNonFiniteAndHugeCounts(t *testing.T) {
	cases := map[string]func(*CreationConfig){
		"infinite circle radius": func(c *CreationConfig) { c.CircleRadius.Max = math.Inf(1) },
		"nan elevation":          func(c *CreationConfig) { c.Elevation.Min = math.NaN() },
		"nan size":               func(c *CreationConfig) { c.Size.Max = math.NaN() },
		"infinite ellipse z":     func(c *CreationConfig) { c.EllipseRadiusZ.Min = math.Inf(-1) },
		"nan ellipse chance":     func(c *CreationConfig) { c.EllipseChance = math.NaN() },
		"max int bodies":         func(c *CreationConfig) { c.MinBodies, c.MaxBodies = 0, math.MaxInt },
		"over limit":             func(c *CreationConfig) { c.MaxBodies = MaxBodiesLimit + 1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultCreationConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidCreation)
		})
	}

	cfg := DefaultCreationConfig()
	cfg.MinBodies, cfg.MaxBodies = MaxBodiesLimit, MaxBodiesLimit
	require.NoError(t, cfg.Validate())
	layout := NewGenerator(cfg, 1).Generate()
	assert.Len(t, layout.Bodies, MaxBodiesLimit)
}

func TestSeedFromPhrase(t *testing.T) {
	assert.Equal(t, SeedFromPhrase("sunday-run"), SeedFromPhrase("sunday-run"))
	assert.NotEqual(t, SeedFromPhrase("sunday-run"), SeedFromPhrase("monday-run"))
}

func TestColor(t *testing.T) {
	c, err := ParseColor("#ffff00")
	require.NoError(t, err)
	assert.Equal(t, Color(0xffff00), c)

	c, err = ParseColor("0x00ff00")
	require.NoError(t, err)
	assert.Equal(t, Color(0x00ff00), c)

	_, err = ParseColor("#1000000")
	assert.Error(t, err)

	r, g, b := Color(0x123456).RGB()
	assert.Equal(t, []uint8{0x12, 0x34, 0x56}, []uint8{r, g, b})
	assert.Equal(t, "#123456", Color(0x123456).Hex())
	assert.Equal(t, "ellipse", KindEllipse.String())
}
