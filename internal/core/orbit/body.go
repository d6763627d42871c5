package orbit

import (
	"fmt"
	"math"

	"github.com/zeusync/orbitpick/internal/core/physics"
)

// BodyID identifies a body within one layout. IDs start at 1 and are never reused.
type BodyID uint32

// Kind is the shape of a planar orbit.
type Kind uint8

const (
	KindCircle Kind = iota
	KindEllipse
)

func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Color is a 0xRRGGBB value.
type Color uint32

func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

func (c Color) Hex() string { return fmt.Sprintf("#%06x", uint32(c)&0xffffff) }

// Body describes one orbiting sphere. It is immutable after creation.
type Body struct {
	ID   BodyID
	Kind Kind

	// Radius is used by circles, RadiusX/RadiusZ by ellipses.
	Radius  float64
	RadiusX float64
	RadiusZ float64

	InitialAngle float64
	AngularSpeed float64 // rad/s
	Elevation    float64

	IsTarget bool
	Size     float64
	Color    Color
}

// Position computes where b is at elapsed time t (seconds). It depends only
// on the orbit parameters and t.
func Position(b Body, t float64) physics.Vec3 {
	angle := b.InitialAngle + t*b.AngularSpeed
	cos, sin := math.Cos(angle), math.Sin(angle)

	rx, rz := b.Radius, b.Radius
	if b.Kind == KindEllipse {
		rx, rz = b.RadiusX, b.RadiusZ
	}

	return physics.Vec3{X: rx * cos, Y: b.Elevation, Z: rz * sin}
}

// Period is the time of one full revolution.
func (b Body) Period() float64 {
	return 2 * math.Pi / b.AngularSpeed
}

// Placement is a body's position for one frame.
type Placement struct {
	ID       BodyID
	Position physics.Vec3
}
