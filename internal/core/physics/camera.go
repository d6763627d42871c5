package physics

import "math"

var WorldUp = Vec3{Y: 1}

// Camera is a perspective camera looking from Position at Target.
// NDC coordinates run from -1 (left, bottom) to +1 (right, top).
type Camera struct {
	Position Vec3
	Target   Vec3
	FovYDeg  float64
	Aspect   float64
	Near     float64
	Far      float64
}

// basis returns forward, right and up unit vectors.
func (c Camera) basis() (forward, right, up Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	right = forward.Cross(WorldUp).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

func (c Camera) tanHalfFov() float64 {
	return math.Tan(c.FovYDeg * math.Pi / 360)
}

// Unproject turns an NDC point into a world-space pick ray from the eye.
func (c Camera) Unproject(ndcX, ndcY float64) Ray {
	forward, right, up := c.basis()
	th := c.tanHalfFov()
	dir := forward.
		Add(right.Scale(ndcX * th * c.Aspect)).
		Add(up.Scale(ndcY * th))
	return NewRay(c.Position, dir)
}

// Project maps a world point to NDC. depth is the distance along the view
// axis; ok is false for points outside the near/far range.
func (c Camera) Project(p Vec3) (ndcX, ndcY, depth float64, ok bool) {
	forward, right, up := c.basis()
	d := p.Sub(c.Position)
	depth = d.Dot(forward)
	if depth <= c.Near || (c.Far > 0 && depth > c.Far) {
		return 0, 0, depth, false
	}
	th := c.tanHalfFov()
	ndcX = d.Dot(right) / (depth * th * c.Aspect)
	ndcY = d.Dot(up) / (depth * th)
	return ndcX, ndcY, depth, true
}

// ProjectedRadius approximates the NDC height of a sphere of the given radius at depth.
func (c Camera) ProjectedRadius(radius, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return radius / (depth * c.tanHalfFov())
}

// WorldRadius is the inverse of ProjectedRadius.
func (c Camera) WorldRadius(ndcRadius, depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return ndcRadius * depth * c.tanHalfFov()
}
