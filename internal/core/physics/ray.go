package physics

import "math"

// Ray is a half line. Dir is kept unit length by NewRay.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir.Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 { return r.Origin.Add(r.Dir.Scale(t)) }

// IntersectSphere returns the distance to the first surface hit in front of
// the origin. A ray starting inside the sphere hits the far side.
func (r Ray) IntersectSphere(center Vec3, radius float64) (float64, bool) {
	l := r.Origin.Sub(center)
	b := l.Dot(r.Dir)
	c := l.Dot(l) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
