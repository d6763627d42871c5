// Package scene holds the default rendering collaborators: the frame clock,
// a camera-backed projector and a ray/sphere intersector.
package scene

import (
	"sync"
	"time"

	"github.com/zeusync/orbitpick/internal/core/game"
	"github.com/zeusync/orbitpick/internal/core/orbit"
	"github.com/zeusync/orbitpick/internal/core/physics"
)

var (
	_ game.Projector   = (*CameraProjector)(nil)
	_ game.Intersector = NearestIntersector{}
)

// DefaultCamera frames the whole orbit field from slightly above.
func DefaultCamera() physics.Camera {
	return physics.Camera{
		Position: physics.V(0, 6, 28),
		Target:   physics.V(0, 0, 0),
		FovYDeg:  75,
		Aspect:   16.0 / 9.0,
		Near:     0.1,
		Far:      1000,
	}
}

// Clock reports monotonic elapsed seconds since Start, like a render loop clock.
type Clock struct {
	mu    sync.Mutex
	start time.Time
	now   func() time.Time
}

func NewClock() *Clock {
	c := &Clock{now: time.Now}
	c.Start()
	return c
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = c.now()
}

// Elapsed uses the monotonic reading of time.Now, so wall clock jumps don't affect it.
func (c *Clock) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now().Sub(c.start).Seconds()
}

// CameraProjector turns NDC pointers into rays from the camera eye. The
// camera may change between clicks (resize changes the aspect).
type CameraProjector struct {
	mu     sync.RWMutex
	camera physics.Camera
}

func NewCameraProjector(camera physics.Camera) *CameraProjector {
	return &CameraProjector{camera: camera}
}

func (p *CameraProjector) Project(ptr game.Pointer) physics.Ray {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.camera.Unproject(ptr.X, ptr.Y)
}

func (p *CameraProjector) Camera() physics.Camera {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.camera
}

// SetView moves the eye, e.g. after the viewer orbits the camera. A view
// with the eye on the target is ignored.
func (p *CameraProjector) SetView(position, target physics.Vec3) {
	if position.Sub(target).Length() == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.camera.Position = position
	p.camera.Target = target
}

func (p *CameraProjector) SetAspect(aspect float64) {
	if aspect <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.camera.Aspect = aspect
}

// NearestIntersector hit-tests candidates as spheres and returns the hit
// closest to the ray origin. Equal distances go to the lower id.
type NearestIntersector struct{}

func (NearestIntersector) Intersect(ray physics.Ray, candidates []game.Candidate) (orbit.BodyID, bool) {
	var (
		best     orbit.BodyID
		bestDist float64
		found    bool
	)
	for _, c := range candidates {
		d, ok := ray.IntersectSphere(c.Center, c.Radius)
		if !ok {
			continue
		}
		if !found || d < bestDist || (d == bestDist && c.ID < best) {
			best, bestDist, found = c.ID, d, true
		}
	}
	return best, found
}
