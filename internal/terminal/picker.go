package terminal

import (
	"math"
	"sync"

	"github.com/zeusync/orbitpick/internal/core/game"
	"github.com/zeusync/orbitpick/internal/core/orbit"
	"github.com/zeusync/orbitpick/internal/core/physics"
	"github.com/zeusync/orbitpick/internal/scene"
)

var _ game.Intersector = (*Picker)(nil)

// Picker is the nearest-hit intersector with every sphere grown to at least
// minNDC on screen. Clicks arrive at cell centers, and a cell is usually
// larger than the sphere drawn in it.
type Picker struct {
	projector *scene.CameraProjector
	inner     scene.NearestIntersector

	mu     sync.RWMutex
	minNDC float64
}

func NewPicker(projector *scene.CameraProjector) *Picker {
	return &Picker{projector: projector}
}

// SetMinRadius sets the smallest pickable radius in NDC height units.
func (p *Picker) SetMinRadius(ndc float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.minNDC = math.Max(ndc, 0)
}

func (p *Picker) Intersect(ray physics.Ray, candidates []game.Candidate) (orbit.BodyID, bool) {
	p.mu.RLock()
	minNDC := p.minNDC
	p.mu.RUnlock()

	if minNDC == 0 {
		return p.inner.Intersect(ray, candidates)
	}

	camera := p.projector.Camera()
	grown := make([]game.Candidate, len(candidates))
	for i, c := range candidates {
		grown[i] = c
		if _, _, depth, ok := camera.Project(c.Center); ok {
			grown[i].Radius = math.Max(c.Radius, camera.WorldRadius(minNDC, depth))
		}
	}
	return p.inner.Intersect(ray, grown)
}
