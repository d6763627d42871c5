package orbit

// Simulator owns the live body collection and recomputes positions from
// absolute elapsed time. It is not safe for concurrent use.
type Simulator struct {
	bodies []Body
	index  map[BodyID]int
}

func NewSimulator(bodies []Body) *Simulator {
	s := &Simulator{
		bodies: make([]Body, len(bodies)),
		index:  make(map[BodyID]int, len(bodies)),
	}
	copy(s.bodies, bodies)
	s.reindex()
	return s
}

// Advance returns the position of every live body at elapsed time t, in
// creation order.
func (s *Simulator) Advance(t float64) []Placement {
	out := make([]Placement, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = Placement{ID: b.ID, Position: Position(b, t)}
	}
	return out
}

// Remove deletes a body from the live collection.
func (s *Simulator) Remove(id BodyID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.bodies); j++ {
		s.index[s.bodies[j].ID] = j
	}
	return true
}

func (s *Simulator) Body(id BodyID) (Body, bool) {
	i, ok := s.index[id]
	if !ok {
		return Body{}, false
	}
	return s.bodies[i], true
}

func (s *Simulator) Len() int { return len(s.bodies) }

// Bodies returns a copy of the live collection.
func (s *Simulator) Bodies() []Body {
	out := make([]Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Targets counts live target bodies.
func (s *Simulator) Targets() int {
	n := 0
	for _, b := range s.bodies {
		if b.IsTarget {
			n++
		}
	}
	return n
}

func (s *Simulator) reindex() {
	for i, b := range s.bodies {
		s.index[b.ID] = i
	}
}
