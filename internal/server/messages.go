package server

import (
	"strconv"

	"github.com/zeusync/orbitpick/internal/core/game"
	"github.com/zeusync/orbitpick/internal/core/orbit"
	"github.com/zeusync/orbitpick/internal/core/physics"
)

// Outbound message types.
const (
	TypeLayout  = "layout"
	TypeFrame   = "frame"
	TypeCount   = "count"
	TypeCleared = "cleared"
	TypeAlert   = "alert"
)

// Inbound message types.
const (
	TypeHello = "hello"
	TypeClick = "click"
	TypeReset = "reset"
	TypeView  = "view"
)

// ClientMessage is every message a browser may send; Type selects the
// meaningful fields.
type ClientMessage struct {
	Type string `json:"type"`

	// click, in normalized device coordinates
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// hello: which HUD elements the page has
	Counter *bool `json:"counter,omitempty"`
	Banner  *bool `json:"banner,omitempty"`

	// view and hello
	Aspect   float64     `json:"aspect,omitempty"`
	Position *[3]float64 `json:"position,omitempty"`
	Target   *[3]float64 `json:"target,omitempty"`
}

type CameraMessage struct {
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
	FovDeg   float64    `json:"fov"`
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
}

type BodyMessage struct {
	ID     orbit.BodyID `json:"id"`
	Size   float64      `json:"size"`
	Color  string       `json:"color"`
	Target bool         `json:"target"`
}

type LayoutMessage struct {
	Type  string `json:"type"`
	Round int    `json:"round"`
	// Seed and Fingerprint are strings; JSON numbers lose uint64 precision in browsers.
	Seed        string        `json:"seed"`
	Fingerprint string        `json:"fingerprint"`
	Targets     int           `json:"targets"`
	Camera      CameraMessage `json:"camera"`
	Bodies      []BodyMessage `json:"bodies"`
}

type FrameMessage struct {
	Type string  `json:"type"`
	T    float64 `json:"t"`
	// Bodies holds [id, x, y, z] per live body.
	Bodies    [][4]float64 `json:"bodies"`
	Remaining int          `json:"remaining"`
	Cleared   bool         `json:"cleared"`
}

type CountMessage struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
}

type ClearedMessage struct {
	Type    string `json:"type"`
	Seconds string `json:"seconds"`
	Message string `json:"message"`
}

type AlertMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func vec(v physics.Vec3) [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

func newLayoutMessage(ev game.Reset, camera physics.Camera) LayoutMessage {
	bodies := make([]BodyMessage, 0, len(ev.Layout.Bodies))
	for _, b := range ev.Layout.Bodies {
		bodies = append(bodies, BodyMessage{ID: b.ID, Size: b.Size, Color: b.Color.Hex(), Target: b.IsTarget})
	}
	return LayoutMessage{
		Type:        TypeLayout,
		Round:       ev.Round,
		Seed:        strconv.FormatUint(ev.Layout.Seed, 10),
		Fingerprint: strconv.FormatUint(ev.Layout.Fingerprint(), 16),
		Targets:     ev.Layout.Targets,
		Camera: CameraMessage{
			Position: vec(camera.Position),
			Target:   vec(camera.Target),
			FovDeg:   camera.FovYDeg,
			Near:     camera.Near,
			Far:      camera.Far,
		},
		Bodies: bodies,
	}
}

func newFrameMessage(f game.Frame) FrameMessage {
	bodies := make([][4]float64, len(f.Placements))
	for i, p := range f.Placements {
		bodies[i] = [4]float64{float64(p.ID), p.Position.X, p.Position.Y, p.Position.Z}
	}
	return FrameMessage{
		Type:      TypeFrame,
		T:         f.Elapsed,
		Bodies:    bodies,
		Remaining: f.Remaining,
		Cleared:   f.Cleared,
	}
}
