// Package terminal is the tcell frontend: spheres are drawn as colored discs
// and mouse clicks pick through the same camera as the browser.
package terminal

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/game"
	"github.com/zeusync/orbitpick/internal/core/observability/log"
	"github.com/zeusync/orbitpick/internal/core/observability/metrics"
	"github.com/zeusync/orbitpick/internal/core/orbit"
	"github.com/zeusync/orbitpick/internal/core/physics"
	"github.com/zeusync/orbitpick/internal/scene"
)

type Config struct {
	FPS int
	// CellAspect is the height/width ratio of one cell.
	CellAspect float64
}

func DefaultConfig() Config {
	return Config{FPS: 30, CellAspect: 2}
}

// FrameClock reports the elapsed seconds that drive orbit motion.
type FrameClock interface {
	Elapsed() float64
}

type App struct {
	screen    tcell.Screen
	session   *game.Session
	projector *scene.CameraProjector
	picker    *Picker
	clock     FrameClock
	metrics   *metrics.Collector
	config    Config
	logger    log.Log

	hud    *hudState
	frame  game.Frame
	sizes  map[orbit.BodyID]bodyLook
	width  int
	height int
	held   bool
}

type bodyLook struct {
	size  float64
	style tcell.Style
}

// New attaches the terminal HUD to the session bus. collector may be nil.
func New(
	screen tcell.Screen,
	session *game.Session,
	projector *scene.CameraProjector,
	picker *Picker,
	clock FrameClock,
	collector *metrics.Collector,
	config Config,
	logger log.Log,
) (*App, error) {
	if config.FPS <= 0 {
		config.FPS = DefaultConfig().FPS
	}
	if config.CellAspect <= 0 {
		config.CellAspect = DefaultConfig().CellAspect
	}

	a := &App{
		screen:    screen,
		session:   session,
		projector: projector,
		picker:    picker,
		clock:     clock,
		metrics:   collector,
		config:    config,
		logger:    logger.With(log.String("component", "terminal")),
		hud:       &hudState{},
		sizes:     make(map[orbit.BodyID]bodyLook),
	}

	eventBus := session.Bus()
	if _, err := eventBus.Subscribe(game.EventReset, a.onReset); err != nil {
		return nil, err
	}
	hud := game.NewHUD(counterSurface{a.hud}, bannerSurface{a.hud}, alertSurface{a.hud}, a.logger)
	if _, err := hud.Attach(eventBus); err != nil {
		return nil, err
	}
	if collector != nil {
		if _, err := collector.Attach(eventBus); err != nil {
			return nil, err
		}
	}

	a.resize()
	return a, nil
}

func (a *App) onReset(e bus.Event) error {
	ev, ok := e.(game.Reset)
	if !ok {
		return nil
	}
	a.hud.clearAlert()
	clear(a.sizes)
	for _, b := range ev.Layout.Bodies {
		a.sizes[b.ID] = bodyLook{size: b.Size, style: styleFor(b.Color)}
	}
	return nil
}

func styleFor(c orbit.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewHexColor(int32(c)))
}

// Run starts the session if needed and loops until quit or ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnableMouse()
	defer a.screen.DisableMouse()

	if !a.session.Started() {
		a.session.Start()
	}

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	a.logger.Info("Terminal frontend started",
		log.Int("width", a.width),
		log.Int("height", a.height),
		log.Int("fps", a.config.FPS))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !a.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			a.step(a.clock.Elapsed())
		}
	}
}

// step advances one frame and redraws.
func (a *App) step(elapsed float64) {
	a.frame = a.session.Tick(elapsed)
	if a.metrics != nil {
		a.metrics.RecordFrame()
	}
	a.draw()
}

func (a *App) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0
		if pressed && !a.held {
			x, y := ev.Position()
			a.clickCell(x, y)
		}
		a.held = pressed
	case *tcell.EventResize:
		a.resize()
		a.screen.Sync()
	}
	return true
}

// handleKey returns false when the user asked to quit.
func (a *App) handleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch r {
		case 'q', 'Q':
			return false
		case 'r', 'R':
			a.session.Reset()
		}
	}
	return true
}

func (a *App) resize() {
	a.width, a.height = a.screen.Size()
	a.hud.resize(a.width, a.height)
	if a.width == 0 || a.height == 0 {
		return
	}
	a.projector.SetAspect(float64(a.width) / (float64(a.height) * a.config.CellAspect))
	// just over half a cell diagonal
	a.picker.SetMinRadius(1.2 / float64(a.height))
}

// pointer maps the center of cell (x, y) to NDC.
func (a *App) pointer(x, y int) game.Pointer {
	return game.Pointer{
		X: (float64(x)+0.5)/float64(a.width)*2 - 1,
		Y: 1 - (float64(y)+0.5)/float64(a.height)*2,
	}
}

// cell maps an NDC point to the cell containing it.
func (a *App) cell(ndcX, ndcY float64) (int, int) {
	x := int(math.Floor((ndcX + 1) / 2 * float64(a.width)))
	y := int(math.Floor((1 - ndcY) / 2 * float64(a.height)))
	return x, y
}

func (a *App) clickCell(x, y int) game.PickResult {
	if a.width == 0 || a.height == 0 {
		return game.PickResult{Outcome: game.OutcomeIgnored}
	}
	result := a.session.Click(a.pointer(x, y))
	if a.metrics != nil {
		a.metrics.RecordPick(result.Outcome)
	}
	return result
}

type sprite struct {
	x, y   float64 // cell coordinates of the center
	rx, ry float64 // radii in cells
	depth  float64
	style  tcell.Style
}

func (a *App) sprites() []sprite {
	camera := a.projector.Camera()
	out := make([]sprite, 0, len(a.frame.Placements))
	for _, p := range a.frame.Placements {
		look, ok := a.sizes[p.ID]
		if !ok {
			continue
		}
		nx, ny, depth, visible := camera.Project(p.Position)
		if !visible {
			continue
		}
		r := camera.ProjectedRadius(look.size, depth)
		out = append(out, sprite{
			x:     (nx + 1) / 2 * float64(a.width),
			y:     (1 - ny) / 2 * float64(a.height),
			ry:    r * float64(a.height) / 2,
			rx:    r * float64(a.height) / 2 * a.config.CellAspect,
			depth: depth,
			style: look.style,
		})
	}
	// far first, so nearer spheres paint over
	sort.Slice(out, func(i, j int) bool { return out[i].depth > out[j].depth })
	return out
}

func (a *App) draw() {
	a.screen.Clear()

	if sun, ok := a.sunCell(); ok {
		a.screen.SetContent(sun[0], sun[1], '☼', nil, tcell.StyleDefault.Foreground(tcell.NewHexColor(0xffd700)))
	}
	for _, s := range a.sprites() {
		a.drawDisc(s)
	}
	a.drawHUD()
	a.screen.Show()
}

func (a *App) sunCell() ([2]int, bool) {
	nx, ny, _, ok := a.projector.Camera().Project(physics.Vec3{})
	if !ok {
		return [2]int{}, false
	}
	x, y := a.cell(nx, ny)
	return [2]int{x, y}, true
}

func (a *App) drawDisc(s sprite) {
	cx, cy := int(math.Floor(s.x)), int(math.Floor(s.y))
	a.setCell(cx, cy, '●', s.style)
	if s.rx < 1 && s.ry < 1 {
		return
	}
	for y := int(math.Floor(s.y - s.ry)); y <= int(math.Ceil(s.y+s.ry)); y++ {
		for x := int(math.Floor(s.x - s.rx)); x <= int(math.Ceil(s.x+s.rx)); x++ {
			dx := (float64(x) + 0.5 - s.x) / math.Max(s.rx, 0.5)
			dy := (float64(y) + 0.5 - s.y) / math.Max(s.ry, 0.5)
			if dx*dx+dy*dy <= 1 {
				a.setCell(x, y, '█', s.style)
			}
		}
	}
}

func (a *App) setCell(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return
	}
	a.screen.SetContent(x, y, r, nil, style)
}

func (a *App) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		a.setCell(x, y, r, style)
		x++
	}
}

func (a *App) drawHUD() {
	st := a.hud.snapshot()
	plain := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	if st.counting && st.width >= counterWidth {
		a.drawText(0, 0, fmt.Sprintf("Targets: %d", st.remaining), plain)
	}
	if st.banner != "" {
		x := (st.width - len(st.banner)) / 2
		a.drawText(x, st.height/2, st.banner, plain.Bold(true).Reverse(true))
	}
	if st.alert != "" {
		a.drawText(0, st.height-1, st.alert, plain.Reverse(true))
	}
}
