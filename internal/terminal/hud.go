package terminal

import "sync"

const (
	counterWidth = 16
	bannerWidth  = 26
)

// hudState backs the on-screen counter and banner. The alert line stands in
// for the banner on screens too small to center it.
type hudState struct {
	mu        sync.Mutex
	width     int
	height    int
	remaining int
	counting  bool
	banner    string
	alert     string
}

func (h *hudState) resize(w, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width, h.height = w, height
}

func (h *hudState) clearAlert() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.alert = ""
}

// hudView is a copy of the HUD taken for one redraw.
type hudView struct {
	width     int
	height    int
	remaining int
	counting  bool
	banner    string
	alert     string
}

func (h *hudState) snapshot() hudView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return hudView{
		width:     h.width,
		height:    h.height,
		remaining: h.remaining,
		counting:  h.counting,
		banner:    h.banner,
		alert:     h.alert,
	}
}

type counterSurface struct{ *hudState }

func (s counterSurface) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width >= counterWidth && s.height >= 1
}

func (s counterSurface) SetCount(remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remaining, s.counting = remaining, true
}

type bannerSurface struct{ *hudState }

func (s bannerSurface) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width >= bannerWidth && s.height >= 3
}

func (s bannerSurface) Show(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = message
}

func (s bannerSurface) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banner = ""
}

type alertSurface struct{ *hudState }

func (s alertSurface) Alert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = message
}
