package config

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/orbitpick/internal/core/observability/log"
	"github.com/zeusync/orbitpick/internal/core/orbit"
	"github.com/zeusync/orbitpick/internal/core/physics"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, physics.V(0, 6, 28), cfg.Camera.Position)
	assert.Equal(t, 75.0, cfg.Camera.Camera().FovYDeg)
	assert.Equal(t, log.LevelInfo, cfg.Log.ParsedLevel())
	assert.Equal(t, 500*time.Millisecond, cfg.Server.HelloTimeout)
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	doc := `
log:
  level: debug
server:
  listen_addr: ":9000"
  write_timeout: 2s
game:
  seed: 42
  creation:
    min_bodies: 10
    max_bodies: 12
    target_color: "#ff00ff"
camera:
  position: {x: 0, y: 10, z: 40}
`
	cfg, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, 2*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30, cfg.Server.TickRate)
	assert.Equal(t, uint64(42), cfg.Game.ResolveSeed())
	assert.Equal(t, 10, cfg.Game.Creation.MinBodies)
	assert.Equal(t, orbit.Color(0xff00ff), cfg.Game.Creation.TargetColor)
	assert.Len(t, cfg.Game.Creation.Palette, 6)
	assert.Equal(t, physics.V(0, 10, 40), cfg.Camera.Position)
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("server:\n  listen_adr: x\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigRead)
}

func TestValidateCollectsEverything(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Server.TickRate = 0
	cfg.Server.ClickBurst = 0
	cfg.Camera.FovDeg = 180
	cfg.Game.Creation.Palette = nil
	cfg.Game.Creation.CircleRadius.Max = math.Inf(1)
	cfg.Game.Creation.MaxBodies = math.MaxInt

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, orbit.ErrInvalidCreation)
	for _, want := range []string{"log.level", "tick_rate", "click_burst", "fov_deg", "empty palette", "circle radius", "body count"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDecodeRejectsNonFiniteRanges(t *testing.T) {
	_, err := Decode(strings.NewReader("game:\n  creation:\n    elevation: {min: .nan, max: 4}\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, orbit.ErrInvalidCreation)
	assert.Contains(t, err.Error(), "elevation")
}

func TestResolveSeed(t *testing.T) {
	g := GameConfig{Seed: 7, SeedPhrase: "sunday-run"}
	assert.Equal(t, orbit.SeedFromPhrase("sunday-run"), g.ResolveSeed())

	g.SeedPhrase = ""
	assert.Equal(t, uint64(7), g.ResolveSeed())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orbitpick.yaml")
	require.NoError(t, os.WriteFile(path, []byte("terminal:\n  fps: 20\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Terminal.FPS)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigRead)

	require.NoError(t, os.WriteFile(path, []byte("terminal:\n  fps: 0\n"), 0o600))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestWriteThenDecode(t *testing.T) {
	cfg := Default()
	cfg.Game.Seed = 99
	cfg.Server.WriteTimeout = 1500 * time.Millisecond

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))
	assert.Contains(t, buf.String(), "ffff00")

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
