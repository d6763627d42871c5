// Package config loads the orbitpick YAML configuration.
package config

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/zeusync/orbitpick/internal/core/observability/log"
	"github.com/zeusync/orbitpick/internal/core/orbit"
	"github.com/zeusync/orbitpick/internal/core/physics"
)

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
	Game     GameConfig     `yaml:"game"`
	Camera   CameraConfig   `yaml:"camera"`
	Terminal TerminalConfig `yaml:"terminal"`
	Audio    AudioConfig    `yaml:"audio"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File receives the logs when the terminal owns stderr. Empty means stderr.
	File string `yaml:"file"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// TickRate is the number of frames sent per second to each browser.
	TickRate     int           `yaml:"tick_rate"`
	ClickRate    float64       `yaml:"click_rate"`
	ClickBurst   int           `yaml:"click_burst"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxSessions  int           `yaml:"max_sessions"`
	HelloTimeout time.Duration `yaml:"hello_timeout"`
}

type GameConfig struct {
	// Seed 0 draws a random seed at startup.
	Seed       uint64               `yaml:"seed"`
	SeedPhrase string               `yaml:"seed_phrase"`
	Creation   orbit.CreationConfig `yaml:"creation"`
}

type CameraConfig struct {
	Position physics.Vec3 `yaml:"position"`
	Target   physics.Vec3 `yaml:"target"`
	FovDeg   float64      `yaml:"fov_deg"`
	Aspect   float64      `yaml:"aspect"`
	Near     float64      `yaml:"near"`
	Far      float64      `yaml:"far"`
}

type TerminalConfig struct {
	FPS int `yaml:"fps"`
	// CellAspect is the height/width ratio of one terminal cell.
	CellAspect float64 `yaml:"cell_aspect"`
}

type AudioConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a complete, valid configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			ListenAddr:   "127.0.0.1:8080",
			TickRate:     30,
			ClickRate:    10,
			ClickBurst:   5,
			WriteTimeout: 5 * time.Second,
			MaxSessions:  64,
			HelloTimeout: 500 * time.Millisecond,
		},
		Game: GameConfig{Creation: orbit.DefaultCreationConfig()},
		Camera: CameraConfig{
			Position: physics.V(0, 6, 28),
			Target:   physics.V(0, 0, 0),
			FovDeg:   75,
			Aspect:   16.0 / 9.0,
			Near:     0.1,
			Far:      1000,
		},
		Terminal: TerminalConfig{FPS: 30, CellAspect: 2},
		Audio:    AudioConfig{Enabled: false},
	}
}

func (c CameraConfig) Camera() physics.Camera {
	return physics.Camera{
		Position: c.Position,
		Target:   c.Target,
		FovYDeg:  c.FovDeg,
		Aspect:   c.Aspect,
		Near:     c.Near,
		Far:      c.Far,
	}
}

// ResolveSeed picks the layout seed: the phrase wins over the number, and
// neither set means a random seed.
func (g GameConfig) ResolveSeed() uint64 {
	switch {
	case g.SeedPhrase != "":
		return orbit.SeedFromPhrase(g.SeedPhrase)
	case g.Seed != 0:
		return g.Seed
	default:
		return rand.Uint64()
	}
}

func (c LogConfig) ParsedLevel() log.Level {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.LevelInfo
	}
	return level
}

// Validate reports every problem in one error; each one wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %v", err)
	}

	if c.Server.ListenAddr == "" {
		add("server.listen_addr is empty")
	}
	if c.Server.TickRate <= 0 || c.Server.TickRate > 240 {
		add("server.tick_rate %d outside (0, 240]", c.Server.TickRate)
	}
	if c.Server.ClickRate <= 0 {
		add("server.click_rate must be positive")
	}
	if c.Server.ClickBurst < 1 {
		add("server.click_burst must be at least 1")
	}
	if c.Server.WriteTimeout <= 0 {
		add("server.write_timeout must be positive")
	}
	if c.Server.MaxSessions < 1 {
		add("server.max_sessions must be at least 1")
	}
	if c.Server.HelloTimeout <= 0 {
		add("server.hello_timeout must be positive")
	}

	if err := c.Game.Creation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: game.creation: %w", ErrInvalidConfig, err))
	}

	if c.Camera.FovDeg <= 0 || c.Camera.FovDeg >= 180 {
		add("camera.fov_deg %g outside (0, 180)", c.Camera.FovDeg)
	}
	if c.Camera.Aspect <= 0 {
		add("camera.aspect must be positive")
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		add("camera near/far [%g, %g]", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.Position.Sub(c.Camera.Target).Length() == 0 {
		add("camera.position equals camera.target")
	}

	if c.Terminal.FPS <= 0 || c.Terminal.FPS > 120 {
		add("terminal.fps %d outside (0, 120]", c.Terminal.FPS)
	}
	if c.Terminal.CellAspect <= 0 {
		add("terminal.cell_aspect must be positive")
	}

	return errors.Join(errs...)
}
