package injector

import (
	"github.com/gdamore/tcell/v2"
	"github.com/google/wire"
	"github.com/pkg/errors"

	"github.com/zeusync/orbitpick/internal/audio"
	"github.com/zeusync/orbitpick/internal/config"
	"github.com/zeusync/orbitpick/internal/core/events/bus"
	"github.com/zeusync/orbitpick/internal/core/game"
	"github.com/zeusync/orbitpick/internal/core/observability/log"
	"github.com/zeusync/orbitpick/internal/core/observability/metrics"
	"github.com/zeusync/orbitpick/internal/scene"
	"github.com/zeusync/orbitpick/internal/server"
	"github.com/zeusync/orbitpick/internal/terminal"
)

// Terminal bundles the terminal frontend with its audio cues.
type Terminal struct {
	App  *terminal.App
	Cues *audio.Cues
}

var CommonSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	metrics.NewCollector,
)

var WebSet = wire.NewSet(
	CommonSet,
	ProvideServerConfig,
	ProvideServer,
)

var TerminalSet = wire.NewSet(
	CommonSet,
	bus.New,
	ProvideProjector,
	terminal.NewPicker,
	ProvideSession,
	ProvideScreen,
	ProvideFrameClock,
	ProvideTerminalConfig,
	terminal.New,
	ProvideCues,
	wire.Struct(new(Terminal), "*"),
)

// ProvideLogger writes to cfg.Log.File when set, otherwise to stderr.
func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	output := cfg.Log.File
	if output == "" {
		output = "stderr"
	}
	logger, err := log.NewWithOutput(cfg.Log.ParsedLevel(), output)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open log output %s", output)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideServerConfig(cfg config.Config) server.Config {
	return server.Config{
		ListenAddr:   cfg.Server.ListenAddr,
		TickRate:     cfg.Server.TickRate,
		ClickRate:    cfg.Server.ClickRate,
		ClickBurst:   cfg.Server.ClickBurst,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxSessions:  cfg.Server.MaxSessions,
		HelloTimeout: cfg.Server.HelloTimeout,
		Creation:     cfg.Game.Creation,
		Seed:         cfg.Game.ResolveSeed(),
		Camera:       cfg.Camera.Camera(),
	}
}

func ProvideServer(cfg server.Config, logger log.Log, collector *metrics.Collector) (*server.Server, func()) {
	srv := server.NewServer(cfg, logger, collector)
	return srv, func() { _ = srv.Close() }
}

func ProvideProjector(cfg config.Config) *scene.CameraProjector {
	return scene.NewCameraProjector(cfg.Camera.Camera())
}

func ProvideSession(
	cfg config.Config,
	projector *scene.CameraProjector,
	picker *terminal.Picker,
	eventBus bus.EventBus,
	logger log.Log,
) (*game.Session, error) {
	return game.NewSession(
		game.SessionConfig{Creation: cfg.Game.Creation, Seed: cfg.Game.ResolveSeed()},
		game.SystemClock{},
		projector,
		picker,
		eventBus,
		logger,
	)
}

func ProvideScreen() (tcell.Screen, func(), error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, nil, errors.Wrap(err, "create terminal screen")
	}
	if err := screen.Init(); err != nil {
		return nil, nil, errors.Wrap(err, "init terminal screen")
	}
	return screen, screen.Fini, nil
}

func ProvideFrameClock() terminal.FrameClock {
	return scene.NewClock()
}

func ProvideTerminalConfig(cfg config.Config) terminal.Config {
	return terminal.Config{FPS: cfg.Terminal.FPS, CellAspect: cfg.Terminal.CellAspect}
}

// ProvideCues plays nothing unless audio is enabled and a device opens.
func ProvideCues(cfg config.Config, session *game.Session, logger log.Log) (*audio.Cues, func(), error) {
	cues := audio.NewCues(logger)
	if cfg.Audio.Enabled {
		if err := cues.Init(); err != nil {
			logger.Warn("Audio disabled", log.Error(err))
		}
	}
	if _, err := cues.Attach(session.Bus()); err != nil {
		return nil, nil, err
	}
	return cues, cues.Close, nil
}
