package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/orbitpick/internal/config"
	"github.com/zeusync/orbitpick/internal/injector"
)

const shutdownGrace = 5 * time.Second

type options struct {
	configPath string
	mode       string
	addr       string
	seed       uint64
	seedPhrase string
	logLevel   string
	logFile    string
	audio      bool
	dumpConfig bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("orbitpick", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&o.mode, "mode", "web", "frontend: web or terminal")
	fs.StringVar(&o.addr, "addr", "", "listen address for web mode")
	fs.Uint64Var(&o.seed, "seed", 0, "layout seed (0 picks one at random)")
	fs.StringVar(&o.seedPhrase, "seed-phrase", "", "derive the layout seed from a phrase")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&o.logFile, "log-file", "", "write logs to this file")
	fs.BoolVar(&o.audio, "audio", false, "play audio cues in terminal mode")
	fs.BoolVar(&o.dumpConfig, "dump-config", false, "print the effective config and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.mode != "web" && o.mode != "terminal" {
		return o, errors.Errorf("unknown mode %q", o.mode)
	}
	return o, nil
}

func loadConfig(o options) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if o.addr != "" {
		cfg.Server.ListenAddr = o.addr
	}
	if o.seed != 0 {
		cfg.Game.Seed = o.seed
	}
	if o.seedPhrase != "" {
		cfg.Game.SeedPhrase = o.seedPhrase
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}
	if o.audio {
		cfg.Audio.Enabled = true
	}
	// The terminal owns the tty, so logs must not land on stderr.
	if o.mode == "terminal" && cfg.Log.File == "" {
		cfg.Log.File = "orbitpick.log"
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, o options, cfg config.Config) error {
	switch o.mode {
	case "terminal":
		term, cleanup, err := injector.InitializeTerminal(cfg)
		if err != nil {
			return errors.Wrap(err, "init terminal")
		}
		defer cleanup()
		return term.App.Run(ctx)
	default:
		srv, cleanup, err := injector.InitializeWeb(cfg)
		if err != nil {
			return errors.Wrap(err, "init server")
		}
		defer cleanup()
		return srv.Run(ctx, shutdownGrace)
	}
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "orbitpick:", err)
		os.Exit(2)
	}

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintln(os.Stderr, "orbitpick:", err)
		os.Exit(1)
	}
	if o.dumpConfig {
		if err := config.Write(os.Stdout, cfg); err != nil {
			fmt.Fprintln(os.Stderr, "orbitpick:", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, cfg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "orbitpick:", err)
		os.Exit(1)
	}
}
