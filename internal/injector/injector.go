//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/orbitpick/internal/config"
	"github.com/zeusync/orbitpick/internal/server"
)

func InitializeWeb(cfg config.Config) (*server.Server, func(), error) {
	wire.Build(WebSet)
	return nil, nil, nil
}

func InitializeTerminal(cfg config.Config) (*Terminal, func(), error) {
	wire.Build(TerminalSet)
	return nil, nil, nil
}
