//go:build wireinject
// +build wireinject

// Dependency injection for the livraria binary.
//
// Regenerate wire_gen.go with `wire gen ./cmd/livraria` after changing a provider.
// Configuration and the logger are injector inputs: they depend on command-line
// flags, so they exist only after cobra has parsed them.

package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/xiebiao/livraria/internal/application/catalog"
	"github.com/xiebiao/livraria/internal/infrastructure/config"
	"github.com/xiebiao/livraria/internal/infrastructure/files"
	"github.com/xiebiao/livraria/internal/infrastructure/persistence/sqlite"
	"github.com/xiebiao/livraria/internal/interface/cli"
	"github.com/xiebiao/livraria/pkg/metrics"
)

// infrastructureSet: SQLite store, file manager, metrics
var infrastructureSet = wire.NewSet(
	sqlite.NewDB,
	sqlite.NewBookRepository,
	files.NewManager,
	wire.Bind(new(catalog.FileStore), new(*files.Manager)),
	metrics.NewRecorder,
)

// applicationSet: catalog workflows
var applicationSet = wire.NewSet(
	catalog.New,
)

// initializeServices builds everything a command needs.
func initializeServices(cfg *config.Config, log zerolog.Logger) (*cli.Services, error) {
	wire.Build(
		infrastructureSet,
		applicationSet,
		wire.Struct(new(cli.Services), "*"),
	)
	return nil, nil
}
