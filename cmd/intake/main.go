package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/intake/internal/clock"
	"github.com/procurehq/intake/internal/config"
	"github.com/procurehq/intake/internal/dashboard"
	"github.com/procurehq/intake/internal/identity"
	"github.com/procurehq/intake/internal/migration"
	"github.com/procurehq/intake/internal/notify"
	obsmetrics "github.com/procurehq/intake/internal/observability/metrics"
	"github.com/procurehq/intake/internal/request"
	"github.com/procurehq/intake/internal/server"
	"github.com/procurehq/intake/pkg/db"
	"github.com/procurehq/intake/pkg/log"
	"go.uber.org/fx"
)

func main() {
	// fx graphs are static, so the database modules are only added when
	// the database backend is selected. The workbook and sheets backends
	// run without a connection.
	cfg := config.Load()

	opts := []fx.Option{
		fx.Supply(cfg),
		log.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		obsmetrics.Module,

		notify.Module,
		identity.Module,
		request.Module,
		dashboard.Module,
		server.Module,
	}
	if cfg.StorageBackend == config.BackendDatabase {
		opts = append(opts, db.Module, migration.Module)
	}

	fx.New(opts...).Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
