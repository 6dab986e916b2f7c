package migration

import (
	"github.com/procurehq/intake/internal/config"
	"github.com/procurehq/intake/internal/request/domain"
	"github.com/procurehq/intake/internal/request/repository"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The versioned SQL migrations are written for postgres. The
		// other dialects get their schema from AutoMigrate.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(&domain.Request{}, &repository.SequenceCounter{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
