package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/procurehq/intake/internal/config"
	"github.com/procurehq/intake/internal/request/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg   config.Config
	GenID *snowflake.Node

	// DB is only part of the graph for the database backend.
	DB *gorm.DB `optional:"true"`
}

// Provide selects the record store backend from configuration.
func Provide(p Params) (domain.Repository, error) {
	switch p.Cfg.StorageBackend {
	case config.BackendWorkbook:
		return NewWorkbookStore(p.Cfg.WorkbookPath, p.Cfg.Worksheet, p.Cfg.PONumberPrefix), nil

	case config.BackendSheets:
		if p.Cfg.SpreadsheetID == "" {
			return nil, errors.New("sheets backend requires SHEETS_SPREADSHEET_ID")
		}
		svc, err := NewSheetsService(context.Background(), p.Cfg.GoogleCredentialsJSON)
		if err != nil {
			return nil, err
		}
		return NewSheetsStore(svc, p.Cfg.SpreadsheetID, p.Cfg.Worksheet, p.Cfg.PONumberPrefix), nil

	default:
		if p.DB == nil {
			return nil, errors.New("database backend requires a database connection")
		}
		return NewGormStore(p.DB, p.GenID, p.Cfg.PONumberPrefix), nil
	}
}
