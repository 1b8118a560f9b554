package migration

import (
	"github.com/legaldraft/legaldraft/internal/auth/domain"
	"github.com/legaldraft/legaldraft/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// SQLite deployments (and tests) rely on AutoMigrate; the SQL
		// migration set targets postgres.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(&domain.User{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
