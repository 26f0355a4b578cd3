package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	auditdomain "github.com/sightcare/netra/internal/audit/domain"
	authdomain "github.com/sightcare/netra/internal/auth/domain"
	"github.com/sightcare/netra/internal/config"
	pledgedomain "github.com/sightcare/netra/internal/pledge/domain"
	"github.com/sightcare/netra/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are dev/self-host conveniences; gorm derives
			// the schema from the models there.
			if err := conn.AutoMigrate(
				&pledgedomain.Pledge{},
				&authdomain.User{},
				&authdomain.Session{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		if cfg.Bootstrap.EnsureDefaultAdmin {
			if err := seed.EnsureDefaultAdmin(conn); err != nil {
				return err
			}
		}
		if cfg.Bootstrap.SeedDemoData {
			return seed.EnsureDemoPledges(conn)
		}
		return nil
	}),
)
