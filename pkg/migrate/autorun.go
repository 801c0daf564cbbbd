package migrate

import (
	"context"
	"database/sql"

	"github.com/angelmondragon/mycrew-backend/pkg/config"
	"github.com/angelmondragon/mycrew-backend/pkg/logger"
)

// ShouldAutoApply reports whether binaries migrate at boot. The flag must be
// on, and the deployment must be dev or a single-user sqlite file; shared
// postgres deployments run cmd/migrate explicitly.
func ShouldAutoApply(cfg *config.Config) bool {
	if cfg == nil || !cfg.FeatureFlags.AutoMigrate {
		return false
	}
	return cfg.App.IsDev() || cfg.DB.IsSQLite()
}

// AutoApply brings the schema up to date when ShouldAutoApply allows it.
func AutoApply(ctx context.Context, cfg *config.Config, logg *logger.Logger, sqlDB *sql.DB, dir string) error {
	if !ShouldAutoApply(cfg) {
		return nil
	}
	before, err := Current(sqlDB, cfg.DB.Driver)
	if err != nil {
		return err
	}
	if err := Run(ctx, sqlDB, cfg.DB.Driver, dir, "up"); err != nil {
		return err
	}
	after, err := Current(sqlDB, cfg.DB.Driver)
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"driver": cfg.DB.Driver,
		"from":   before,
		"to":     after,
	}), "migrate.auto_applied")
	return nil
}
