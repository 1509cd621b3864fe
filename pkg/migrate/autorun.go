package migrate

import (
	"context"
	"fmt"

	"github.com/sherryseats/orders-backend/pkg/config"
	"github.com/sherryseats/orders-backend/pkg/db"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

// MaybeRunDev applies the embedded migrations on boot in dev when
// SHERRYS_AUTO_MIGRATE is on. Other environments run cmd/migrate instead.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}
	files, err := Files("")
	if err != nil {
		return err
	}
	if err := ValidateFS(files); err != nil {
		return fmt.Errorf("embedded migrations: %w", err)
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	m, err := NewMigrator(sqlDB, files)
	if err != nil {
		return err
	}
	applied, err := m.Up(ctx)
	if err != nil {
		return err
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"service_kind": cfg.Service.Kind,
		"applied":      applied,
	}), "dev migrations applied")
	return nil
}
