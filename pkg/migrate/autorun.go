package migrate

import (
	"context"
	"fmt"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/db"
	"github.com/dreamcandylab/candylab-backend/pkg/logger"
)

// AutoRun prepares the schema at api startup. sqlite always gets the bundled
// schema; Postgres is migrated only in dev with CANDYLAB_AUTO_MIGRATE set.
func AutoRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	ctx = logg.WithField(ctx, "db_driver", client.Driver())
	if client.Driver() == config.DriverSQLite {
		logg.Info(ctx, "applying sqlite schema")
		return ApplySQLiteSchema(ctx, client.DB())
	}
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	sqlDB, err := client.SQL()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	runner, err := NewRunner(sqlDB, Migrations(), logg)
	if err != nil {
		return err
	}
	return runner.Up(ctx)
}
