package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"checklistapi/internal/logging"
)

// TableName is the single table holding checklist rows.
const TableName = "checklists"

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_checklists",
		SQL: `CREATE TABLE IF NOT EXISTS checklists (
  id            TEXT        PRIMARY KEY,
  title         TEXT        NOT NULL,
  created_label TEXT        NOT NULL,
  initial_data  JSONB       NOT NULL,
  verifications JSONB       NOT NULL DEFAULT '[]'::jsonb,
  inspections   JSONB       NOT NULL DEFAULT '[]'::jsonb,
  complete      BOOLEAN     NOT NULL DEFAULT false,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_checklists_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_checklists_created_at ON checklists (created_at DESC);`,
	},
	{
		Name: "create_index_checklists_plate",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_checklists_plate ON checklists ((initial_data->>'plate'));`,
	},
}

// EnsureMigrated checks if the checklists table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	log = logging.Component(log, "database").With(zap.String("db_host", dbHost))
	start := time.Now()

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public." + TableName + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.String("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)),
			logging.Since(start),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("detail", "schema already exists, skipping migration"),
			logging.Since(start),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("error_message", err.Error()),
				logging.Since(start),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success", zap.String("status", "success"), logging.Since(start))
	return nil
}
