package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"heroes/internal/model"
)

type migrationStep struct {
	Name string
	SQL  string
	Args []any
}

func steps() []migrationStep {
	return []migrationStep{
		{
			Name: "create_table_heroes",
			SQL: `CREATE TABLE IF NOT EXISTS heroes (
  id   SERIAL PRIMARY KEY,
  name TEXT   NOT NULL CHECK (length(trim(name)) > 0)
);`,
		},
		{
			Name: "create_index_heroes_name",
			SQL:  `CREATE INDEX IF NOT EXISTS idx_heroes_name ON heroes (lower(name));`,
		},
		seedStep(model.SeedHeroes()),
		{
			// Seeded rows carry explicit ids; move the sequence past them.
			Name: "align_heroes_id_sequence",
			SQL:  `SELECT setval(pg_get_serial_sequence('heroes', 'id'), COALESCE((SELECT MAX(id) FROM heroes), 1));`,
		},
	}
}

func seedStep(heroes []model.Hero) migrationStep {
	values := make([]string, 0, len(heroes))
	args := make([]any, 0, len(heroes)*2)
	for i, h := range heroes {
		values = append(values, fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2))
		args = append(args, h.ID, h.Name)
	}
	return migrationStep{
		Name: "seed_heroes",
		SQL:  "INSERT INTO heroes (id, name) VALUES " + strings.Join(values, ", ") + " ON CONFLICT (id) DO NOTHING;",
		Args: args,
	}
}

// EnsureMigrated checks if the 'heroes' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, lggr *zap.Logger, dbHost string) error {
	start := time.Now()
	lggr = lggr.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	lggr.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.heroes') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		lggr.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.String("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		lggr.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("detail", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	lggr.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps() {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL, step.Args...); err != nil {
			lggr.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("error_message", err.Error()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		lggr.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	lggr.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return nil
}
