package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"heroes/internal/model"
)

func TestSeedStep(t *testing.T) {
	step := seedStep([]model.Hero{{ID: 11, Name: "Dr Nice"}, {ID: 12, Name: "Narco"}})

	assert.Equal(t, "seed_heroes", step.Name)
	assert.Equal(t, "INSERT INTO heroes (id, name) VALUES ($1, $2), ($3, $4) ON CONFLICT (id) DO NOTHING;", step.SQL)
	assert.Equal(t, []any{11, "Dr Nice", 12, "Narco"}, step.Args)
}

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("skips when table exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		core, logs := observer.New(zapcore.InfoLevel)

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err = EnsureMigrated(ctx, db, zap.New(core), "db.local")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 1, logs.FilterMessage("db_migration_skip").Len())
	})

	t.Run("runs every step", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		core, logs := observer.New(zapcore.InfoLevel)

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS heroes").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_heroes_name").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("INSERT INTO heroes").WillReturnResult(sqlmock.NewResult(0, 10))
		mock.ExpectExec("SELECT setval").WillReturnResult(sqlmock.NewResult(0, 0))

		err = EnsureMigrated(ctx, db, zap.New(core), "db.local")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Equal(t, 4, logs.FilterMessage("db_migration_step").Len())
		assert.Equal(t, 1, logs.FilterMessage("db_migration_success").Len())
	})

	t.Run("step failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		core, logs := observer.New(zapcore.InfoLevel)

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS heroes").WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, zap.New(core), "db.local")

		assert.EqualError(t, err, "migration step create_table_heroes failed: permission denied")
		failed := logs.FilterMessage("db_migration_failed").All()
		require.Len(t, failed, 1)
		assert.Equal(t, "create_table_heroes", failed[0].ContextMap()["migration_step"])
	})

	t.Run("sentinel check failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass").WillReturnError(errors.New("timeout"))

		err = EnsureMigrated(ctx, db, zap.NewNop(), "db.local")

		assert.EqualError(t, err, "failed to check sentinel table: timeout")
	})
}
