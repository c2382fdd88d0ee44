package settings_test

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"ticket-mailer/internal/logger"
	"ticket-mailer/internal/models"
	"ticket-mailer/internal/settings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *settings.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	store := &settings.DB{Bun: bun.NewDB(sqldb, sqlitedialect.New())}
	require.NoError(t, store.InitSchema(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDBSequence(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	last, err := store.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)

	value, err := store.IncrementSequence(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), value)

	value, err = store.IncrementSequence(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(8), value)

	last, err = store.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), last)

	require.NoError(t, store.ResetSequence(ctx))
	last, err = store.LastSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), last)
}

func TestDBSequenceRejectsNegative(t *testing.T) {
	store := setupTestDB(t)

	_, err := store.IncrementSequence(context.Background(), -1)
	assert.ErrorIs(t, err, settings.ErrInvalidQuantity)
}

func TestDBResetBeforeFirstUse(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.ResetSequence(ctx))
	value, err := store.IncrementSequence(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), value)
}

func TestDBEventConfig(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	_, err := store.GetEventConfig(ctx)
	assert.ErrorIs(t, err, settings.ErrNotFound)

	cfg := models.EventConfig{ID: "EVT", Name: "Robot Cup", Address: "Quito", Date: "15 Dec", Time: "10:00", WelcomeMsg: "Hola"}
	require.NoError(t, store.SaveEventConfig(ctx, cfg))

	got, err := store.GetEventConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	cfg.Name = "Robot Cup Finals"
	cfg.AssistanceMsg = "Bring your ID"
	require.NoError(t, store.SaveEventConfig(ctx, cfg))

	got, err = store.GetEventConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestOpenDBSQLite(t *testing.T) {
	bunDB, err := settings.OpenDB("sqlite", ":memory:", logger.NewWriterLogger(io.Discard))
	require.NoError(t, err)
	defer bunDB.Close()

	store := &settings.DB{Bun: bunDB}
	assert.NoError(t, store.InitSchema(context.Background()))
}

func TestOpenDBUnsupportedDriver(t *testing.T) {
	_, err := settings.OpenDB("mysql", "dsn", logger.NewWriterLogger(io.Discard))
	assert.Error(t, err)
}
