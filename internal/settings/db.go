package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ticket-mailer/internal/logger"
	"ticket-mailer/internal/models"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const eventSettingID = 1

type DB struct {
	Bun *bun.DB
}

// OpenDB connects to sqlite or postgres, retrying the first ping a few times
// so the service can start alongside its database container.
func OpenDB(driver, dsn string, log *logger.Logger) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		err   error
	)

	switch driver {
	case "sqlite":
		sqldb, err = sql.Open(sqliteshim.ShimName, dsn)
	case "postgres":
		if dsn == "" {
			return nil, errors.New("POSTGRES_DSN not set")
		}
		sqldb, err = sql.Open("postgres", dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", driver, err)
	}

	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		if err = sqldb.Ping(); err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect to %s (attempt %d/%d): %v", driver, i+1, maxRetries, err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if driver == "sqlite" {
		sqldb.SetMaxOpenConns(1)
		log.Info("DATABASE", "Connected to SQLite")
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
	log.Info("DATABASE", "Connected to PostgreSQL")
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// InitSchema creates the settings tables when they do not exist yet.
func (d *DB) InitSchema(ctx context.Context) error {
	tables := []interface{}{
		(*models.SequenceCounter)(nil),
		(*models.EventSetting)(nil),
	}
	for _, model := range tables {
		if _, err := d.Bun.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}

func (d *DB) GetEventConfig(ctx context.Context) (models.EventConfig, error) {
	var setting models.EventSetting
	err := d.Bun.NewSelect().
		Model(&setting).
		Where("id = ?", eventSettingID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EventConfig{}, ErrNotFound
	}
	if err != nil {
		return models.EventConfig{}, fmt.Errorf("failed to read event config: %w", err)
	}
	return setting.ToEventConfig(), nil
}

func (d *DB) SaveEventConfig(ctx context.Context, cfg models.EventConfig) error {
	setting := models.EventSettingFrom(cfg)
	_, err := d.Bun.NewInsert().
		Model(&setting).
		On("CONFLICT (id) DO UPDATE").
		Set("event_id = EXCLUDED.event_id").
		Set("name = EXCLUDED.name").
		Set("address = EXCLUDED.address").
		Set("event_date = EXCLUDED.event_date").
		Set("event_time = EXCLUDED.event_time").
		Set("welcome_msg = EXCLUDED.welcome_msg").
		Set("assistance_msg = EXCLUDED.assistance_msg").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save event config: %w", err)
	}
	return nil
}

func (d *DB) LastSequence(ctx context.Context) (int64, error) {
	var counter models.SequenceCounter
	err := d.Bun.NewSelect().
		Model(&counter).
		Where("name = ?", SequenceKey).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	return counter.Value, nil
}

// IncrementSequence adds quantity to the counter inside one transaction,
// creating the row on first use.
func (d *DB) IncrementSequence(ctx context.Context, quantity int64) (int64, error) {
	if quantity < 0 {
		return 0, ErrInvalidQuantity
	}

	var value int64
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var counter models.SequenceCounter
		err := tx.NewSelect().
			Model(&counter).
			Where("name = ?", SequenceKey).
			Limit(1).
			Scan(ctx)

		if errors.Is(err, sql.ErrNoRows) {
			counter = models.SequenceCounter{
				Name:      SequenceKey,
				Value:     quantity,
				UpdatedAt: time.Now(),
			}
			value = counter.Value
			_, err = tx.NewInsert().Model(&counter).Exec(ctx)
			return err
		}
		if err != nil {
			return err
		}

		counter.Value += quantity
		counter.UpdatedAt = time.Now()
		value = counter.Value
		_, err = tx.NewUpdate().
			Model(&counter).
			Column("value", "updated_at").
			Where("name = ?", SequenceKey).
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return value, nil
}

func (d *DB) ResetSequence(ctx context.Context) error {
	counter := models.SequenceCounter{
		Name:      SequenceKey,
		Value:     0,
		UpdatedAt: time.Now(),
	}
	_, err := d.Bun.NewInsert().
		Model(&counter).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset sequence: %w", err)
	}
	return nil
}

func (d *DB) Close() error {
	return d.Bun.Close()
}
