package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	telemetry "plant-monitor/internal/telemetry/domain"
)

const (
	defaultReadingsTable = "sensor_readings"
	defaultAssetsTable   = "assets"
)

// ReadingRepository is a Postgres implementation of the reading store.
type ReadingRepository struct {
	db          *sql.DB
	table       string
	assetsTable string
}

// NewReadingRepository constructs a repository with default table names.
func NewReadingRepository(db *sql.DB, opts ...RepositoryOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable, assetsTable: defaultAssetsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// RepositoryOption configures the repository.
type RepositoryOption func(*ReadingRepository)

// WithTable overrides the default readings table name.
func WithTable(table string) RepositoryOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// WithAssetsTable overrides the assets table used to expand facility filters.
func WithAssetsTable(table string) RepositoryOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.assetsTable = table
		}
	}
}

// InsertBatch writes readings in a single transaction; readers see all or none of them.
func (r *ReadingRepository) InsertBatch(ctx context.Context, readings []telemetry.Reading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if len(readings) == 0 {
		return nil
	}
	for _, reading := range readings {
		if err := reading.Validate(); err != nil {
			return err
		}
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	asset_id,
	metric_name,
	value,
	unit,
	ts
) VALUES (
	$1, $2, $3, $4, $5
)`, r.table)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, reading := range readings {
		if _, err := stmt.ExecContext(
			ctx,
			reading.AssetID,
			reading.MetricName,
			reading.Value,
			reading.Unit,
			reading.Timestamp.UTC(),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
