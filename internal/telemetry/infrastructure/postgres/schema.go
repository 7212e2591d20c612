package postgres

import (
	"context"
	"database/sql"
	"errors"
)

// Readings are append-only. The composite index serves both the latest-per-group
// scan and the filtered newest-first query.
const schema = `
CREATE TABLE IF NOT EXISTS sensor_readings (
	id BIGSERIAL PRIMARY KEY,
	asset_id BIGINT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
	metric_name VARCHAR(100) NOT NULL,
	value DOUBLE PRECISION NOT NULL,
	unit VARCHAR(50) NOT NULL,
	ts TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_readings_asset_metric_time
	ON sensor_readings (asset_id, metric_name, ts DESC, id DESC);

CREATE INDEX IF NOT EXISTS ix_readings_time
	ON sensor_readings (ts DESC, id DESC);
`

// EnsureSchema creates the sensor_readings table when missing.
// The assets table must exist first.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("telemetry schema: nil db")
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}
