package postgres

import (
	"context"
	"errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS facilities (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	location VARCHAR(255) NOT NULL,
	facility_type VARCHAR(100) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS assets (
	id BIGSERIAL PRIMARY KEY,
	facility_id BIGINT NOT NULL REFERENCES facilities(id) ON DELETE CASCADE,
	name VARCHAR(255) NOT NULL,
	asset_type VARCHAR(100) NOT NULL,
	status VARCHAR(50) NOT NULL DEFAULT 'operational'
		CHECK (status IN ('operational', 'warning', 'critical', 'offline')),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS ix_assets_facility ON assets (facility_id);
`

// EnsureSchema creates the facilities and assets tables when missing.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if db == nil {
		return errors.New("masterdata schema: nil db")
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}
