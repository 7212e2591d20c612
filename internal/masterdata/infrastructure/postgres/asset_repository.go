package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "plant-monitor/internal/masterdata/domain"
)

const defaultAssetsTable = "assets"

// AssetRepository is a Postgres implementation for assets.
type AssetRepository struct {
	db    DBTX
	table string
}

// NewAssetRepository constructs a repository.
func NewAssetRepository(db DBTX, opts ...AssetOption) *AssetRepository {
	repo := &AssetRepository{db: db, table: defaultAssetsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// AssetOption configures the repository.
type AssetOption func(*AssetRepository)

// WithAssetTable overrides the default table name.
func WithAssetTable(table string) AssetOption {
	return func(repo *AssetRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads an asset by id.
func (r *AssetRepository) Get(ctx context.Context, id int64) (*masterdata.Asset, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("asset repo: nil db")
	}
	if id <= 0 {
		return nil, masterdata.ErrAssetNotFound
	}

	query := fmt.Sprintf(`
SELECT id, facility_id, name, asset_type, status, created_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	asset, err := scanAsset(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, masterdata.ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// List loads assets ordered by id, optionally restricted to one facility.
func (r *AssetRepository) List(ctx context.Context, facilityID *int64) ([]masterdata.Asset, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("asset repo: nil db")
	}

	var (
		rows *sql.Rows
		err  error
	)
	if facilityID == nil {
		rows, err = r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, facility_id, name, asset_type, status, created_at
FROM %s
ORDER BY id ASC`, r.table))
	} else {
		rows, err = r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT id, facility_id, name, asset_type, status, created_at
FROM %s
WHERE facility_id = $1
ORDER BY id ASC`, r.table), *facilityID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]masterdata.Asset, 0)
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Create inserts a new asset and fills its id and creation time.
func (r *AssetRepository) Create(ctx context.Context, asset *masterdata.Asset) error {
	if r == nil || r.db == nil {
		return errors.New("asset repo: nil db")
	}
	if asset == nil {
		return errors.New("asset repo: nil asset")
	}
	if asset.ID != 0 {
		return errors.New("asset repo: asset already has an id")
	}
	if err := asset.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	facility_id,
	name,
	asset_type,
	status
) VALUES (
	$1, $2, $3, $4
)
RETURNING id, created_at`, r.table)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		asset.FacilityID,
		asset.Name,
		asset.AssetType,
		string(asset.Status),
	).Scan(&asset.ID, &asset.CreatedAt); err != nil {
		return err
	}
	asset.CreatedAt = asset.CreatedAt.UTC()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (masterdata.Asset, error) {
	var (
		asset  masterdata.Asset
		status string
	)
	if err := row.Scan(
		&asset.ID,
		&asset.FacilityID,
		&asset.Name,
		&asset.AssetType,
		&status,
		&asset.CreatedAt,
	); err != nil {
		return masterdata.Asset{}, err
	}
	asset.Status = masterdata.AssetStatus(status)
	asset.CreatedAt = asset.CreatedAt.UTC()
	return asset, nil
}
