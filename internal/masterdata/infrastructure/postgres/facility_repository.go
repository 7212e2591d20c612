package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	masterdata "plant-monitor/internal/masterdata/domain"
)

const defaultFacilitiesTable = "facilities"

// FacilityRepository is a Postgres implementation for facilities.
type FacilityRepository struct {
	db    DBTX
	table string
}

// NewFacilityRepository constructs a repository.
func NewFacilityRepository(db DBTX, opts ...FacilityOption) *FacilityRepository {
	repo := &FacilityRepository{db: db, table: defaultFacilitiesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// FacilityOption configures the repository.
type FacilityOption func(*FacilityRepository)

// WithFacilityTable overrides the default table name.
func WithFacilityTable(table string) FacilityOption {
	return func(repo *FacilityRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a facility by id.
func (r *FacilityRepository) Get(ctx context.Context, id int64) (*masterdata.Facility, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("facility repo: nil db")
	}
	if id <= 0 {
		return nil, masterdata.ErrFacilityNotFound
	}

	query := fmt.Sprintf(`
SELECT id, name, location, facility_type, description, created_at
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var facility masterdata.Facility
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&facility.ID,
		&facility.Name,
		&facility.Location,
		&facility.FacilityType,
		&facility.Description,
		&facility.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, masterdata.ErrFacilityNotFound
		}
		return nil, err
	}
	facility.CreatedAt = facility.CreatedAt.UTC()
	return &facility, nil
}

// List loads all facilities ordered by id.
func (r *FacilityRepository) List(ctx context.Context) ([]masterdata.Facility, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("facility repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, location, facility_type, description, created_at
FROM %s
ORDER BY id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]masterdata.Facility, 0)
	for rows.Next() {
		var facility masterdata.Facility
		if err := rows.Scan(
			&facility.ID,
			&facility.Name,
			&facility.Location,
			&facility.FacilityType,
			&facility.Description,
			&facility.CreatedAt,
		); err != nil {
			return nil, err
		}
		facility.CreatedAt = facility.CreatedAt.UTC()
		result = append(result, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Count returns the number of facilities.
func (r *FacilityRepository) Count(ctx context.Context) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("facility repo: nil db")
	}
	var count int64
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.table)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a facility and fills its id and creation time.
func (r *FacilityRepository) Create(ctx context.Context, facility *masterdata.Facility) error {
	if r == nil || r.db == nil {
		return errors.New("facility repo: nil db")
	}
	if facility == nil {
		return errors.New("facility repo: nil facility")
	}
	if err := facility.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	name,
	location,
	facility_type,
	description
) VALUES (
	$1, $2, $3, $4
)
RETURNING id, created_at`, r.table)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		facility.Name,
		facility.Location,
		facility.FacilityType,
		facility.Description,
	).Scan(&facility.ID, &facility.CreatedAt); err != nil {
		return err
	}
	facility.CreatedAt = facility.CreatedAt.UTC()
	return nil
}

// Delete removes a facility; assets and readings follow through ON DELETE CASCADE.
func (r *FacilityRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("facility repo: nil db")
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return masterdata.ErrFacilityNotFound
	}
	return nil
}
