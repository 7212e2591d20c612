package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	masterdata "plant-monitor/internal/masterdata/domain"
)

func TestFacilityRepositoryGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, location, facility_type, description, created_at FROM facilities WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location", "facility_type", "description", "created_at"}).
			AddRow(int64(1), "Riverside Power Station", "Houston, TX", "Power Station", "", created))

	repo := NewFacilityRepository(db)
	facility, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if facility.Name != "Riverside Power Station" || !facility.CreatedAt.Equal(created) {
		t.Fatalf("unexpected facility: %+v", facility)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFacilityRepositoryGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM facilities WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	if _, err := NewFacilityRepository(db).Get(context.Background(), 9); !errors.Is(err, masterdata.ErrFacilityNotFound) {
		t.Fatalf("expected ErrFacilityNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFacilityRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO plant_facilities (")).
		WithArgs("Test Plant", "Test City", "Power Generation", "demo").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	repo := NewFacilityRepository(db, WithFacilityTable("plant_facilities"))
	facility := masterdata.Facility{Name: "Test Plant", Location: "Test City", FacilityType: "Power Generation", Description: "demo"}
	if err := repo.Create(context.Background(), &facility); err != nil {
		t.Fatalf("create: %v", err)
	}
	if facility.ID != 7 || !facility.CreatedAt.Equal(created) {
		t.Fatalf("expected id and created_at filled, got %+v", facility)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFacilityRepositoryCreateValidates(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	if err := NewFacilityRepository(db).Create(context.Background(), &masterdata.Facility{Name: "No Location"}); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected queries: %v", err)
	}
}

func TestFacilityRepositoryCountAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM facilities")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM facilities WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM facilities WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewFacilityRepository(db)
	ctx := context.Background()
	count, err := repo.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("expected count 2, got %d %v", count, err)
	}
	if err := repo.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, 1); !errors.Is(err, masterdata.ErrFacilityNotFound) {
		t.Fatalf("expected ErrFacilityNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssetRepositoryListByFacility(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assets WHERE facility_id = $1 ORDER BY id ASC")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "facility_id", "name", "asset_type", "status", "created_at"}).
			AddRow(int64(10), int64(3), "Turbine 1", "Turbine", "operational", created).
			AddRow(int64(11), int64(3), "Pump 1", "Pump", "warning", created))

	facilityID := int64(3)
	assets, err := NewAssetRepository(db).List(context.Background(), &facilityID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(assets) != 2 || assets[1].Status != masterdata.StatusWarning || assets[0].AssetType != "Turbine" {
		t.Fatalf("unexpected assets: %+v", assets)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssetRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assets (")).
		WithArgs(int64(3), "Pump 1", "Pump", "operational").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(12), created))

	repo := NewAssetRepository(db)
	ctx := context.Background()
	asset := masterdata.Asset{FacilityID: 3, Name: "Pump 1", AssetType: "Pump", Status: masterdata.StatusOperational}
	if err := repo.Create(ctx, &asset); err != nil {
		t.Fatalf("create: %v", err)
	}
	if asset.ID != 12 {
		t.Fatalf("expected id 12, got %d", asset.ID)
	}
	invalid := masterdata.Asset{FacilityID: 3, Name: "Pump 2", AssetType: "Pump", Status: "melting"}
	if err := repo.Create(ctx, &invalid); !errors.Is(err, masterdata.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := repo.Create(ctx, &asset); err == nil {
		t.Fatalf("expected error when creating an asset that already has an id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssetRepositoryGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM assets WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "facility_id", "name", "asset_type", "status", "created_at"}))

	if _, err := NewAssetRepository(db).Get(context.Background(), 5); !errors.Is(err, masterdata.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS facilities").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
