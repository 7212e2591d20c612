package integration_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	masterdata "plant-monitor/internal/masterdata/domain"
	masterdatapostgres "plant-monitor/internal/masterdata/infrastructure/postgres"
	telemetry "plant-monitor/internal/telemetry/domain"
	telemetrypostgres "plant-monitor/internal/telemetry/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func TestReadingsRoundTripPostgres(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := masterdatapostgres.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("masterdata schema: %v", err)
	}
	if err := telemetrypostgres.EnsureSchema(ctx, db); err != nil {
		t.Fatalf("telemetry schema: %v", err)
	}

	facilities := masterdatapostgres.NewFacilityRepository(db)
	assets := masterdatapostgres.NewAssetRepository(db)
	readings := telemetrypostgres.NewReadingRepository(db)

	facility := masterdata.Facility{Name: "Integration Plant", Location: "Test City", FacilityType: "Power Generation"}
	if err := facilities.Create(ctx, &facility); err != nil {
		t.Fatalf("create facility: %v", err)
	}
	defer func() { _ = facilities.Delete(ctx, facility.ID) }()

	asset := masterdata.Asset{FacilityID: facility.ID, Name: "Turbine 1", AssetType: "Turbine", Status: masterdata.StatusOperational}
	if err := assets.Create(ctx, &asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	batch := make([]telemetry.Reading, 0, 48)
	for i := 0; i < 24; i++ {
		ts := now.Add(-time.Duration(i) * time.Hour)
		batch = append(batch,
			telemetry.Reading{AssetID: asset.ID, MetricName: "power_output", Value: 400 + float64(i), Unit: "MW", Timestamp: ts},
			telemetry.Reading{AssetID: asset.ID, MetricName: "temperature", Value: 70 + float64(i), Unit: "°C", Timestamp: ts},
		)
	}
	// Same timestamp as the newest power reading; inserted later so it wins.
	batch = append(batch, telemetry.Reading{AssetID: asset.ID, MetricName: "power_output", Value: 999, Unit: "MW", Timestamp: now})
	if err := readings.InsertBatch(ctx, batch); err != nil {
		t.Fatalf("insert batch: %v", err)
	}

	latest, err := readings.LatestPerGroup(ctx, []int64{asset.ID})
	if err != nil {
		t.Fatalf("latest per group: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 latest readings, got %d", len(latest))
	}
	if latest[0].MetricName != "power_output" || latest[0].Value != 999 {
		t.Fatalf("expected tie to resolve to the later insert, got %+v", latest[0])
	}

	start := now.Add(-6 * time.Hour)
	queryStart := time.Now()
	filtered, err := readings.QueryFiltered(ctx, telemetry.ReadingFilter{FacilityID: &facility.ID, Start: &start})
	if err != nil {
		t.Fatalf("query filtered: %v", err)
	}
	t.Logf("filtered query elapsed=%s rows=%d", time.Since(queryStart), len(filtered))
	// 7 hourly steps per metric plus the tie-break reading.
	if len(filtered) != 15 {
		t.Fatalf("expected 15 readings, got %d", len(filtered))
	}
	for i := 1; i < len(filtered); i++ {
		if filtered[i].Timestamp.After(filtered[i-1].Timestamp) {
			t.Fatalf("readings not ordered newest first at %d", i)
		}
	}

	metrics, err := readings.DistinctMetrics(ctx, []int64{asset.ID})
	if err != nil {
		t.Fatalf("distinct metrics: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("expected 2 metrics, got %+v", metrics)
	}

	if err := facilities.Delete(ctx, facility.ID); err != nil {
		t.Fatalf("delete facility: %v", err)
	}
	leftover, err := readings.LatestPerGroup(ctx, []int64{asset.ID})
	if err != nil {
		t.Fatalf("latest after delete: %v", err)
	}
	if len(leftover) != 0 {
		t.Fatalf("expected readings removed with their facility, got %d", len(leftover))
	}
}
