package application

import (
	"context"
	"sync"
	"testing"
	"time"

	masterdata "plant-monitor/internal/masterdata/domain"
	telemetry "plant-monitor/internal/telemetry/domain"
	"plant-monitor/internal/telemetry/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type recordingPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *recordingPublisher) Publish(_ context.Context, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

// testPlant holds the "Test Plant" fixture: Turbine 1 with temperature 540/545/550
// at T-2h/T-1h/T plus power_output 260 at T, and Pump 1 with temperature 55 and
// flow_rate 800 at T.
type testPlant struct {
	store    *memory.Store
	facility masterdata.Facility
	turbine  masterdata.Asset
	pump     masterdata.Asset
	now      time.Time
}

func newTestPlant(t *testing.T) testPlant {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	facility := masterdata.Facility{Name: "Test Plant", Location: "Test City", FacilityType: "Power Generation"}
	if err := store.Facilities().Create(ctx, &facility); err != nil {
		t.Fatalf("create facility: %v", err)
	}
	turbine := masterdata.Asset{FacilityID: facility.ID, Name: "Turbine 1", AssetType: "Turbine", Status: masterdata.StatusOperational}
	if err := store.Assets().Create(ctx, &turbine); err != nil {
		t.Fatalf("create turbine: %v", err)
	}
	pump := masterdata.Asset{FacilityID: facility.ID, Name: "Pump 1", AssetType: "Pump", Status: masterdata.StatusWarning}
	if err := store.Assets().Create(ctx, &pump); err != nil {
		t.Fatalf("create pump: %v", err)
	}

	readings := []telemetry.Reading{
		{AssetID: turbine.ID, MetricName: "temperature", Value: 540, Unit: "°C", Timestamp: now.Add(-2 * time.Hour)},
		{AssetID: turbine.ID, MetricName: "temperature", Value: 545, Unit: "°C", Timestamp: now.Add(-time.Hour)},
		{AssetID: turbine.ID, MetricName: "temperature", Value: 550, Unit: "°C", Timestamp: now},
		{AssetID: turbine.ID, MetricName: "power_output", Value: 260, Unit: "MW", Timestamp: now},
		{AssetID: pump.ID, MetricName: "temperature", Value: 55, Unit: "°C", Timestamp: now},
		{AssetID: pump.ID, MetricName: "flow_rate", Value: 800, Unit: "m³/hr", Timestamp: now},
	}
	if err := store.Readings().InsertBatch(ctx, readings); err != nil {
		t.Fatalf("insert readings: %v", err)
	}
	return testPlant{store: store, facility: facility, turbine: turbine, pump: pump, now: now}
}
