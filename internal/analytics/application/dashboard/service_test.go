package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	domaindashboard "plant-monitor/internal/analytics/domain/dashboard"
	masterdata "plant-monitor/internal/masterdata/domain"
	telemetryapp "plant-monitor/internal/telemetry/application"
	telemetry "plant-monitor/internal/telemetry/domain"
	"plant-monitor/internal/telemetry/infrastructure/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestPlant(t *testing.T, store *memory.Store, now time.Time) (masterdata.Facility, masterdata.Asset, masterdata.Asset) {
	t.Helper()
	ctx := context.Background()
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
	if err := store.Readings().InsertBatch(ctx, []telemetry.Reading{
		{AssetID: turbine.ID, MetricName: "temperature", Value: 540, Unit: "°C", Timestamp: now.Add(-2 * time.Hour)},
		{AssetID: turbine.ID, MetricName: "temperature", Value: 545, Unit: "°C", Timestamp: now.Add(-time.Hour)},
		{AssetID: turbine.ID, MetricName: "temperature", Value: 550, Unit: "°C", Timestamp: now},
		{AssetID: turbine.ID, MetricName: "power_output", Value: 260, Unit: "MW", Timestamp: now},
		{AssetID: pump.ID, MetricName: "temperature", Value: 55, Unit: "°C", Timestamp: now},
		{AssetID: pump.ID, MetricName: "flow_rate", Value: 800, Unit: "m³/hr", Timestamp: now},
	}); err != nil {
		t.Fatalf("insert readings: %v", err)
	}
	return facility, turbine, pump
}

func newTestService(t *testing.T, store *memory.Store, now time.Time) *Service {
	t.Helper()
	svc, err := NewService(store.Facilities(), store.Assets(), store.Readings(), fixedClock{now: now})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestComputeDashboardScenario(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	facility, _, _ := newTestPlant(t, store, now)
	svc := newTestService(t, store, now.Add(time.Minute))

	summary, err := svc.ComputeDashboard(context.Background(), facility.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	temp, ok := metricNamed(summary, "temperature")
	if !ok {
		t.Fatalf("temperature missing")
	}
	if temp.Total != 605 || temp.Avg != 302.5 || temp.Min != 55 || temp.Max != 550 || temp.AssetCount != 2 {
		t.Fatalf("unexpected temperature rollup: %+v", temp)
	}
	if summary.Counts.Operational != 1 || summary.Counts.Warning != 1 || summary.Counts.Critical != 0 || summary.Counts.Offline != 0 {
		t.Fatalf("unexpected counts: %+v", summary.Counts)
	}
	if !summary.LastUpdated.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected clock stamp, got %v", summary.LastUpdated)
	}
	if summary.Facility.Name != "Test Plant" {
		t.Fatalf("unexpected facility: %+v", summary.Facility)
	}
}

func TestComputeDashboardNotFound(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, time.Now())
	if _, err := svc.ComputeDashboard(context.Background(), 42); !errors.Is(err, masterdata.ErrFacilityNotFound) {
		t.Fatalf("expected ErrFacilityNotFound, got %v", err)
	}
}

func TestComputeDashboardEmptyFacility(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	facility := masterdata.Facility{Name: "Empty", Location: "Void", FacilityType: "None"}
	if err := store.Facilities().Create(ctx, &facility); err != nil {
		t.Fatalf("create: %v", err)
	}
	svc := newTestService(t, store, time.Now())
	summary, err := svc.ComputeDashboard(ctx, facility.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if summary.TotalAssets != 0 || len(summary.MetricSummaries) != 0 || len(summary.AssetStatuses) != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestComputeDashboardAssetWithoutReadings(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	facility, _, _ := newTestPlant(t, store, now)
	silent := masterdata.Asset{FacilityID: facility.ID, Name: "Spare Pump", AssetType: "Pump", Status: masterdata.StatusOffline}
	if err := store.Assets().Create(context.Background(), &silent); err != nil {
		t.Fatalf("create: %v", err)
	}

	summary, err := newTestService(t, store, now).ComputeDashboard(context.Background(), facility.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if summary.TotalAssets != 3 || summary.Counts.Offline != 1 {
		t.Fatalf("unexpected totals: %+v", summary.Counts)
	}
	var found bool
	for _, status := range summary.AssetStatuses {
		if status.AssetID == silent.ID {
			found = true
			if len(status.LatestReadings) != 0 {
				t.Fatalf("expected no readings for silent asset")
			}
		}
	}
	if !found {
		t.Fatalf("silent asset missing from statuses")
	}
	if temp, _ := metricNamed(summary, "temperature"); temp.AssetCount != 2 {
		t.Fatalf("silent asset contributed to rollup: %+v", temp)
	}
}

func TestComputeDashboardTieBreakPicksLastInserted(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	facility, turbine, _ := newTestPlant(t, store, now)
	if err := store.Readings().InsertBatch(context.Background(), []telemetry.Reading{
		{AssetID: turbine.ID, MetricName: "temperature", Value: 600, Unit: "°C", Timestamp: now},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	summary, err := newTestService(t, store, now).ComputeDashboard(context.Background(), facility.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if temp, _ := metricNamed(summary, "temperature"); temp.Max != 600 || temp.Total != 655 {
		t.Fatalf("expected later insert to win the tie, got %+v", temp)
	}
}

func TestLiveTickVisibleAsWholeInNextDashboard(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	facility := masterdata.Facility{Name: "Lab", Location: "Bench", FacilityType: "Test"}
	if err := store.Facilities().Create(ctx, &facility); err != nil {
		t.Fatalf("create facility: %v", err)
	}
	asset := masterdata.Asset{FacilityID: facility.ID, Name: "Widget", AssetType: "Widget", Status: masterdata.StatusOperational}
	if err := store.Assets().Create(ctx, &asset); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	model := telemetry.NewSignalModel(map[string][]telemetry.MetricDefinition{
		"Widget": {
			{Name: "temperature", Unit: "°C", Baseline: 40, Noise: 1},
			{Name: "pressure", Unit: "bar", Baseline: 3, Noise: 0.1},
		},
	})
	ingestor, err := telemetryapp.NewIngestor(store.Assets(), store.Readings(), model, telemetry.NewGenerator(9))
	if err != nil {
		t.Fatalf("new ingestor: %v", err)
	}
	tickAt := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	if n, err := ingestor.Tick(ctx, tickAt); err != nil || n != 2 {
		t.Fatalf("tick: %d %v", n, err)
	}

	summary, err := newTestService(t, store, tickAt).ComputeDashboard(ctx, facility.ID)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	readings := summary.AssetStatuses[0].LatestReadings
	if len(readings) != 2 {
		t.Fatalf("expected both tick readings, got %+v", readings)
	}
	for _, r := range readings {
		if !r.Timestamp.Equal(tickAt) {
			t.Fatalf("expected tick timestamp, got %v", r.Timestamp)
		}
	}
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	store := memory.NewStore()
	if _, err := NewService(nil, store.Assets(), store.Readings(), nil); err == nil {
		t.Fatalf("expected error for nil facility reader")
	}
	if _, err := NewService(store.Facilities(), store.Assets(), nil, nil); err == nil {
		t.Fatalf("expected error for nil reading reader")
	}
}

func metricNamed(summary *domaindashboard.Summary, name string) (domaindashboard.MetricSummary, bool) {
	for _, m := range summary.MetricSummaries {
		if m.MetricName == name {
			return m, true
		}
	}
	return domaindashboard.MetricSummary{}, false
}
