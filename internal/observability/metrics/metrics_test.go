package metrics

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordersBeforeInitAreNoops(t *testing.T) {
	if ingestTicks != nil {
		t.Skip("metrics already registered")
	}
	ObserveIngestTick(ResultSuccess, time.Millisecond)
	AddReadingsIngested("live", 3, time.Now())
	IncSeedRun(SeedOutcomeSeeded)
	ObserveHTTP("GET", "200", time.Millisecond)
}

func TestRecordersAfterInit(t *testing.T) {
	Init(nil, nil)

	ObserveIngestTick("", time.Millisecond)
	ObserveIngestTick(ResultError, time.Millisecond)
	if got := testutil.ToFloat64(ingestTicks.WithLabelValues(ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 successful tick, got %v", got)
	}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	AddReadingsIngested("live", 25, at)
	AddReadingsIngested("live", -4, at)
	if got := testutil.ToFloat64(readingsIngested.WithLabelValues("live")); got != 25 {
		t.Fatalf("expected 25 live readings, got %v", got)
	}
	if got := testutil.ToFloat64(lastIngestAt); got != float64(at.Unix()) {
		t.Fatalf("expected last ingest %d, got %v", at.Unix(), got)
	}

	IncSeedRun(SeedOutcomeSkipped)
	if got := testutil.ToFloat64(seedRuns.WithLabelValues(SeedOutcomeSkipped)); got != 1 {
		t.Fatalf("expected 1 skipped seed, got %v", got)
	}

	ObserveDashboard(ResultNotFound, time.Millisecond)
	if got := testutil.ToFloat64(dashboardTotal.WithLabelValues(ResultNotFound)); got != 1 {
		t.Fatalf("expected 1 dashboard miss, got %v", got)
	}

	ObserveReadingsQuery(ResultInvalid, time.Millisecond)
	if got := testutil.ToFloat64(readingsQueryTotal.WithLabelValues(ResultInvalid)); got != 1 {
		t.Fatalf("expected 1 invalid query, got %v", got)
	}
}

func TestStreamClientsGauge(t *testing.T) {
	clients := 3
	RegisterStreamClients(func() int { return clients })
	if got := testutil.ToFloat64(streamClients); got != 3 {
		t.Fatalf("expected 3 stream clients, got %v", got)
	}
	clients = 1
	if got := testutil.ToFloat64(streamClients); got != 1 {
		t.Fatalf("expected gauge to follow the source, got %v", got)
	}
	RegisterStreamClients(func() int { return 99 })
	if got := testutil.ToFloat64(streamClients); got != 1 {
		t.Fatalf("expected second registration to be ignored, got %v", got)
	}
}

func TestQueryCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM facilities")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assets")).
		WillReturnError(errors.New("connection reset"))

	if got := queryCount(db, nil, "SELECT COUNT(*) FROM facilities"); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	if got := queryCount(db, nil, "SELECT COUNT(*) FROM assets"); got != 0 {
		t.Fatalf("expected 0 on error, got %v", got)
	}
	if got := queryCount(nil, nil, "SELECT 1"); got != 0 {
		t.Fatalf("expected 0 without db, got %v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
