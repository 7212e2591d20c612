package dashboard

import (
	"context"
	"errors"
	"time"

	domaindashboard "plant-monitor/internal/analytics/domain/dashboard"
	masterdata "plant-monitor/internal/masterdata/domain"
	"plant-monitor/internal/observability/metrics"
	telemetry "plant-monitor/internal/telemetry/domain"
)

// FacilityReader loads a facility.
type FacilityReader interface {
	Get(ctx context.Context, id int64) (*masterdata.Facility, error)
}

// AssetLister lists the assets of a facility.
type AssetLister interface {
	List(ctx context.Context, facilityID *int64) ([]masterdata.Asset, error)
}

// LatestReadingReader returns the latest reading per (asset, metric).
type LatestReadingReader interface {
	LatestPerGroup(ctx context.Context, assetIDs []int64) ([]telemetry.Reading, error)
}

// Clock provides time for the summary stamp.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Service computes facility dashboards.
type Service struct {
	facilities FacilityReader
	assets     AssetLister
	readings   LatestReadingReader
	clock      Clock
}

// NewService constructs the dashboard service. A nil clock uses the wall clock.
func NewService(facilities FacilityReader, assets AssetLister, readings LatestReadingReader, clock Clock) (*Service, error) {
	if facilities == nil {
		return nil, errors.New("dashboard: nil facility reader")
	}
	if assets == nil {
		return nil, errors.New("dashboard: nil asset lister")
	}
	if readings == nil {
		return nil, errors.New("dashboard: nil reading reader")
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Service{facilities: facilities, assets: assets, readings: readings, clock: clock}, nil
}

// ComputeDashboard returns the current summary of a facility. It fails with
// masterdata.ErrFacilityNotFound when the facility does not exist; a facility
// without assets or readings yields an empty summary.
func (s *Service) ComputeDashboard(ctx context.Context, facilityID int64) (*domaindashboard.Summary, error) {
	start := time.Now()
	summary, err := s.compute(ctx, facilityID)
	switch {
	case err == nil:
		metrics.ObserveDashboard(metrics.ResultSuccess, time.Since(start))
	case errors.Is(err, masterdata.ErrFacilityNotFound):
		metrics.ObserveDashboard(metrics.ResultNotFound, time.Since(start))
	default:
		metrics.ObserveDashboard(metrics.ResultError, time.Since(start))
	}
	return summary, err
}

func (s *Service) compute(ctx context.Context, facilityID int64) (*domaindashboard.Summary, error) {
	facility, err := s.facilities.Get(ctx, facilityID)
	if err != nil {
		if errors.Is(err, masterdata.ErrFacilityNotFound) {
			return nil, err
		}
		return nil, telemetry.StorageError("get facility", err)
	}

	assets, err := s.assets.List(ctx, &facility.ID)
	if err != nil {
		return nil, telemetry.StorageError("list assets", err)
	}

	var latest []telemetry.Reading
	if len(assets) > 0 {
		ids := make([]int64, 0, len(assets))
		for _, asset := range assets {
			ids = append(ids, asset.ID)
		}
		latest, err = s.readings.LatestPerGroup(ctx, ids)
		if err != nil {
			return nil, telemetry.StorageError("latest readings", err)
		}
	}

	summary := domaindashboard.Rollup(*facility, assets, latest, s.clock.Now().UTC())
	return &summary, nil
}
