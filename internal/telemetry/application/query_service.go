package application

import (
	"context"
	"errors"
	"time"

	masterdata "plant-monitor/internal/masterdata/domain"
	"plant-monitor/internal/observability/metrics"
	telemetry "plant-monitor/internal/telemetry/domain"
)

// AssetReader loads assets.
type AssetReader interface {
	Get(ctx context.Context, id int64) (*masterdata.Asset, error)
	List(ctx context.Context, facilityID *int64) ([]masterdata.Asset, error)
}

// AssetSnapshot is an asset with its latest reading per metric.
type AssetSnapshot struct {
	Asset          masterdata.Asset
	LatestReadings []telemetry.Reading
}

// QueryService serves read-side reading queries.
type QueryService struct {
	readings telemetry.ReadingRepository
	assets   AssetReader
}

// NewQueryService constructs a QueryService.
func NewQueryService(readings telemetry.ReadingRepository, assets AssetReader) (*QueryService, error) {
	if readings == nil {
		return nil, errors.New("query: nil reading repository")
	}
	if assets == nil {
		return nil, errors.New("query: nil asset reader")
	}
	return &QueryService{readings: readings, assets: assets}, nil
}

// QueryReadings returns readings matching all set filter fields, newest first,
// capped at the filter limit. Unknown facility or asset ids yield an empty result.
func (s *QueryService) QueryReadings(ctx context.Context, filter telemetry.ReadingFilter) ([]telemetry.Reading, error) {
	start := time.Now()
	normalized, err := filter.Normalize()
	if err != nil {
		metrics.ObserveReadingsQuery(metrics.ResultInvalid, time.Since(start))
		return nil, err
	}
	readings, err := s.readings.QueryFiltered(ctx, normalized)
	if err != nil {
		metrics.ObserveReadingsQuery(metrics.ResultError, time.Since(start))
		return nil, telemetry.StorageError("query readings", err)
	}
	if readings == nil {
		readings = []telemetry.Reading{}
	}
	metrics.ObserveReadingsQuery(metrics.ResultSuccess, time.Since(start))
	return readings, nil
}

// AssetDetail returns the asset and the latest reading of each metric it reports.
func (s *QueryService) AssetDetail(ctx context.Context, assetID int64) (*AssetSnapshot, error) {
	asset, err := s.assets.Get(ctx, assetID)
	if err != nil {
		if errors.Is(err, masterdata.ErrAssetNotFound) {
			return nil, err
		}
		return nil, telemetry.StorageError("get asset", err)
	}
	latest, err := s.readings.LatestPerGroup(ctx, []int64{asset.ID})
	if err != nil {
		return nil, telemetry.StorageError("latest readings", err)
	}
	if latest == nil {
		latest = []telemetry.Reading{}
	}
	return &AssetSnapshot{Asset: *asset, LatestReadings: latest}, nil
}

// FacilityMetrics lists the distinct metrics reported by a facility's assets.
func (s *QueryService) FacilityMetrics(ctx context.Context, facilityID int64) ([]telemetry.MetricInfo, error) {
	assets, err := s.assets.List(ctx, &facilityID)
	if err != nil {
		return nil, telemetry.StorageError("list assets", err)
	}
	if len(assets) == 0 {
		return []telemetry.MetricInfo{}, nil
	}
	ids := make([]int64, 0, len(assets))
	for _, asset := range assets {
		ids = append(ids, asset.ID)
	}
	infos, err := s.readings.DistinctMetrics(ctx, ids)
	if err != nil {
		return nil, telemetry.StorageError("distinct metrics", err)
	}
	if infos == nil {
		infos = []telemetry.MetricInfo{}
	}
	return infos, nil
}
