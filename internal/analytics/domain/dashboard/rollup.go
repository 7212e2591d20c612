package dashboard

import (
	"sort"
	"time"

	masterdata "plant-monitor/internal/masterdata/domain"
	telemetry "plant-monitor/internal/telemetry/domain"
)

// MetricSummary aggregates the latest value of one metric across a facility's assets.
type MetricSummary struct {
	MetricName string
	Unit       string
	Total      float64
	Avg        float64
	Min        float64
	Max        float64
	AssetCount int
}

// AssetStatus is one asset with its latest reading per metric.
type AssetStatus struct {
	AssetID        int64
	AssetName      string
	AssetType      string
	Status         masterdata.AssetStatus
	LatestReadings []telemetry.Reading
}

// StatusCounts tallies assets by status.
type StatusCounts struct {
	Operational int
	Warning     int
	Critical    int
	Offline     int
}

// Summary is the point-in-time status of one facility.
type Summary struct {
	Facility        masterdata.Facility
	MetricSummaries []MetricSummary
	AssetStatuses   []AssetStatus
	TotalAssets     int
	Counts          StatusCounts
	LastUpdated     time.Time
}

type bucket struct {
	unit  string
	total float64
	min   float64
	max   float64
	count int
}

// Rollup builds the facility summary from its assets and the latest reading of
// every (asset, metric) pair. Readings of assets outside the set are ignored.
// Aggregates are summed at full precision and rounded to 2 decimals on output.
func Rollup(facility masterdata.Facility, assets []masterdata.Asset, latest []telemetry.Reading, now time.Time) Summary {
	summary := Summary{
		Facility:        facility,
		MetricSummaries: []MetricSummary{},
		AssetStatuses:   make([]AssetStatus, 0, len(assets)),
		TotalAssets:     len(assets),
		LastUpdated:     now,
	}

	byAsset := make(map[int64][]telemetry.Reading, len(assets))
	for _, asset := range assets {
		byAsset[asset.ID] = []telemetry.Reading{}
	}

	buckets := make(map[string]*bucket)
	for _, reading := range latest {
		if _, ok := byAsset[reading.AssetID]; !ok {
			continue
		}
		byAsset[reading.AssetID] = append(byAsset[reading.AssetID], reading)

		b, ok := buckets[reading.MetricName]
		if !ok {
			buckets[reading.MetricName] = &bucket{
				unit:  reading.Unit,
				total: reading.Value,
				min:   reading.Value,
				max:   reading.Value,
				count: 1,
			}
			continue
		}
		b.total += reading.Value
		if reading.Value < b.min {
			b.min = reading.Value
		}
		if reading.Value > b.max {
			b.max = reading.Value
		}
		b.count++
	}

	names := make([]string, 0, len(buckets))
	for name := range buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := buckets[name]
		summary.MetricSummaries = append(summary.MetricSummaries, MetricSummary{
			MetricName: name,
			Unit:       b.unit,
			Total:      telemetry.Round2(b.total),
			Avg:        telemetry.Round2(b.total / float64(b.count)),
			Min:        telemetry.Round2(b.min),
			Max:        telemetry.Round2(b.max),
			AssetCount: b.count,
		})
	}

	for _, asset := range assets {
		readings := byAsset[asset.ID]
		sort.Slice(readings, func(i, j int) bool {
			return readings[i].MetricName < readings[j].MetricName
		})
		summary.AssetStatuses = append(summary.AssetStatuses, AssetStatus{
			AssetID:        asset.ID,
			AssetName:      asset.Name,
			AssetType:      asset.AssetType,
			Status:         asset.Status,
			LatestReadings: readings,
		})
		switch asset.Status {
		case masterdata.StatusOperational:
			summary.Counts.Operational++
		case masterdata.StatusWarning:
			summary.Counts.Warning++
		case masterdata.StatusCritical:
			summary.Counts.Critical++
		case masterdata.StatusOffline:
			summary.Counts.Offline++
		}
	}
	return summary
}
