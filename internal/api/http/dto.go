package apihttp

import (
	"time"

	domaindashboard "plant-monitor/internal/analytics/domain/dashboard"
	masterdata "plant-monitor/internal/masterdata/domain"
	telemetry "plant-monitor/internal/telemetry/domain"
)

type facilityBrief struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	FacilityType string    `json:"facility_type"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}

type assetBrief struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	AssetType string    `json:"asset_type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type facilityDetail struct {
	facilityBrief
	Assets []assetBrief `json:"assets"`
}

type readingOut struct {
	ID         int64     `json:"id"`
	AssetID    int64     `json:"asset_id"`
	MetricName string    `json:"metric_name"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Timestamp  time.Time `json:"timestamp"`
}

type assetDetail struct {
	ID             int64        `json:"id"`
	FacilityID     int64        `json:"facility_id"`
	Name           string       `json:"name"`
	AssetType      string       `json:"asset_type"`
	Status         string       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	LatestReadings []readingOut `json:"latest_readings"`
}

type metricInfoOut struct {
	MetricName string `json:"metric_name"`
	Unit       string `json:"unit"`
}

type metricSummaryOut struct {
	MetricName string  `json:"metric_name"`
	Unit       string  `json:"unit"`
	TotalValue float64 `json:"total_value"`
	AvgValue   float64 `json:"avg_value"`
	MinValue   float64 `json:"min_value"`
	MaxValue   float64 `json:"max_value"`
	AssetCount int     `json:"asset_count"`
}

type assetStatusOut struct {
	AssetID        int64        `json:"asset_id"`
	AssetName      string       `json:"asset_name"`
	AssetType      string       `json:"asset_type"`
	Status         string       `json:"status"`
	LatestReadings []readingOut `json:"latest_readings"`
}

type dashboardOut struct {
	Facility          facilityBrief      `json:"facility"`
	MetricSummaries   []metricSummaryOut `json:"metric_summaries"`
	AssetStatuses     []assetStatusOut   `json:"asset_statuses"`
	TotalAssets       int                `json:"total_assets"`
	AssetsOperational int                `json:"assets_operational"`
	AssetsWarning     int                `json:"assets_warning"`
	AssetsCritical    int                `json:"assets_critical"`
	AssetsOffline     int                `json:"assets_offline"`
	LastUpdated       time.Time          `json:"last_updated"`
}

func toFacilityBrief(f masterdata.Facility) facilityBrief {
	return facilityBrief{
		ID:           f.ID,
		Name:         f.Name,
		Location:     f.Location,
		FacilityType: f.FacilityType,
		Description:  f.Description,
		CreatedAt:    f.CreatedAt.UTC(),
	}
}

func toAssetBrief(a masterdata.Asset) assetBrief {
	return assetBrief{
		ID:        a.ID,
		Name:      a.Name,
		AssetType: a.AssetType,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt.UTC(),
	}
}

func toReadingsOut(readings []telemetry.Reading) []readingOut {
	out := make([]readingOut, 0, len(readings))
	for _, r := range readings {
		out = append(out, readingOut{
			ID:         r.ID,
			AssetID:    r.AssetID,
			MetricName: r.MetricName,
			Value:      r.Value,
			Unit:       r.Unit,
			Timestamp:  r.Timestamp.UTC(),
		})
	}
	return out
}

func toDashboardOut(s *domaindashboard.Summary) dashboardOut {
	out := dashboardOut{
		Facility:          toFacilityBrief(s.Facility),
		MetricSummaries:   make([]metricSummaryOut, 0, len(s.MetricSummaries)),
		AssetStatuses:     make([]assetStatusOut, 0, len(s.AssetStatuses)),
		TotalAssets:       s.TotalAssets,
		AssetsOperational: s.Counts.Operational,
		AssetsWarning:     s.Counts.Warning,
		AssetsCritical:    s.Counts.Critical,
		AssetsOffline:     s.Counts.Offline,
		LastUpdated:       s.LastUpdated.UTC(),
	}
	for _, m := range s.MetricSummaries {
		out.MetricSummaries = append(out.MetricSummaries, metricSummaryOut{
			MetricName: m.MetricName,
			Unit:       m.Unit,
			TotalValue: m.Total,
			AvgValue:   m.Avg,
			MinValue:   m.Min,
			MaxValue:   m.Max,
			AssetCount: m.AssetCount,
		})
	}
	for _, a := range s.AssetStatuses {
		out.AssetStatuses = append(out.AssetStatuses, assetStatusOut{
			AssetID:        a.AssetID,
			AssetName:      a.AssetName,
			AssetType:      a.AssetType,
			Status:         string(a.Status),
			LatestReadings: toReadingsOut(a.LatestReadings),
		})
	}
	return out
}
