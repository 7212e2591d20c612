package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	telemetry "plant-monitor/internal/telemetry/domain"
)

// LatestPerGroup returns the newest reading per (asset_id, metric_name).
// Ties on ts resolve to the highest id.
func (r *ReadingRepository) LatestPerGroup(ctx context.Context, assetIDs []int64) ([]telemetry.Reading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if len(assetIDs) == 0 {
		return []telemetry.Reading{}, nil
	}

	query := fmt.Sprintf(`
SELECT DISTINCT ON (asset_id, metric_name)
	id, asset_id, metric_name, value, unit, ts
FROM %s
WHERE asset_id = ANY($1)
ORDER BY asset_id ASC, metric_name ASC, ts DESC, id DESC`, r.table)

	return r.queryReadings(ctx, query, assetIDs)
}

// QueryFiltered returns readings matching the filter, newest first.
func (r *ReadingRepository) QueryFiltered(ctx context.Context, filter telemetry.ReadingFilter) ([]telemetry.Reading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	var (
		conditions []string
		args       []any
	)
	bind := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.FacilityID != nil {
		conditions = append(conditions, fmt.Sprintf("asset_id IN (SELECT id FROM %s WHERE facility_id = %s)", r.assetsTable, bind(*filter.FacilityID)))
	}
	if filter.AssetID != nil {
		conditions = append(conditions, "asset_id = "+bind(*filter.AssetID))
	}
	if filter.MetricName != nil {
		conditions = append(conditions, "metric_name = "+bind(*filter.MetricName))
	}
	if filter.Start != nil {
		conditions = append(conditions, "ts >= "+bind(filter.Start.UTC()))
	}
	if filter.End != nil {
		conditions = append(conditions, "ts <= "+bind(filter.End.UTC()))
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, "\n\tAND ")
	}
	query := fmt.Sprintf(`
SELECT id, asset_id, metric_name, value, unit, ts
FROM %s
%s
ORDER BY ts DESC, id DESC
LIMIT %s`, r.table, where, bind(filter.EffectiveLimit()))

	return r.queryReadings(ctx, query, args...)
}

// DistinctMetrics lists the (metric_name, unit) pairs reported by the given assets.
func (r *ReadingRepository) DistinctMetrics(ctx context.Context, assetIDs []int64) ([]telemetry.MetricInfo, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if len(assetIDs) == 0 {
		return []telemetry.MetricInfo{}, nil
	}

	query := fmt.Sprintf(`
SELECT DISTINCT metric_name, unit
FROM %s
WHERE asset_id = ANY($1)
ORDER BY metric_name ASC, unit ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, assetIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]telemetry.MetricInfo, 0)
	for rows.Next() {
		var info telemetry.MetricInfo
		if err := rows.Scan(&info.MetricName, &info.Unit); err != nil {
			return nil, err
		}
		result = append(result, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *ReadingRepository) queryReadings(ctx context.Context, query string, args ...any) ([]telemetry.Reading, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]telemetry.Reading, 0)
	for rows.Next() {
		var (
			reading telemetry.Reading
			ts      time.Time
		)
		if err := rows.Scan(
			&reading.ID,
			&reading.AssetID,
			&reading.MetricName,
			&reading.Value,
			&reading.Unit,
			&ts,
		); err != nil {
			return nil, err
		}
		reading.Timestamp = ts.UTC()
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
