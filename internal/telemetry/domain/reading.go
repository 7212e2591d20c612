package telemetry

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	// DefaultQueryLimit caps a readings query when no limit is given.
	DefaultQueryLimit = 500
	// MinQueryLimit is the smallest accepted limit.
	MinQueryLimit = 1
	// MaxQueryLimit is the largest accepted limit.
	MaxQueryLimit = 5000
)

// Reading is one immutable measurement of one metric on one asset.
// ID is the insertion sequence and breaks timestamp ties: the higher ID is newer.
type Reading struct {
	ID         int64
	AssetID    int64
	MetricName string
	Value      float64
	Unit       string
	Timestamp  time.Time
}

// Validate checks reading invariants before it is written.
func (r Reading) Validate() error {
	if r.AssetID <= 0 {
		return fmt.Errorf("%w: empty asset id", ErrInvalidReading)
	}
	if r.MetricName == "" {
		return fmt.Errorf("%w: empty metric name", ErrInvalidReading)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrInvalidReading)
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return fmt.Errorf("%w: non-finite value", ErrInvalidReading)
	}
	return nil
}

// NewerThan reports whether r supersedes other for the same (asset, metric).
func (r Reading) NewerThan(other Reading) bool {
	if !r.Timestamp.Equal(other.Timestamp) {
		return r.Timestamp.After(other.Timestamp)
	}
	return r.ID > other.ID
}

// ReadingFilter selects readings. Nil fields are not applied; set fields are ANDed.
// A nil Limit means DefaultQueryLimit.
type ReadingFilter struct {
	FacilityID *int64
	AssetID    *int64
	MetricName *string
	Start      *time.Time
	End        *time.Time
	Limit      *int
}

// WithLimit returns a copy of f capped at n readings.
func (f ReadingFilter) WithLimit(n int) ReadingFilter {
	f.Limit = &n
	return f
}

// EffectiveLimit returns the limit that applies to f.
func (f ReadingFilter) EffectiveLimit() int {
	if f.Limit == nil {
		return DefaultQueryLimit
	}
	return *f.Limit
}

// Normalize pins the limit and validates the filter. A set limit outside
// [MinQueryLimit, MaxQueryLimit], zero included, is rejected; inverted ranges
// are rejected too. Nothing is clamped or swapped.
func (f ReadingFilter) Normalize() (ReadingFilter, error) {
	limit := f.EffectiveLimit()
	if limit < MinQueryLimit || limit > MaxQueryLimit {
		return f, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	f.Limit = &limit
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return f, ErrInvalidTimeRange
	}
	return f, nil
}

// Matches reports whether a reading of an asset in facilityID passes the filter.
func (f ReadingFilter) Matches(r Reading, facilityID int64) bool {
	if f.FacilityID != nil && *f.FacilityID != facilityID {
		return false
	}
	if f.AssetID != nil && *f.AssetID != r.AssetID {
		return false
	}
	if f.MetricName != nil && *f.MetricName != r.MetricName {
		return false
	}
	if f.Start != nil && r.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && r.Timestamp.After(*f.End) {
		return false
	}
	return true
}

// MetricInfo is a metric name with the unit it is reported in.
type MetricInfo struct {
	MetricName string
	Unit       string
}

// ReadingRepository is the append-only reading store.
type ReadingRepository interface {
	// InsertBatch writes all readings atomically.
	InsertBatch(ctx context.Context, readings []Reading) error
	// LatestPerGroup returns the newest reading per (asset, metric) for the given assets.
	LatestPerGroup(ctx context.Context, assetIDs []int64) ([]Reading, error)
	// QueryFiltered returns readings ordered newest first, at most filter.Limit of them.
	QueryFiltered(ctx context.Context, filter ReadingFilter) ([]Reading, error)
	// DistinctMetrics lists the (metric, unit) pairs reported by the given assets.
	DistinctMetrics(ctx context.Context, assetIDs []int64) ([]MetricInfo, error)
}
