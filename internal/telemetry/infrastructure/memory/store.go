package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	masterdata "plant-monitor/internal/masterdata/domain"
	telemetry "plant-monitor/internal/telemetry/domain"
)

// Store is an in-memory storage boundary for demo runs and tests.
// Facilities, assets and readings share one lock so every batch is applied atomically.
type Store struct {
	mu sync.RWMutex

	facilities map[int64]masterdata.Facility
	assets     map[int64]masterdata.Asset
	readings   []telemetry.Reading

	nextFacilityID int64
	nextAssetID    int64
	nextReadingID  int64

	now func() time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		facilities: make(map[int64]masterdata.Facility),
		assets:     make(map[int64]masterdata.Asset),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Facilities returns the facility repository view.
func (s *Store) Facilities() *FacilityRepository { return &FacilityRepository{store: s} }

// Assets returns the asset repository view.
func (s *Store) Assets() *AssetRepository { return &AssetRepository{store: s} }

// Readings returns the reading repository view.
func (s *Store) Readings() *ReadingRepository { return &ReadingRepository{store: s} }

// FacilityRepository implements masterdata.FacilityRepository on a Store.
type FacilityRepository struct {
	store *Store
}

// Get loads a facility by id.
func (r *FacilityRepository) Get(ctx context.Context, id int64) (*masterdata.Facility, error) {
	_ = ctx
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	facility, ok := r.store.facilities[id]
	if !ok {
		return nil, masterdata.ErrFacilityNotFound
	}
	return &facility, nil
}

// List returns all facilities ordered by id.
func (r *FacilityRepository) List(ctx context.Context) ([]masterdata.Facility, error) {
	_ = ctx
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := make([]masterdata.Facility, 0, len(r.store.facilities))
	for _, facility := range r.store.facilities {
		result = append(result, facility)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Count returns the number of facilities.
func (r *FacilityRepository) Count(ctx context.Context) (int64, error) {
	_ = ctx
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.facilities)), nil
}

// Create stores a facility and assigns its id.
func (r *FacilityRepository) Create(ctx context.Context, facility *masterdata.Facility) error {
	_ = ctx
	if facility == nil {
		return errors.New("memory facility repo: nil facility")
	}
	if err := facility.Validate(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.nextFacilityID++
	facility.ID = r.store.nextFacilityID
	if facility.CreatedAt.IsZero() {
		facility.CreatedAt = r.store.now()
	}
	r.store.facilities[facility.ID] = *facility
	return nil
}

// Delete removes the readings, then the assets, then the facility itself.
func (r *FacilityRepository) Delete(ctx context.Context, id int64) error {
	_ = ctx
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.facilities[id]; !ok {
		return masterdata.ErrFacilityNotFound
	}
	owned := make(map[int64]struct{})
	for assetID, asset := range r.store.assets {
		if asset.FacilityID == id {
			owned[assetID] = struct{}{}
		}
	}
	kept := r.store.readings[:0]
	for _, reading := range r.store.readings {
		if _, ok := owned[reading.AssetID]; !ok {
			kept = append(kept, reading)
		}
	}
	r.store.readings = kept
	for assetID := range owned {
		delete(r.store.assets, assetID)
	}
	delete(r.store.facilities, id)
	return nil
}

// AssetRepository implements masterdata.AssetRepository on a Store.
type AssetRepository struct {
	store *Store
}

// Get loads an asset by id.
func (r *AssetRepository) Get(ctx context.Context, id int64) (*masterdata.Asset, error) {
	_ = ctx
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	asset, ok := r.store.assets[id]
	if !ok {
		return nil, masterdata.ErrAssetNotFound
	}
	return &asset, nil
}

// List returns assets ordered by id, optionally for one facility.
func (r *AssetRepository) List(ctx context.Context, facilityID *int64) ([]masterdata.Asset, error) {
	_ = ctx
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	result := make([]masterdata.Asset, 0)
	for _, asset := range r.store.assets {
		if facilityID != nil && asset.FacilityID != *facilityID {
			continue
		}
		result = append(result, asset)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Create stores an asset under an existing facility and assigns its id.
func (r *AssetRepository) Create(ctx context.Context, asset *masterdata.Asset) error {
	_ = ctx
	if asset == nil {
		return errors.New("memory asset repo: nil asset")
	}
	if asset.ID != 0 {
		return errors.New("memory asset repo: asset already has an id")
	}
	if err := asset.Validate(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.facilities[asset.FacilityID]; !ok {
		return masterdata.ErrFacilityNotFound
	}
	r.store.nextAssetID++
	asset.ID = r.store.nextAssetID
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = r.store.now()
	}
	r.store.assets[asset.ID] = *asset
	return nil
}

// ReadingRepository implements telemetry.ReadingRepository on a Store.
type ReadingRepository struct {
	store *Store
}

// InsertBatch appends readings under a single write lock. The batch is rejected
// as a whole if any reading is invalid or references a missing asset.
func (r *ReadingRepository) InsertBatch(ctx context.Context, readings []telemetry.Reading) error {
	_ = ctx
	if len(readings) == 0 {
		return nil
	}
	for _, reading := range readings {
		if err := reading.Validate(); err != nil {
			return err
		}
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, reading := range readings {
		if _, ok := r.store.assets[reading.AssetID]; !ok {
			return masterdata.ErrAssetNotFound
		}
	}
	for _, reading := range readings {
		r.store.nextReadingID++
		reading.ID = r.store.nextReadingID
		reading.Timestamp = reading.Timestamp.UTC()
		r.store.readings = append(r.store.readings, reading)
	}
	return nil
}

// LatestPerGroup returns the newest reading per (asset, metric) for the given assets,
// ordered by asset id then metric name.
func (r *ReadingRepository) LatestPerGroup(ctx context.Context, assetIDs []int64) ([]telemetry.Reading, error) {
	_ = ctx
	wanted := make(map[int64]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		wanted[id] = struct{}{}
	}

	type groupKey struct {
		assetID int64
		metric  string
	}
	r.store.mu.RLock()
	latest := make(map[groupKey]telemetry.Reading)
	for _, reading := range r.store.readings {
		if _, ok := wanted[reading.AssetID]; !ok {
			continue
		}
		key := groupKey{assetID: reading.AssetID, metric: reading.MetricName}
		if current, ok := latest[key]; !ok || reading.NewerThan(current) {
			latest[key] = reading
		}
	}
	r.store.mu.RUnlock()

	result := make([]telemetry.Reading, 0, len(latest))
	for _, reading := range latest {
		result = append(result, reading)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AssetID != result[j].AssetID {
			return result[i].AssetID < result[j].AssetID
		}
		return result[i].MetricName < result[j].MetricName
	})
	return result, nil
}

// QueryFiltered returns matching readings newest first, capped at the filter limit.
func (r *ReadingRepository) QueryFiltered(ctx context.Context, filter telemetry.ReadingFilter) ([]telemetry.Reading, error) {
	_ = ctx
	filter, err := filter.Normalize()
	if err != nil {
		return nil, err
	}

	r.store.mu.RLock()
	result := make([]telemetry.Reading, 0)
	for _, reading := range r.store.readings {
		asset, ok := r.store.assets[reading.AssetID]
		if !ok {
			continue
		}
		if filter.Matches(reading, asset.FacilityID) {
			result = append(result, reading)
		}
	}
	r.store.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].NewerThan(result[j]) })
	if limit := filter.EffectiveLimit(); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// DistinctMetrics lists the (metric, unit) pairs reported by the given assets.
func (r *ReadingRepository) DistinctMetrics(ctx context.Context, assetIDs []int64) ([]telemetry.MetricInfo, error) {
	_ = ctx
	wanted := make(map[int64]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		wanted[id] = struct{}{}
	}
	r.store.mu.RLock()
	seen := make(map[telemetry.MetricInfo]struct{})
	for _, reading := range r.store.readings {
		if _, ok := wanted[reading.AssetID]; !ok {
			continue
		}
		seen[telemetry.MetricInfo{MetricName: reading.MetricName, Unit: reading.Unit}] = struct{}{}
	}
	r.store.mu.RUnlock()

	result := make([]telemetry.MetricInfo, 0, len(seen))
	for info := range seen {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].MetricName != result[j].MetricName {
			return result[i].MetricName < result[j].MetricName
		}
		return result[i].Unit < result[j].Unit
	})
	return result, nil
}
