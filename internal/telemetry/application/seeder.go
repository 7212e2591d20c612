package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	masterdataapp "plant-monitor/internal/masterdata/application"
	masterdata "plant-monitor/internal/masterdata/domain"
	"plant-monitor/internal/observability/metrics"
	"plant-monitor/internal/telemetry/application/events"
	telemetry "plant-monitor/internal/telemetry/domain"
)

const (
	DefaultSeedLookback = 24 * time.Hour
	DefaultSeedStep     = 5 * time.Minute
)

// FacilityCounter reports how many facilities exist.
type FacilityCounter interface {
	Count(ctx context.Context) (int64, error)
}

// SeedConfig controls the historical seed window.
type SeedConfig struct {
	Lookback time.Duration
	Step     time.Duration
	Catalog  []masterdataapp.FacilitySpec
}

// SeedResult summarises a seed run.
type SeedResult struct {
	Skipped    bool
	Facilities int
	Assets     int
	Readings   int
}

// Seeder provisions the catalog and backfills a window of history once.
type Seeder struct {
	facilities  FacilityCounter
	provisioner *masterdataapp.Provisioner
	readings    telemetry.ReadingRepository
	model       telemetry.SignalModel
	generator   *telemetry.Generator
	clock       Clock
	cfg         SeedConfig
	publisher   Publisher
	logger      *log.Logger
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithSeedClock overrides the clock.
func WithSeedClock(clock Clock) SeederOption {
	return func(s *Seeder) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithSeedPublisher publishes ReadingsIngested after the seed batch.
func WithSeedPublisher(publisher Publisher) SeederOption {
	return func(s *Seeder) {
		s.publisher = publisher
	}
}

// WithSeedLogger sets the logger.
func WithSeedLogger(logger *log.Logger) SeederOption {
	return func(s *Seeder) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSeeder constructs a Seeder. Zero lookback/step fall back to 24h/5m.
func NewSeeder(
	facilities FacilityCounter,
	provisioner *masterdataapp.Provisioner,
	readings telemetry.ReadingRepository,
	model telemetry.SignalModel,
	generator *telemetry.Generator,
	cfg SeedConfig,
	opts ...SeederOption,
) (*Seeder, error) {
	if facilities == nil {
		return nil, errors.New("seeder: nil facility counter")
	}
	if provisioner == nil {
		return nil, errors.New("seeder: nil provisioner")
	}
	if readings == nil {
		return nil, errors.New("seeder: nil reading repository")
	}
	if generator == nil {
		return nil, errors.New("seeder: nil generator")
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = DefaultSeedLookback
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultSeedStep
	}
	if cfg.Step > cfg.Lookback {
		return nil, fmt.Errorf("seeder: step %s exceeds lookback %s", cfg.Step, cfg.Lookback)
	}
	if cfg.Catalog == nil {
		cfg.Catalog = masterdataapp.DefaultCatalog()
	}
	seeder := &Seeder{
		facilities:  facilities,
		provisioner: provisioner,
		readings:    readings,
		model:       model,
		generator:   generator,
		clock:       SystemClock{},
		cfg:         cfg,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(seeder)
	}
	return seeder, nil
}

// RunHistoricalSeedIfEmpty seeds only when no facility exists, so repeated calls are no-ops.
func (s *Seeder) RunHistoricalSeedIfEmpty(ctx context.Context) (SeedResult, error) {
	count, err := s.facilities.Count(ctx)
	if err != nil {
		metrics.IncSeedRun(metrics.SeedOutcomeFailed)
		return SeedResult{}, telemetry.StorageError("count facilities", err)
	}
	if count > 0 {
		s.logger.Printf("seed: skipped, facilities=%d", count)
		metrics.IncSeedRun(metrics.SeedOutcomeSkipped)
		return SeedResult{Skipped: true}, nil
	}

	assets, err := s.provisioner.Provision(ctx, s.cfg.Catalog)
	if err != nil {
		metrics.IncSeedRun(metrics.SeedOutcomeFailed)
		return SeedResult{}, err
	}

	now := s.clock.Now().UTC()
	batch := s.BuildHistory(assets, now)
	if err := s.readings.InsertBatch(ctx, batch); err != nil {
		metrics.IncSeedRun(metrics.SeedOutcomeFailed)
		return SeedResult{}, telemetry.StorageError("insert seed batch", err)
	}
	metrics.IncSeedRun(metrics.SeedOutcomeSeeded)
	metrics.AddReadingsIngested(events.SourceSeed, len(batch), now)

	if s.publisher != nil {
		evt := events.ReadingsIngested{Source: events.SourceSeed, At: now, Count: len(batch), AssetCount: len(assets)}
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Printf("seed: publish error: %v", err)
		}
	}

	result := SeedResult{Facilities: len(s.cfg.Catalog), Assets: len(assets), Readings: len(batch)}
	s.logger.Printf("seed: facilities=%d assets=%d readings=%d", result.Facilities, result.Assets, result.Readings)
	return result, nil
}

// BuildHistory generates one reading per (asset, metric, step) for the window ending
// at now, both ends included. The diurnal phase is the time elapsed since the window start.
func (s *Seeder) BuildHistory(assets []masterdata.Asset, now time.Time) []telemetry.Reading {
	start := now.Add(-s.cfg.Lookback)
	steps := int(s.cfg.Lookback/s.cfg.Step) + 1

	var batch []telemetry.Reading
	for _, asset := range assets {
		defs := s.model.MetricsFor(asset.AssetType)
		if len(defs) == 0 {
			continue
		}
		for step := 0; step < steps; step++ {
			ts := start.Add(time.Duration(step) * s.cfg.Step)
			if ts.After(now) {
				break
			}
			hours := ts.Sub(start).Hours()
			for _, def := range defs {
				batch = append(batch, telemetry.Reading{
					AssetID:    asset.ID,
					MetricName: def.Name,
					Value:      s.generator.Sample(def, hours),
					Unit:       def.Unit,
					Timestamp:  ts,
				})
			}
		}
	}
	return batch
}
