package application

import (
	"context"
	"errors"
	"log"
	"time"

	masterdata "plant-monitor/internal/masterdata/domain"
	"plant-monitor/internal/observability/metrics"
	"plant-monitor/internal/telemetry/application/events"
	telemetry "plant-monitor/internal/telemetry/domain"
)

// AssetLister lists assets, optionally restricted to one facility.
type AssetLister interface {
	List(ctx context.Context, facilityID *int64) ([]masterdata.Asset, error)
}

// Publisher publishes domain events after a batch is committed.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Ingestor produces one live tick of synthetic readings.
type Ingestor struct {
	assets    AssetLister
	readings  telemetry.ReadingRepository
	model     telemetry.SignalModel
	generator *telemetry.Generator
	publisher Publisher
	logger    *log.Logger
}

// IngestorOption configures an Ingestor.
type IngestorOption func(*Ingestor)

// WithPublisher publishes ReadingsIngested after every committed tick.
func WithPublisher(publisher Publisher) IngestorOption {
	return func(i *Ingestor) {
		i.publisher = publisher
	}
}

// WithIngestLogger sets the logger.
func WithIngestLogger(logger *log.Logger) IngestorOption {
	return func(i *Ingestor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewIngestor constructs an Ingestor.
func NewIngestor(assets AssetLister, readings telemetry.ReadingRepository, model telemetry.SignalModel, generator *telemetry.Generator, opts ...IngestorOption) (*Ingestor, error) {
	if assets == nil {
		return nil, errors.New("ingestor: nil asset lister")
	}
	if readings == nil {
		return nil, errors.New("ingestor: nil reading repository")
	}
	if generator == nil {
		return nil, errors.New("ingestor: nil generator")
	}
	ingestor := &Ingestor{
		assets:    assets,
		readings:  readings,
		model:     model,
		generator: generator,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(ingestor)
	}
	return ingestor, nil
}

// Tick writes one reading per (asset, metric) stamped now, as a single batch,
// and returns how many readings were written.
func (i *Ingestor) Tick(ctx context.Context, now time.Time) (int, error) {
	if i == nil {
		return 0, errors.New("ingestor: nil")
	}
	if now.IsZero() {
		return 0, errors.New("ingestor: zero tick time")
	}
	now = now.UTC()

	assets, err := i.assets.List(ctx, nil)
	if err != nil {
		return 0, telemetry.StorageError("list assets", err)
	}
	batch := i.BuildTick(assets, now)
	if len(batch) == 0 {
		return 0, nil
	}
	if err := i.readings.InsertBatch(ctx, batch); err != nil {
		return 0, telemetry.StorageError("insert tick batch", err)
	}
	metrics.AddReadingsIngested(events.SourceLive, len(batch), now)

	if i.publisher != nil {
		evt := events.ReadingsIngested{Source: events.SourceLive, At: now, Count: len(batch), AssetCount: len(assets)}
		if err := i.publisher.Publish(ctx, evt); err != nil {
			i.logger.Printf("ingest: publish error: %v", err)
		}
	}
	return len(batch), nil
}

// BuildTick generates the readings of one tick. The diurnal phase follows the UTC
// time of day so the cycle stays aligned across restarts.
func (i *Ingestor) BuildTick(assets []masterdata.Asset, now time.Time) []telemetry.Reading {
	hours := telemetry.HoursSinceMidnight(now)
	var batch []telemetry.Reading
	for _, asset := range assets {
		for _, def := range i.model.MetricsFor(asset.AssetType) {
			batch = append(batch, telemetry.Reading{
				AssetID:    asset.ID,
				MetricName: def.Name,
				Value:      i.generator.Sample(def, hours),
				Unit:       def.Unit,
				Timestamp:  now,
			})
		}
	}
	return batch
}
