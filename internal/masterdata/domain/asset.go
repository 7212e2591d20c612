package masterdata

import (
	"context"
	"errors"
	"time"
)

// AssetStatus is the operating state of an asset.
type AssetStatus string

const (
	StatusOperational AssetStatus = "operational"
	StatusWarning     AssetStatus = "warning"
	StatusCritical    AssetStatus = "critical"
	StatusOffline     AssetStatus = "offline"
)

// Statuses lists every status in display order.
var Statuses = []AssetStatus{StatusOperational, StatusWarning, StatusCritical, StatusOffline}

// IsValid reports whether s is a known status.
func (s AssetStatus) IsValid() bool {
	switch s {
	case StatusOperational, StatusWarning, StatusCritical, StatusOffline:
		return true
	default:
		return false
	}
}

// Asset is a monitored piece of equipment. AssetType selects the metrics it reports
// and never changes after creation.
type Asset struct {
	ID         int64
	FacilityID int64
	Name       string
	AssetType  string
	Status     AssetStatus
	CreatedAt  time.Time
}

// Validate checks asset invariants.
func (a Asset) Validate() error {
	if a.FacilityID <= 0 {
		return errors.New("asset: empty facility id")
	}
	if a.Name == "" {
		return errors.New("asset: empty name")
	}
	if a.AssetType == "" {
		return errors.New("asset: empty asset type")
	}
	if !a.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// AssetRepository manages asset persistence.
type AssetRepository interface {
	Get(ctx context.Context, id int64) (*Asset, error)
	// List returns assets ordered by id; a nil facilityID lists every asset.
	List(ctx context.Context, facilityID *int64) ([]Asset, error)
	Create(ctx context.Context, asset *Asset) error
}
