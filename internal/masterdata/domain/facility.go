package masterdata

import (
	"context"
	"errors"
	"time"
)

// Facility is a physical plant that owns a set of assets.
type Facility struct {
	ID           int64
	Name         string
	Location     string
	FacilityType string
	Description  string
	CreatedAt    time.Time
}

// Validate checks facility invariants.
func (f Facility) Validate() error {
	if f.Name == "" {
		return errors.New("facility: empty name")
	}
	if f.Location == "" {
		return errors.New("facility: empty location")
	}
	if f.FacilityType == "" {
		return errors.New("facility: empty facility type")
	}
	return nil
}

// FacilityRepository manages facility persistence.
type FacilityRepository interface {
	Get(ctx context.Context, id int64) (*Facility, error)
	List(ctx context.Context) ([]Facility, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, facility *Facility) error
	// Delete removes the facility together with its assets and their readings.
	Delete(ctx context.Context, id int64) error
}
