package masterdata

import "errors"

var (
	// ErrFacilityNotFound is returned when a facility id does not resolve.
	ErrFacilityNotFound = errors.New("masterdata: facility not found")
	// ErrAssetNotFound is returned when an asset id does not resolve.
	ErrAssetNotFound = errors.New("masterdata: asset not found")
	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("masterdata: invalid asset status")
)
