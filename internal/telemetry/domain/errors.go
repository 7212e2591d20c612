package telemetry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks caller errors in reading queries.
	ErrInvalidInput = errors.New("telemetry: invalid input")
	// ErrInvalidLimit is returned for a limit outside [MinQueryLimit, MaxQueryLimit].
	ErrInvalidLimit = fmt.Errorf("%w: limit must be between %d and %d", ErrInvalidInput, MinQueryLimit, MaxQueryLimit)
	// ErrInvalidTimeRange is returned when the end time precedes the start time.
	ErrInvalidTimeRange = fmt.Errorf("%w: end time before start time", ErrInvalidInput)
	// ErrInvalidReading is returned when a reading cannot be written.
	ErrInvalidReading = fmt.Errorf("%w: invalid reading", ErrInvalidInput)
	// ErrStorage wraps failures of the storage boundary.
	ErrStorage = errors.New("telemetry: storage error")
)

// StorageError wraps err so that errors.Is(result, ErrStorage) holds.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
