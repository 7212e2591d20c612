package events

import "time"

// ReadingsIngested is published after a batch of readings has been committed.
type ReadingsIngested struct {
	Source     string    `json:"source"`
	At         time.Time `json:"at"`
	Count      int       `json:"count"`
	AssetCount int       `json:"asset_count"`
}

const (
	SourceLive = "live"
	SourceSeed = "seed"
)
