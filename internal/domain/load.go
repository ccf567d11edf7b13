package domain

import "time"

// Origin records where a dataset snapshot came from.
type Origin string

const (
	OriginRemote    Origin = "remote"
	OriginFile      Origin = "file"
	OriginSynthetic Origin = "synthetic"
)

// LoadEvent is one dataset load, kept for the load history view.
type LoadEvent struct {
	ID         int64
	SnapshotID string
	Dataset    string // "hplc" or "hpos"
	Origin     Origin
	Rows       int
	Warnings   string // newline-separated
	LoadedAt   time.Time
}
