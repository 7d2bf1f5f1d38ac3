package snapshotgen

import "time"

// Config holds the shape of a generated snapshot.
type Config struct {
	Shuttles      int           // number of shuttles
	PerShuttle    int           // submissions per shuttle
	FirstDeadline time.Time     // deadline of shuttle 1
	Spacing       time.Duration // gap between consecutive deadlines
	Window        time.Duration // how long before its deadline a shuttle opens
	TilesTotal    int           // capacity per shuttle, 0 omits tile data
	MaxTiles      int           // largest tile count of one submission
	Seed          uint64        // same seed, same snapshot
	OutputFile    string
}

// Snapshot is the submission-stats document the API serves.
type Snapshot struct {
	Shuttles    []Shuttle    `json:"shuttles"`
	Submissions []Submission `json:"submissions"`
}

// Shuttle is one shuttle entry of a snapshot.
type Shuttle struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Deadline   string `json:"deadline"`
	TilesTotal *int   `json:"tiles_total"`
}

// Submission is one submission entry of a snapshot.
type Submission struct {
	ShuttleID           int    `json:"shuttle_id"`
	FirstSubmissionTime string `json:"first_submission_time"`
	TileCount           *int   `json:"tile_count"`
}
