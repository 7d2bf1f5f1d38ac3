package source

import (
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"

	"github.com/okian/shuttlestats/internal/domain/model"
)

// statsPayload is the submission-stats document served by the API and
// stored in snapshots.
type statsPayload struct {
	Shuttles    []shuttlePayload    `json:"shuttles"`
	Submissions []submissionPayload `json:"submissions"`
}

type shuttlePayload struct {
	ID         *int    `json:"id"`
	Name       string  `json:"name"`
	Deadline   *string `json:"deadline"`
	TilesTotal *int    `json:"tiles_total"`
}

type submissionPayload struct {
	ShuttleID           *int    `json:"shuttle_id"`
	FirstSubmissionTime *string `json:"first_submission_time"`
	TileCount           *int    `json:"tile_count"`
}

// decodeStats parses a stats document. Comments and trailing commas are
// accepted so hand-edited snapshots still load.
func decodeStats(data []byte) (*model.Dataset, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedData, err)
	}

	var p statsPayload
	if err := json.Unmarshal(standardized, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	ds := &model.Dataset{
		Shuttles:    make([]model.Shuttle, 0, len(p.Shuttles)),
		Submissions: make([]model.Submission, 0, len(p.Submissions)),
	}
	for i, sp := range p.Shuttles {
		s, err := sp.toModel()
		if err != nil {
			return nil, fmt.Errorf("%w: shuttles[%d]: %v", ErrMalformedData, i, err)
		}
		ds.Shuttles = append(ds.Shuttles, s)
	}
	for i, sp := range p.Submissions {
		s, err := sp.toModel()
		if err != nil {
			return nil, fmt.Errorf("%w: submissions[%d]: %v", ErrMalformedData, i, err)
		}
		ds.Submissions = append(ds.Submissions, s)
	}
	return ds, nil
}

func (p shuttlePayload) toModel() (model.Shuttle, error) {
	if p.ID == nil {
		return model.Shuttle{}, fmt.Errorf("missing id")
	}
	if p.Deadline == nil {
		return model.Shuttle{}, fmt.Errorf("missing deadline")
	}
	deadline, err := model.ParseTimestamp(*p.Deadline)
	if err != nil {
		return model.Shuttle{}, fmt.Errorf("deadline: %w", err)
	}
	s := model.Shuttle{ID: *p.ID, Name: p.Name, Deadline: deadline}
	if p.TilesTotal != nil {
		s.TilesTotal = *p.TilesTotal
	}
	return s, nil
}

func (p submissionPayload) toModel() (model.Submission, error) {
	if p.ShuttleID == nil {
		return model.Submission{}, fmt.Errorf("missing shuttle_id")
	}
	if p.FirstSubmissionTime == nil {
		return model.Submission{}, fmt.Errorf("missing first_submission_time")
	}
	at, err := model.ParseTimestamp(*p.FirstSubmissionTime)
	if err != nil {
		return model.Submission{}, fmt.Errorf("first_submission_time: %w", err)
	}
	s := model.Submission{ShuttleID: *p.ShuttleID, FirstSubmissionTime: at}
	if p.TileCount != nil {
		s.TileCount = *p.TileCount
		s.HasTiles = true
	}
	return s, nil
}
