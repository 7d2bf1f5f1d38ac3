package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/okian/shuttlestats/internal/config"
	"github.com/okian/shuttlestats/internal/domain/model"
	"github.com/okian/shuttlestats/pkg/logger"
)

// CSV column names.
const (
	colShuttleID = "shuttle_id"
	colSubmitted = "first_submission_time"
	colTileCount = "tile_count"
)

// CSV reads a submissions table whose shuttle metadata comes from the
// configured deadline table and an optional shuttles file.
type CSV struct {
	settings
	path         string
	shuttles     []config.Shuttle
	shuttlesFile string
}

// NewCSV creates a CSV loader. Entries in shuttles override the matching
// fields of entries read from shuttlesFile.
func NewCSV(path string, shuttles []config.Shuttle, shuttlesFile string, opts ...Option) *CSV {
	return &CSV{settings: newSettings(opts), path: path, shuttles: shuttles, shuttlesFile: shuttlesFile}
}

// Path is the file the loader reads.
func (c *CSV) Path() string { return c.path }

// Load implements Loader.
func (c *CSV) Load(ctx context.Context) (*model.Dataset, error) {
	shuttles, err := c.loadShuttles(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	defer f.Close()

	submissions, err := readSubmissions(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	return &model.Dataset{Shuttles: shuttles, Submissions: submissions}, nil
}

func readSubmissions(r io.Reader) ([]model.Submission, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedData)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idCol, ok := cols[colShuttleID]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %s", ErrMalformedData, colShuttleID)
	}
	timeCol, ok := cols[colSubmitted]
	if !ok {
		return nil, fmt.Errorf("%w: missing column %s", ErrMalformedData, colSubmitted)
	}
	tileCol, hasTiles := cols[colTileCount]

	var out []model.Submission
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
		}
		line, _ := cr.FieldPos(0)

		id, err := parseCount(rec[idCol])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrMalformedData, line, colShuttleID, err)
		}
		at, err := model.ParseTimestamp(rec[timeCol])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %s: %v", ErrMalformedData, line, colSubmitted, err)
		}
		sub := model.Submission{ShuttleID: id, FirstSubmissionTime: at}

		if hasTiles && strings.TrimSpace(rec[tileCol]) != "" {
			tiles, err := parseCount(rec[tileCol])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s: %v", ErrMalformedData, line, colTileCount, err)
			}
			sub.TileCount = tiles
			sub.HasTiles = true
		}
		out = append(out, sub)
	}
}

// parseCount accepts integers, including the "12.0" form spreadsheet and
// dataframe exports produce for integer columns with gaps.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	// float64(MaxInt) rounds up to 2^63, which no int can hold.
	if math.Abs(f) >= float64(math.MaxInt) {
		return 0, fmt.Errorf("out of range: %q", s)
	}
	return int(f), nil
}

// shuttleFileEntry is one element of the shuttles file.
type shuttleFileEntry struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Deadline   string `json:"deadline"`
	TilesTotal int    `json:"tiles_total"`
}

// loadShuttles merges the shuttles file with the configured table. Shuttles
// that end up without a deadline cannot be measured and are dropped.
func (c *CSV) loadShuttles(ctx context.Context) ([]model.Shuttle, error) {
	merged := make(map[int]config.Shuttle)

	if c.shuttlesFile != "" {
		entries, err := readShuttlesFile(c.shuttlesFile)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			merged[e.ID] = config.Shuttle{ID: e.ID, Name: e.Name, Deadline: e.Deadline, TilesTotal: e.TilesTotal}
		}
	}

	for _, s := range c.shuttles {
		cur := merged[s.ID]
		cur.ID = s.ID
		if s.Name != "" {
			cur.Name = s.Name
		}
		if s.Deadline != "" {
			cur.Deadline = s.Deadline
		}
		if s.TilesTotal != 0 {
			cur.TilesTotal = s.TilesTotal
		}
		merged[s.ID] = cur
	}

	ids := make([]int, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]model.Shuttle, 0, len(ids))
	for _, id := range ids {
		s := merged[id]
		if strings.TrimSpace(s.Deadline) == "" {
			c.log.Warn(ctx, "shuttle has no deadline, ignoring",
				logger.Int("shuttle_id", id),
				logger.String("name", s.Name),
			)
			continue
		}
		deadline, err := model.ParseTimestamp(s.Deadline)
		if err != nil {
			return nil, fmt.Errorf("%w: shuttle %d: deadline: %v", ErrMalformedData, id, err)
		}
		out = append(out, model.Shuttle{ID: id, Name: s.Name, Deadline: deadline, TilesTotal: s.TilesTotal})
	}
	return out, nil
}

func readShuttlesFile(path string) ([]shuttleFileEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: invalid JSON: %v", ErrMalformedData, path, err)
	}
	var entries []shuttleFileEntry
	if err := json.Unmarshal(standardized, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedData, path, err)
	}
	for i, e := range entries {
		if e.ID == 0 {
			return nil, fmt.Errorf("%w: %s: [%d]: missing id", ErrMalformedData, path, i)
		}
	}
	return entries, nil
}
