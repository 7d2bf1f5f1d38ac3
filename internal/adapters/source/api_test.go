package source_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/shuttlestats/internal/adapters/source"
	"github.com/okian/shuttlestats/pkg/metrics"
)

const statsBody = `{
  "shuttles": [
    {"id": 9, "name": "Tiny Tapeout 9", "deadline": "2024-11-10T00:00:00Z", "tiles_total": 512},
    {"id": 10, "name": "Tiny Tapeout 10", "deadline": "2025-03-10T12:00:00+01:00", "tiles_total": null}
  ],
  "submissions": [
    {"shuttle_id": 9, "first_submission_time": "2024-11-01T10:00:00.123Z", "tile_count": 2},
    {"shuttle_id": 10, "first_submission_time": "2025-03-01T00:00:00Z", "tile_count": null},
    {"shuttle_id": 9, "first_submission_time": "2024-11-09T23:00:00Z"}
  ]
}`

func newTestMetrics() *metrics.Manager {
	return metrics.NewManager(metrics.WithRegistry(prometheus.NewRegistry()))
}

func TestAPILoad(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/shuttles/submission-stats", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(statsBody))
	}))
	defer srv.Close()

	m := newTestMetrics()
	loader := source.NewAPI(srv.URL+"/api/shuttles/submission-stats", "", source.WithMetrics(m))
	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Shuttles, 2)
	assert.Equal(t, 9, ds.Shuttles[0].ID)
	assert.Equal(t, 512, ds.Shuttles[0].TilesTotal)
	assert.Equal(t, 0, ds.Shuttles[1].TilesTotal)
	assert.Equal(t, time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC), ds.Shuttles[1].Deadline)
	assert.Equal(t, time.UTC, ds.Shuttles[1].Deadline.Location())

	require.Len(t, ds.Submissions, 3)
	assert.True(t, ds.Submissions[0].HasTiles)
	assert.Equal(t, 2, ds.Submissions[0].TileCount)
	assert.False(t, ds.Submissions[1].HasTiles)
	assert.False(t, ds.Submissions[2].HasTiles)

	n, err := testutil.GatherAndCount(m.Registry(), "shuttlestats_api_responses_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAPILoadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dump := filepath.Join(t.TempDir(), "data.json")
	loader := source.NewAPI(srv.URL, dump, source.WithMetrics(newTestMetrics()))
	_, err := loader.Load(context.Background())
	require.ErrorIs(t, err, source.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "500")

	_, statErr := os.Stat(dump)
	assert.True(t, os.IsNotExist(statErr), "no dump is written for a failed fetch")
}

func TestAPILoadDumpsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statsBody))
	}))
	defer srv.Close()

	dump := filepath.Join(t.TempDir(), "data.json")
	loader := source.NewAPI(srv.URL, dump, source.WithMetrics(newTestMetrics()))
	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	got, err := os.ReadFile(dump)
	require.NoError(t, err)
	assert.Equal(t, statsBody, string(got))

	// The dump round-trips through the snapshot loader.
	ds, err := source.NewSnapshot(dump).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Submissions, 3)
}

func TestAPILoadMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":         `<html>`,
		"missing deadline": `{"shuttles":[{"id":1,"name":"x"}],"submissions":[]}`,
		"bad timestamp":    `{"shuttles":[],"submissions":[{"shuttle_id":1,"first_submission_time":"yesterday"}]}`,
		"missing shuttle":  `{"shuttles":[],"submissions":[{"first_submission_time":"2024-01-01"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := source.NewAPI(srv.URL, "", source.WithMetrics(newTestMetrics())).Load(context.Background())
			require.ErrorIs(t, err, source.ErrMalformedData)
		})
	}
}

func TestAPILoadCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(statsBody))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := source.NewAPI(srv.URL, "", source.WithMetrics(newTestMetrics())).Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
