package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/natefinch/atomic"

	"github.com/okian/shuttlestats/internal/domain/model"
	"github.com/okian/shuttlestats/pkg/logger"
)

// API fetches the live submission statistics with a single GET.
type API struct {
	settings
	url      string
	dumpPath string
}

// NewAPI creates an API loader. A non-empty dumpPath receives the raw
// response body before it is decoded.
func NewAPI(url, dumpPath string, opts ...Option) *API {
	return &API{settings: newSettings(opts), url: url, dumpPath: dumpPath}
}

// Load implements Loader.
func (a *API) Load(ctx context.Context) (*model.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", a.url, err)
	}
	defer resp.Body.Close()

	a.metrics.RecordAPIResponse(resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	a.log.Debug(ctx, "fetched submission stats",
		logger.String("url", a.url),
		logger.Int("bytes", len(body)),
	)

	if a.dumpPath != "" {
		if err := atomic.WriteFile(a.dumpPath, bytes.NewReader(body)); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDump, a.dumpPath, err)
		}
		a.log.Info(ctx, "dumped response", logger.String("path", a.dumpPath))
	}

	return decodeStats(body)
}
