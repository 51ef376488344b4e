// Package station fetches the combined sensor report from a weather station's
// HTTP endpoint.
package station

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/wx-station/internal/domain"
	"github.com/couchcryptid/wx-station/internal/observability"
)

// Variant selects which report the station serves.
type Variant string

const (
	Current  Variant = "current"
	Midnight Variant = "midnight" // requested once a day so the station rolls over daily totals
)

// Fetcher retrieves a station report.
type Fetcher interface {
	Fetch(ctx context.Context, v Variant) (domain.Report, error)
}

// Client implements Fetcher over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.RelayMetrics
	logger     *slog.Logger
}

// NewClient creates a station client for baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.RelayMetrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Fetch requests the report. The midnight variant is served at "/m".
func (c *Client) Fetch(ctx context.Context, v Variant) (domain.Report, error) {
	u := c.baseURL + "/"
	if v == Midnight {
		u = c.baseURL + "/m"
	}

	start := time.Now()
	report, err := c.doRequest(ctx, u)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.Fetches.WithLabelValues(string(v), "error").Inc()
		return domain.Report{}, err
	}
	c.metrics.Fetches.WithLabelValues(string(v), "success").Inc()
	return report, nil
}

func (c *Client) doRequest(ctx context.Context, u string) (domain.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Report{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Report{}, fmt.Errorf("station request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Report{}, fmt.Errorf("station error: status %d: %s", resp.StatusCode, body)
	}

	var report domain.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return domain.Report{}, fmt.Errorf("decode report: %w", err)
	}
	c.logger.Debug("station report fetched", "url", u, "battery", report.Battery)
	return report, nil
}
