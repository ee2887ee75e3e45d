// Package osrm fetches road-network distance and duration tables from an OSRM
// server.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"evroute/config"
	"evroute/internal/domain/service"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	metersPerKm = 1000.0

	defaultProfile     = "driving"
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 4
	defaultBackoff     = 200 * time.Millisecond
)

// ErrNotConfigured is returned when no base URL is set
var ErrNotConfigured = errors.New("osrm base url is not configured")

// Client calls the OSRM table service
type Client struct {
	baseURL     string
	profile     string
	session     *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
}

var _ service.MatrixProvider = (*Client)(nil)

// NewClient creates a client from configuration. A zero RequestsPerSecond
// leaves calls unthrottled.
func NewClient(cfg config.OSRMConfig, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = slog.Default()
	}

	profile := cfg.Profile
	if profile == "" {
		profile = defaultProfile
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(1, cfg.Burst))
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		profile:     profile,
		session:     &http.Client{Timeout: timeout},
		limiter:     limiter,
		maxAttempts: attempts,
		backoff:     defaultBackoff,
		logger:      logger,
	}, nil
}

type tableResponse struct {
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Table requests the full n x n table for points. Distances are converted
// from meters to kilometers; durations stay in seconds.
func (c *Client) Table(ctx context.Context, points []orb.Point) (*service.Table, error) {
	if len(points) == 0 {
		return &service.Table{}, nil
	}

	endpoint := c.tableURL(points)

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newRequest(ctx, endpoint)
	})
	if err != nil {
		return nil, errors.Wrap(err, "osrm table request failed")
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, errors.Wrap(err, "failed to decode osrm table response")
	}
	if tr.Code != "" && tr.Code != "Ok" {
		return nil, errors.Errorf("osrm returned %s: %s", tr.Code, tr.Message)
	}

	distances, err := square(tr.Distances, len(points), 1/metersPerKm)
	if err != nil {
		return nil, errors.Wrap(err, "distances")
	}
	durations, err := square(tr.Durations, len(points), 1)
	if err != nil {
		return nil, errors.Wrap(err, "durations")
	}

	c.logger.Debug("Fetched OSRM table", slog.Int("points", len(points)))

	return &service.Table{Distances: distances, Durations: durations}, nil
}

func (c *Client) tableURL(points []orb.Point) string {
	coords := make([]string, len(points))
	for i, p := range points {
		coords[i] = strconv.FormatFloat(p.Lon(), 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat(), 'f', -1, 64)
	}

	return fmt.Sprintf("%s/table/v1/%s/%s?annotations=distance,duration",
		c.baseURL, c.profile, strings.Join(coords, ";"))
}

// square checks that rows is n x n without gaps and scales every entry
func square(rows [][]*float64, n int, scale float64) ([][]float64, error) {
	if rows == nil {
		return nil, nil
	}
	if len(rows) != n {
		return nil, errors.Errorf("expected %d rows, got %d", n, len(rows))
	}

	out := make([][]float64, n)
	for i, row := range rows {
		if len(row) != n {
			return nil, errors.Errorf("row %d has %d entries, expected %d", i, len(row), n)
		}
		out[i] = make([]float64, n)
		for j, v := range row {
			if v == nil {
				return nil, errors.Errorf("no route between points %d and %d", i, j)
			}
			out[i][j] = *v * scale
		}
	}

	return out, nil
}
