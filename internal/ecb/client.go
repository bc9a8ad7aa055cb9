// Package ecb fetches the daily euro foreign exchange reference rates from the
// ECB data portal and normalizes them into rate snapshots.
package ecb

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ahmethakanbesel/ecb-exchange/internal/rate"
)

const (
	DefaultEndpoint = "https://data-api.ecb.europa.eu/service/data/EXR/D..EUR.SP00.A?format=jsondata&lastNObservations=1"
	userAgent       = "ecb-exchange/0.1.0"
)

var _ rate.Source = (*Client)(nil)

// Client retrieves the latest reference rate for every quoted currency.
type Client struct {
	client   *http.Client
	endpoint string
	now      func() time.Time
}

// New creates a Client with the given options applied.
func New(opts ...Option) *Client {
	c := &Client{
		client:   &http.Client{Timeout: 30 * time.Second},
		endpoint: DefaultEndpoint,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithClient sets the HTTP client.
func WithClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithEndpoint overrides the data API URL.
func WithEndpoint(ep string) Option {
	return func(c *Client) { c.endpoint = ep }
}

// WithClock sets the clock used to stamp parsed snapshots.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// FetchSnapshot downloads and parses the latest observations. Failures to
// reach the endpoint are wrapped in rate.ErrTransport; structural problems in
// the payload in rate.ErrMalformedResponse.
func (c *Client) FetchSnapshot(ctx context.Context) (rate.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return rate.Snapshot{}, fmt.Errorf("%w: build request: %w", rate.ErrTransport, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req) //nolint:gosec // URL from internal config
	if err != nil {
		return rate.Snapshot{}, fmt.Errorf("%w: %w", rate.ErrTransport, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return rate.Snapshot{}, fmt.Errorf("%w: ecb returned HTTP %d", rate.ErrTransport, res.StatusCode)
	}

	snapshot, err := Parse(res.Body, c.now())
	if err != nil {
		return rate.Snapshot{}, err
	}

	slog.Info("retrieved ecb reference rates", "count", len(snapshot.Rates))
	return snapshot, nil
}
