// Package archive fetches planetary systems from the NASA Exoplanet Archive
// TAP service and converts them into catalog models.
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/starford/starsys/internal/apperr"
	"github.com/starford/starsys/internal/models"
)

// DefaultURL queries the Planetary Systems table for the columns the catalog
// stores, as JSON.
const DefaultURL = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync?" +
	"query=select+hostname,pl_name,pl_bmassj,pl_radj,pl_orbper," +
	"st_spectype,sy_dist+from+ps&format=json"

// DefaultTimeout bounds a single fetch.
const DefaultTimeout = 30 * time.Second

const maxBodyPreview = 256

// Client performs one-shot fetches against the archive. It never retries.
type Client struct {
	url    string
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithURL overrides DefaultURL.
func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient returns an archive client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:    DefaultURL,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client queries.
func (c *Client) URL() string { return c.url }

// FetchSystems downloads every planet row and groups it into systems.
// Transport, status and decode failures are returned as *apperr.IngestionError.
func (c *Client) FetchSystems(ctx context.Context) ([]models.StarSystem, error) {
	rows, err := c.fetchRows(ctx)
	if err != nil {
		return nil, err
	}
	systems := ParseRows(rows)
	c.logger.Info("archive fetch complete",
		slog.Int("rows", len(rows)),
		slog.Int("systems", len(systems)))
	return systems, nil
}

func (c *Client) fetchRows(ctx context.Context) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, apperr.Ingestion("build request", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Ingestion("request", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("archive response",
		slog.Int("status_code", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyPreview))
		return nil, apperr.Ingestion("response",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, preview))
	}

	var rows []Row
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, apperr.Ingestion("decode", err)
	}
	return rows, nil
}
