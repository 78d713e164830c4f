package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ogulcanaydogan/gqlrecover/internal/stageerr"
)

const stage = "fetch"

const maxBodyBytes = 32 * 1024 * 1024 // 32 MB

// Getter returns the body of a GET request as text.
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// GetterFunc adapts a function to Getter.
type GetterFunc func(ctx context.Context, url string) (string, error)

func (f GetterFunc) Get(ctx context.Context, url string) (string, error) { return f(ctx, url) }

type Options struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
	Logger            *slog.Logger
	HTTPClient        *http.Client
}

// Client is a plain HTTP getter paced by a token bucket.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
	logger    *slog.Logger
}

func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http:      hc,
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

func (c *Client) Get(ctx context.Context, url string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", stageerr.Wrap(stage, stageerr.KindNetwork, err, "GET %s", url)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", stageerr.Wrap(stage, stageerr.KindNetwork, err, "build request %s", url)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", stageerr.Wrap(stage, stageerr.KindNetwork, err, "GET %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", stageerr.New(stage, stageerr.KindNetwork, "GET %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return "", stageerr.Wrap(stage, stageerr.KindNetwork, err, "read body %s", url)
	}
	if len(body) > maxBodyBytes {
		return "", stageerr.New(stage, stageerr.KindNetwork, "GET %s: body exceeds %d bytes", url, maxBodyBytes)
	}
	c.logger.Debug("fetched", "url", url, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))
	return string(body), nil
}

// URL joins a base URL and a path with exactly one slash.
func URL(base, path string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	for len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	return fmt.Sprintf("%s/%s", base, path)
}
