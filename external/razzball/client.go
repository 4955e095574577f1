package razzball

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-roster/internal/domain/projection"
	"github.com/riskibarqy/fantasy-roster/internal/platform/logging"
	"github.com/riskibarqy/fantasy-roster/internal/platform/metrics"
	"github.com/riskibarqy/fantasy-roster/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "https://api.razzball.com/mlb"
	defaultPathPrefix = "/projections/"
	defaultTimeout    = 120 * time.Second
	defaultUserAgent  = "fantasy-roster/1.0"
	acceptHeader      = "application/vnd.razzball-v1+json"
	apiKeyHeader      = "Razzball-Api-Key"
	maxBodyBytes      = 64 << 20
)

var errRazzballTransient = crerr.New("razzball transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	// PathPrefix is joined with the horizon, so "/projections/bot" targets
	// "/projections/botros".
	PathPrefix   string
	APIKey       string
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// RateLimit caps outbound requests per second; <= 0 disables it.
	RateLimit      float64
	Logger         *logging.Logger
	Metrics        metrics.Recorder
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	pathPrefix   string
	apiKey       string
	userAgent    string
	maxRetries   int
	retryBackoff time.Duration
	limiter      *rate.Limiter
	logger       *logging.Logger
	metrics      metrics.Recorder
	breaker      *resilience.CircuitBreaker
	now          func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("razzball")

	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Nop
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	prefix := strings.TrimSpace(cfg.PathPrefix)
	if prefix == "" {
		prefix = defaultPathPrefix
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		recorder.RecordCircuitState("razzball", string(to))
		logger.Warn("razzball circuit breaker transition", "from", from, "to", to)
	})

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		pathPrefix:   prefix,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		userAgent:    userAgent,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		limiter:      limiter,
		logger:       logger,
		metrics:      recorder,
		breaker:      breaker,
		now:          time.Now,
	}
}

// FetchProjections downloads and normalizes the full dataset for horizon.
// Every failure wraps projection.ErrFetch.
func (c *Client) FetchProjections(ctx context.Context, horizon projection.Horizon) (*projection.Table, error) {
	if _, err := projection.ParseHorizon(string(horizon)); err != nil {
		return nil, crerr.Wrapf(projection.ErrFetch, "%v", err)
	}

	started := c.now()
	fullURL := c.endpoint(horizon)

	var raw []byte
	var shape payloadShape
	var records []projection.Record
	err := c.breaker.Execute(func() error {
		body, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil {
			return reqErr
		}
		raw = body
		var decodeErr error
		shape, records, decodeErr = decodePayload(body)
		if decodeErr != nil {
			return fmt.Errorf("decode provider payload: %w", decodeErr)
		}
		return nil
	}, isCircuitFailure)

	elapsed := c.now().Sub(started)
	if err != nil {
		c.metrics.RecordProjectionFetch(string(horizon), "failure", elapsed)
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "razzball circuit breaker rejected request", "horizon", horizon, "state", c.breaker.State())
		}
		return nil, crerr.Wrapf(projection.ErrFetch, "razzball %s projections: %v", horizon, err)
	}

	c.metrics.RecordProjectionFetch(string(horizon), "success", elapsed)
	c.logger.InfoContext(ctx, "fetched razzball projections",
		"horizon", horizon,
		"shape", shape.String(),
		"records", len(records),
		"bytes", len(raw),
		"duration_ms", elapsed.Milliseconds(),
	)
	return projection.NewTable(horizon, records, c.now()), nil
}

func (c *Client) endpoint(horizon projection.Horizon) string {
	return c.baseURL + c.pathPrefix + string(horizon)
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("wait for rate limiter: %w", err)
			}
		}

		raw, status, err := c.do(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: %v", errRazzballTransient, err)
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: provider status=%d body=%s", errRazzballTransient, status, abbreviateBody(raw))
		default:
			return nil, fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "razzball request failed", "url", fullURL, "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, fullURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes+1)); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	if buf.Len() > maxBodyBytes {
		return nil, resp.StatusCode, fmt.Errorf("response body exceeds %d bytes", maxBodyBytes)
	}

	raw := make([]byte, buf.Len())
	copy(raw, buf.B)
	return raw, resp.StatusCode, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// Only provider-side trouble counts against the breaker; a body we cannot
// decode or a 4xx is not evidence the provider is down.
func isCircuitFailure(err error) bool {
	return crerr.Is(err, errRazzballTransient)
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}
