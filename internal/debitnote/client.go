package debitnote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/utilitycover/debitnote/internal/infra"
)

// DefaultEndpoint is the document service used when none is configured.
const DefaultEndpoint = "https://utilitycoverapi.vercel.app/generate-debit-note"

// DefaultMaxBytes caps the size of a returned document.
const DefaultMaxBytes int64 = 20 << 20

// ErrEmptyDocument is returned when the service answers 2xx with no body.
var ErrEmptyDocument = errors.New("document service returned an empty document")

// ErrDocumentTooLarge is returned when the response exceeds the configured cap.
var ErrDocumentTooLarge = errors.New("document exceeds size limit")

// ErrHTTP is a non-success response from the document service.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Generator produces a document from a JSON payload.
type Generator interface {
	Generate(ctx context.Context, payload []byte) ([]byte, error)
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Endpoint  string
	Timeout   time.Duration // zero means no client-side limit beyond ctx
	MaxBytes  int64
	UserAgent string
	Limiter   *infra.RateLimiter // paces requests; nil means unpaced
}

// Client posts payloads to the remote document service.
type Client struct {
	endpoint  string
	http      *http.Client
	maxBytes  int64
	userAgent string
	limiter   *infra.RateLimiter
}

// NewClient creates a Client. Zero values in cfg fall back to package defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "debitnote/dev"
	}
	return &Client{
		endpoint:  cfg.Endpoint,
		http:      &http.Client{Timeout: cfg.Timeout},
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		limiter:   cfg.Limiter,
	}
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Generate sends one POST with payload and returns the response body.
// Any non-2xx status is an *ErrHTTP. There is no retry. With a limiter,
// Generate first waits for a request slot, bounded by ctx.
func (c *Client) Generate(ctx context.Context, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for request slot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf, application/octet-stream, */*")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP POST %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrDocumentTooLarge, c.maxBytes)
	}
	if len(body) == 0 {
		return nil, ErrEmptyDocument
	}
	return body, nil
}
