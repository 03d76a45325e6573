package accesswatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/robotwatch/pkg/logger"
)

const (
	DefaultBaseURL   = "https://api.access.watch"
	DefaultUserAgent = "robotwatch/1.0"
	APIKeyHeader     = "Api-Key"

	maxResponseSize = 1 << 20
)

// Client talks to the Access Watch API, or to a robotwatch server exposing
// the same routes.
type Client struct {
	apiKey    string
	baseURL   string
	userAgent string
	http      *http.Client
	cache     Cache
	logger    *slog.Logger
	group     singleflight.Group
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a self-hosted
// robotwatch instance.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithCache enables response caching. Without it every lookup hits the API.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a client. The API key may only be empty when a custom
// base URL is configured.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	c := &Client{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: 10 * time.Second},
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.baseURL)
	}
	if c.apiKey == "" && c.baseURL == DefaultBaseURL {
		return nil, ErrMissingAPIKey
	}
	return c, nil
}

// Address looks up an IP address: GET /1.1/address/{ip}.
func (c *Client) Address(ctx context.Context, ip string) (Record, error) {
	var rec Record
	err := c.lookup(ctx, addressKey(ip), http.MethodGet, "/1.1/address/"+url.PathEscape(ip), nil, &rec)
	return rec, err
}

// UserAgent looks up a User-Agent string: POST /1.1/user-agent.
func (c *Client) UserAgent(ctx context.Context, ua string) (Record, error) {
	var rec Record
	err := c.lookup(ctx, userAgentKey(ua), http.MethodPost, "/1.1/user-agent", map[string]string{"value": ua}, &rec)
	return rec, err
}

// Identity looks up an address and User-Agent pair: POST /1.1/identity.
// Either part may be empty.
func (c *Client) Identity(ctx context.Context, ip, ua string) (Identity, error) {
	var id Identity
	body := map[string]string{"address": ip, "user_agent": ua}
	err := c.lookup(ctx, identityKey(ip, ua), http.MethodPost, "/1.1/identity", body, &id)
	return id, err
}

func (c *Client) lookup(ctx context.Context, key, method, path string, payload any, dst any) error {
	data, err := c.fetch(ctx, key, method, path, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Join(ErrRequestFailed, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

// fetch serves key from the cache or performs the request. Concurrent misses
// for one key share a single request.
func (c *Client) fetch(ctx context.Context, key, method, path string, payload any) ([]byte, error) {
	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.logger.WarnContext(ctx, "cache read failed", slog.String("key", key), logger.Error(err))
		} else if ok {
			return data, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		data, err := c.do(ctx, method, path, payload)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			if err := c.cache.Set(ctx, key, data); err != nil {
				c.logger.WarnContext(ctx, "cache write failed", slog.String("key", key), logger.Error(err))
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Join(ErrRequestFailed, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	if c.apiKey != "" {
		req.Header.Set(APIKeyHeader, c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}

	c.logger.DebugContext(ctx, "access watch request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, errors.Join(ErrRequestFailed, apiErr)
	}
	return data, nil
}
