// Package transport provides the configured HTTP client every source
// shares, and maps transport-level failures onto the error taxonomy.
package transport

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goborsa/borsa/internal/core"
)

// Options configures a Client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// InsecureTLS disables certificate verification. A minority of
	// upstreams serve certificates Go's verifier rejects.
	InsecureTLS bool
}

// Client is a small wrapper around http.Client with default headers and
// taxonomy-mapped failures.
type Client struct {
	http      *http.Client
	userAgent string
	log       *zap.Logger
}

// New creates a client with pooled connections and the given timeout.
func New(opts Options, log *zap.Logger) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if opts.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:      &http.Client{Timeout: opts.Timeout, Transport: transport},
		userAgent: opts.UserAgent,
		log:       log,
	}
}

// GetBytes issues a GET and returns the response body.
func (c *Client) GetBytes(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, core.APIError(0, "building request", err)
	}
	return c.do(req, headers)
}

// GetJSON issues a GET and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, v any) error {
	body, err := c.GetBytes(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return core.APIError(0, "decoding response", err)
	}
	return nil
}

// PostForm issues a form-encoded POST and returns the response body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, core.APIError(0, "building request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, headers)
}

func (c *Client) do(req *http.Request, headers map[string]string) ([]byte, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, core.APIError(0, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.APIError(resp.StatusCode, "reading response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, core.RateLimitError(resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, core.AuthenticationError(fmt.Sprintf("upstream rejected request with status %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.log.Debug("upstream returned non-success status",
			zap.String("url", req.URL.String()),
			zap.Int("status", resp.StatusCode))
		return nil, core.APIError(resp.StatusCode, "unexpected status", nil)
	}
	return body, nil
}
