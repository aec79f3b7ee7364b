// Package providers implements the HTTP clients behind every data command.
// Each provider returns typed rows; transport and status failures map to
// ErrUpstreamUnavailable, decode and shape failures to ErrUpstreamFormat.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"finterm/internal/errors"
	"finterm/internal/logging"
	"finterm/pkg/utils"
)

// Client is the shared HTTP layer: one http.Client, one user agent, one
// retry policy for every provider.
type Client struct {
	http      *http.Client
	userAgent string
	retry     utils.RetryConfig
	logger    zerolog.Logger
}

// NewClient creates the shared provider client.
func NewClient(timeout time.Duration, userAgent string, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		retry:     utils.DefaultRetryConfig(),
		logger:    logger,
	}
}

// get fetches url and returns the response body. Non-2xx statuses and
// transport errors are retried with backoff, then surfaced as
// ErrUpstreamUnavailable.
func (c *Client) get(ctx context.Context, provider, url string) ([]byte, error) {
	start := time.Now()
	body, err := utils.RetryWithResult(ctx, c.retry, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		return c.do(req)
	})
	logging.LogFetch(c.logger, provider, url, time.Since(start), err)
	if err != nil {
		return nil, errors.Unavailable(provider, url, err)
	}
	return body, nil
}

// postJSON posts a JSON payload and returns the response body.
func (c *Client) postJSON(ctx context.Context, provider, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.BadFormat(provider, url, err)
	}

	start := time.Now()
	body, err := utils.RetryWithResult(ctx, c.retry, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Content-Type", "application/json")
		return c.do(req)
	})
	logging.LogFetch(c.logger, provider, url, time.Since(start), err)
	if err != nil {
		return nil, errors.Unavailable(provider, url, err)
	}
	return body, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}

// getJSON fetches url and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, provider, url string, out interface{}) error {
	body, err := c.get(ctx, provider, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.BadFormat(provider, url, err)
	}
	return nil
}

// decodeJSON unmarshals a raw provider body into out.
func decodeJSON(provider, url string, body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return errors.BadFormat(provider, url, err)
	}
	return nil
}

// getDocument fetches url and parses the body as an HTML document.
func (c *Client) getDocument(ctx context.Context, provider, url string) (*goquery.Document, error) {
	body, err := c.get(ctx, provider, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, errors.BadFormat(provider, url, err)
	}
	return doc, nil
}

// download fetches url and writes the body to destPath.
func (c *Client) download(ctx context.Context, provider, url, destPath string) error {
	body, err := c.get(ctx, provider, url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(destPath, body, 0644); err != nil {
		return errors.Wrap(err, "failed to write download")
	}
	return nil
}
