// Package nsehttp is a ChainSource backed by NSE's public option-chain
// endpoint: prime a session cookie against the site root, then GET the
// option-chain-indices endpoint with browser-style headers, retrying
// transient failures with exponential backoff.
package nsehttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridopark/options-engine/internal/models"
	"github.com/ridopark/options-engine/internal/optionchain"
)

const (
	rootURL       = "https://www.nseindia.com"
	chainURL      = "https://www.nseindia.com/api/option-chain-indices?symbol=%s"
	refererURL    = "https://www.nseindia.com/option-chain"
	userAgent     = "Mozilla/5.0 (compatible; options-engine/1.0)"
	maxRetries    = 3
	throttleDelay = 1 * time.Second
	initialBackoff = 2 * time.Second
)

// Client fetches and parses option-chain snapshots from NSE. One Client is
// owned by a single analysis cycle and never shared across cycles — its
// cookie jar holds the primed session for the lifetime of that cycle only.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a Client with its own cookie jar, ready to be primed.
func New(logger zerolog.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("nsehttp: create cookie jar: %w", err)
	}
	return &Client{
		httpClient: &http.Client{Jar: jar, Timeout: 15 * time.Second},
		logger:     logger.With().Str("component", "nsehttp").Logger(),
	}, nil
}

// FetchChain primes the session against the site root, then GETs the
// option-chain JSON for index, retrying up to maxRetries times with
// exponential backoff starting at 2s.
func (c *Client) FetchChain(ctx context.Context, index models.Index) (*models.OptionChainSnapshot, error) {
	if err := c.primeSession(ctx); err != nil {
		return nil, fmt.Errorf("%w: session priming failed: %v", models.ErrExternalUnavailable, err)
	}

	time.Sleep(throttleDelay)

	body, err := c.getWithRetry(ctx, fmt.Sprintf(chainURL, index))
	if err != nil {
		return nil, err
	}

	snapshot, err := optionchain.Parse(body, "", time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return snapshot, nil
}

func (c *Client) primeSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rootURL, nil)
	if err != nil {
		return err
	}
	c.setBrowserHeaders(req, rootURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("root priming GET returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn().Int("attempt", attempt).Err(lastErr).Msg("retrying option-chain fetch")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: option chain fetch exhausted %d retries: %v", models.ErrExternalUnavailable, maxRetries, lastErr)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setBrowserHeaders(req, refererURL)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("option chain endpoint returned status %d", resp.StatusCode)
	}
	return body, nil
}

func (c *Client) setBrowserHeaders(req *http.Request, referer string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
