// Package settlement talks to the external provider that executes signed
// transfer instructions. The service never moves money itself; it submits
// instructions here and tracks their status.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	treasurydomain "github.com/osusu-club/osusu-service/app/modules/treasury/domain"
	treasurytypes "github.com/osusu-club/osusu-service/app/types/treasury"
)

// Config carries the provider endpoints and OAuth2 client credentials.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

const defaultTimeout = 15 * time.Second

// Client submits instructions over the provider's REST API. Tokens come from
// the OAuth2 client-credentials flow and refresh transparently.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient builds a settlement client from the configured credentials.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	httpClient := cc.Client(context.Background())
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

// Submit posts one instruction to the provider.
//
// A 2xx response means accepted. Most 4xx responses mean the provider refused
// this instruction for good, surfaced as ErrSubmissionRejected so the caller
// marks the transfer failed instead of retrying. 401 (our token) and 429
// (throttling) are transient and reported as plain errors like every 5xx.
func (c *Client) Submit(ctx context.Context, instruction treasurytypes.TransferInstruction) error {
	body, err := json.Marshal(instruction)
	if err != nil {
		return fmt.Errorf("failed to marshal instruction: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build settlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The provider dedups resends of the same instruction on this key.
	req.Header.Set("Idempotency-Key", instruction.ID.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("settlement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if c.logger != nil {
			c.logger.InfoContext(ctx, "Settlement accepted instruction",
				slog.String("transfer_id", instruction.ID.String()),
				slog.String("status", resp.Status),
			)
		}
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
		resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s: %s", treasurydomain.ErrSubmissionRejected, resp.Status, strings.TrimSpace(string(detail)))
	}
	return fmt.Errorf("settlement gateway returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
}
