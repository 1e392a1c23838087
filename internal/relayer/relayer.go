// Package relayer fetches fee configuration from the privacy protocol's
// relayer API and caches it for the lifetime of the process.
package relayer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FeeConfig is the relayer's published fee schedule. Rates are decimal
// fractions; rent fees and minimums are denominated per token.
type FeeConfig struct {
	WithdrawFeeRate    float64            `json:"withdraw_fee_rate"`
	WithdrawRentFee    float64            `json:"withdraw_rent_fee"`
	DepositFeeRate     float64            `json:"deposit_fee_rate"`
	RentFees           map[string]float64 `json:"rent_fees"`
	MinimumWithdrawal  map[string]float64 `json:"minimum_withdrawal"`
	Prices             map[string]float64 `json:"prices"`
}

// Client talks to the relayer config endpoint.
type Client struct {
	Base string
	Http *http.Client
	Log  zerolog.Logger

	mu     sync.RWMutex
	cached *FeeConfig
}

// NewClient builds a relayer client with a bounded request timeout.
func NewClient(base string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		Base: strings.TrimRight(base, "/"),
		Http: &http.Client{Timeout: timeout},
		Log:  log,
	}
}

// Fetch always hits the relayer, bypassing the cache.
func (c *Client) Fetch(ctx context.Context) (*FeeConfig, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.Base+"/config", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch relayer config: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("relayer config status %d", resp.StatusCode)
	}
	var cfg FeeConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse relayer config: %w", err)
	}
	return &cfg, nil
}

// Config returns the cached fee schedule, fetching once on first use.
func (c *Client) Config(ctx context.Context) (*FeeConfig, error) {
	c.mu.RLock()
	cached := c.cached
	c.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	cfg, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.cached = cfg
	c.mu.Unlock()
	c.Log.Debug().Float64("withdraw_fee_rate", cfg.WithdrawFeeRate).Msg("relayer config cached")
	return cfg, nil
}

// ClearCache drops the cached schedule so the next Config call refetches.
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.cached = nil
	c.mu.Unlock()
}

// MinimumWithdrawal returns the minimum withdrawal for a token name.
func (cfg *FeeConfig) MinimumWithdrawalFor(name string) (float64, bool) {
	v, ok := cfg.MinimumWithdrawal[strings.ToLower(name)]
	return v, ok
}

// RentFeeFor returns the rent fee for a token name.
func (cfg *FeeConfig) RentFeeFor(name string) float64 {
	return cfg.RentFees[strings.ToLower(name)]
}
