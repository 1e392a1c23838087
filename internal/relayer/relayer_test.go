package relayer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConfigCaches(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/config" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		atomic.AddInt64(&hits, 1)
		_ = json.NewEncoder(w).Encode(FeeConfig{
			WithdrawFeeRate:   0.0035,
			WithdrawRentFee:   0.001,
			RentFees:          map[string]float64{"usdc": 0.25},
			MinimumWithdrawal: map[string]float64{"sol": 0.01, "usdc": 1},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zerolog.Nop())
	cfg, err := client.Config(context.Background())
	if err != nil {
		t.Fatalf("Config returned error: %v", err)
	}
	if cfg.WithdrawFeeRate != 0.0035 {
		t.Fatalf("unexpected withdraw fee rate: %v", cfg.WithdrawFeeRate)
	}
	if min, ok := cfg.MinimumWithdrawalFor("SOL"); !ok || min != 0.01 {
		t.Fatalf("unexpected sol minimum: %v %v", min, ok)
	}
	if cfg.RentFeeFor("usdc") != 0.25 {
		t.Fatalf("unexpected usdc rent fee")
	}

	if _, err := client.Config(context.Background()); err != nil {
		t.Fatalf("cached Config returned error: %v", err)
	}
	if atomic.LoadInt64(&hits) != 1 {
		t.Fatalf("expected one upstream hit, got %d", hits)
	}

	client.ClearCache()
	if _, err := client.Config(context.Background()); err != nil {
		t.Fatalf("refetched Config returned error: %v", err)
	}
	if atomic.LoadInt64(&hits) != 2 {
		t.Fatalf("expected refetch after ClearCache, got %d hits", hits)
	}
}

func TestConfigUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zerolog.Nop())
	if _, err := client.Config(context.Background()); err == nil {
		t.Fatalf("expected error on 502")
	}
}
