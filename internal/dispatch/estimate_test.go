package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"privsend-go/internal/command"
	"privsend-go/internal/relayer"
)

func relayerServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(relayer.FeeConfig{
			WithdrawFeeRate: 0.0035,
			WithdrawRentFee: 0.001,
			RentFees:        map[string]float64{"usdc": 0.25},
		})
	}))
}

func TestEstimateFees(t *testing.T) {
	server := relayerServer(t)
	defer server.Close()

	log := &callLog{}
	d := New(
		&stubBridge{log: log},
		&stubCollector{log: log, rate: 0.01},
		relayer.NewClient(server.URL, time.Second, zerolog.Nop()),
		fastIndexer(),
		zerolog.Nop(),
	)

	amount := uint64(1_000_000_000)
	res := d.Do(context.Background(), &command.Command{
		Action: command.EstimateFees, RPCURL: "u", PrivateKey: "k", Amount: &amount,
	})
	if !res.Success {
		t.Fatalf("estimate_fees failed: %s", res.Error)
	}
	// 0.35% of 1 SOL plus 0.001 SOL rent.
	if res.EstimatedProtocolFee != 4_500_000 {
		t.Fatalf("unexpected protocol fee: %d", res.EstimatedProtocolFee)
	}
	if res.PlatformFee != 10_000_000 {
		t.Fatalf("unexpected platform fee: %d", res.PlatformFee)
	}
	if res.EstimatedTotalFee != res.EstimatedProtocolFee+res.PlatformFee {
		t.Fatalf("total must be the sum of parts")
	}
}

func TestEstimateFeesSPL(t *testing.T) {
	server := relayerServer(t)
	defer server.Close()

	log := &callLog{}
	d := New(
		&stubBridge{log: log},
		&stubCollector{log: log, rate: 0.01},
		relayer.NewClient(server.URL, time.Second, zerolog.Nop()),
		fastIndexer(),
		zerolog.Nop(),
	)

	amount := uint64(10_000_000) // 10 USDC
	res := d.Do(context.Background(), &command.Command{
		Action: command.EstimateFeesSPL, RPCURL: "u", PrivateKey: "k",
		Amount: &amount, MintAddress: usdcMint,
	})
	if !res.Success {
		t.Fatalf("estimate_fees_spl failed: %s", res.Error)
	}
	// 0.35% of 10 USDC plus 0.25 USDC rent.
	if res.EstimatedProtocolFee != 285_000 {
		t.Fatalf("unexpected protocol fee: %d", res.EstimatedProtocolFee)
	}
	if res.PlatformFee != 100_000 {
		t.Fatalf("unexpected platform fee: %d", res.PlatformFee)
	}
}

func TestEstimateFeesWithoutRelayer(t *testing.T) {
	log := &callLog{}
	d := newTestDispatcher(&stubBridge{log: log}, &stubCollector{log: log, rate: 0.01})

	amount := uint64(1000)
	res := d.Do(context.Background(), &command.Command{
		Action: command.EstimateFees, RPCURL: "u", PrivateKey: "k", Amount: &amount,
	})
	if res.Success {
		t.Fatalf("expected failure when relayer is not configured")
	}
}
