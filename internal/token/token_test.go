package token

import (
	"testing"

	solana "github.com/gagliardetto/solana-go"
)

func TestByName(t *testing.T) {
	usdc, ok := ByName("USDC")
	if !ok {
		t.Fatalf("expected usdc to be registered")
	}
	if usdc.UnitsPerToken != 1_000_000 {
		t.Fatalf("expected 6 decimal usdc, got %d units per token", usdc.UnitsPerToken)
	}
	if usdc.Native() {
		t.Fatalf("usdc must not report as native")
	}

	if _, ok := ByName("doge"); ok {
		t.Fatalf("unexpected registry hit for doge")
	}
}

func TestByMint(t *testing.T) {
	sol, ok := ByMint(solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"))
	if !ok {
		t.Fatalf("expected sol mint lookup to succeed")
	}
	if !sol.Native() {
		t.Fatalf("sol must report as native")
	}
}

func TestUnitConversion(t *testing.T) {
	sol, _ := ByName("sol")
	if got := sol.ToBaseUnits(0.01); got != 10_000_000 {
		t.Fatalf("expected 10_000_000 lamports, got %d", got)
	}
	if got := sol.FromBaseUnits(1_500_000_000); got != 1.5 {
		t.Fatalf("expected 1.5 SOL, got %f", got)
	}
}

func TestSupportedCopy(t *testing.T) {
	list := Supported()
	if len(list) == 0 || list[0].Name != "sol" {
		t.Fatalf("expected sol first, got %+v", list)
	}
	list[0].Name = "mutated"
	fresh := Supported()
	if fresh[0].Name != "sol" {
		t.Fatalf("Supported must return a copy")
	}
}
