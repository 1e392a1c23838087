// Package token holds the registry of SPL assets the privacy pool supports.
package token

import (
	"strings"

	solana "github.com/gagliardetto/solana-go"
)

// LamportsPerSOL is the number of base units in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

// Info describes one supported asset. UnitsPerToken converts between the
// human denomination and base units.
type Info struct {
	Name          string
	Mint          solana.PublicKey
	UnitsPerToken uint64
}

// Native returns true for the chain's base asset.
func (i Info) Native() bool { return i.Name == "sol" }

// ToBaseUnits converts a human amount into base units, truncating toward zero.
func (i Info) ToBaseUnits(amount float64) uint64 {
	return uint64(amount * float64(i.UnitsPerToken))
}

// FromBaseUnits converts base units into the human denomination.
func (i Info) FromBaseUnits(units uint64) float64 {
	return float64(units) / float64(i.UnitsPerToken)
}

var registry = []Info{
	{Name: "sol", Mint: solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"), UnitsPerToken: LamportsPerSOL},
	{Name: "usdc", Mint: solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"), UnitsPerToken: 1_000_000},
	{Name: "usdt", Mint: solana.MustPublicKeyFromBase58("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"), UnitsPerToken: 1_000_000},
	{Name: "zec", Mint: solana.MustPublicKeyFromBase58("A7bdiYdS5GjqGFtxf17ppRHtDKPkkRqbKtR27dxvQXaS"), UnitsPerToken: 100_000_000},
	{Name: "ore", Mint: solana.MustPublicKeyFromBase58("oreoU2P8bN6jkk3jbaiVxYnG1dCXcYxwhwyK9jSybcp"), UnitsPerToken: 100_000_000_000},
	{Name: "store", Mint: solana.MustPublicKeyFromBase58("sTorERYB6xAZ1SSbwpK3zoK2EEwbBrc7TZAzg1uCGiH"), UnitsPerToken: 100_000_000_000},
}

// Supported returns every registered asset, native SOL first.
func Supported() []Info {
	out := make([]Info, len(registry))
	copy(out, registry)
	return out
}

// ByName looks up an asset by its lowercase name.
func ByName(name string) (Info, bool) {
	for _, t := range registry {
		if t.Name == strings.ToLower(name) {
			return t, true
		}
	}
	return Info{}, false
}

// ByMint looks up an asset by mint address.
func ByMint(mint solana.PublicKey) (Info, bool) {
	for _, t := range registry {
		if t.Mint.Equals(mint) {
			return t, true
		}
	}
	return Info{}, false
}
