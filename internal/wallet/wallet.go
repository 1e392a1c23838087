// Package wallet loads the signing keypair used for deposits, withdrawals, and fee transfers.
package wallet

import (
	"errors"
	"os"

	solana "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

// EnvKey names the environment variable carrying the base58 signing key.
const EnvKey = "PRIVSEND_PRIVATE_KEY_BASE58"

func LoadPrivateKeyFromEnv() (solana.PrivateKey, error) {
	_ = godotenv.Load() // best-effort
	b58 := os.Getenv(EnvKey)
	if b58 == "" {
		return nil, errors.New(EnvKey + " not set")
	}
	return solana.PrivateKeyFromBase58(b58)
}
