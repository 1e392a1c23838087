package wallet

import (
	"os"
	"testing"

	solana "github.com/gagliardetto/solana-go"
)

func TestLoadPrivateKeyFromEnv(t *testing.T) {
	w := solana.NewWallet()
	os.Setenv(EnvKey, w.PrivateKey.String())
	defer os.Unsetenv(EnvKey)

	key, err := LoadPrivateKeyFromEnv()
	if err != nil {
		t.Fatalf("expected key, got error: %v", err)
	}
	if !key.PublicKey().Equals(w.PublicKey()) {
		t.Fatalf("expected public key %s, got %s", w.PublicKey(), key.PublicKey())
	}
}

func TestLoadPrivateKeyFromEnvMissing(t *testing.T) {
	os.Unsetenv(EnvKey)
	if _, err := LoadPrivateKeyFromEnv(); err == nil {
		t.Fatalf("expected error when env missing")
	}
}
