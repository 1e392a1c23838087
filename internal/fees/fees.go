// Package fees computes and collects the fixed-rate platform fee charged on
// top of protocol withdrawals. Every fee is a separate, individually signed
// and confirmed transaction to the platform wallet.
package fees

import (
	"context"
	"errors"
	"fmt"
	"time"

	bin "github.com/gagliardetto/binary"
	solana "github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
)

// baseTxFee is the lamport budget reserved for the transfer's own network fee.
const baseTxFee = 5000

// Collector is the fee surface the dispatcher depends on.
type Collector interface {
	Calculate(amount uint64) uint64
	CollectSOL(ctx context.Context, amount uint64) (solana.Signature, error)
	CollectSPL(ctx context.Context, amount uint64, mint solana.PublicKey) (solana.Signature, error)
}

// Calculate applies rate to amount and truncates toward zero.
func Calculate(amount uint64, rate float64) uint64 {
	if rate <= 0 {
		return 0
	}
	return uint64(float64(amount) * rate)
}

// Disabled is the collector used when the fee rate is zero: it computes no
// fee and is never asked to transfer one.
type Disabled struct{}

func (Disabled) Calculate(uint64) uint64 { return 0 }

func (Disabled) CollectSOL(context.Context, uint64) (solana.Signature, error) {
	return solana.Signature{}, errors.New("fee collection disabled")
}

func (Disabled) CollectSPL(context.Context, uint64, solana.PublicKey) (solana.Signature, error) {
	return solana.Signature{}, errors.New("fee collection disabled")
}

// OnChainCollector submits fee transfers through a Solana RPC client.
type OnChainCollector struct {
	RPC    *rpc.Client
	Owner  solana.PrivateKey
	Wallet solana.PublicKey
	Rate   float64
	Commit rpc.CommitmentType
	Log    zerolog.Logger

	// Confirmation poll bounds; zero values fall back to defaults.
	PollInterval time.Duration
	PollDeadline time.Duration
}

// NewOnChainCollector wires a collector against live RPC.
func NewOnChainCollector(rpcURL string, owner solana.PrivateKey, wallet solana.PublicKey, rate float64, commit string, log zerolog.Logger) *OnChainCollector {
	c := rpc.CommitmentConfirmed
	switch commit {
	case "processed":
		c = rpc.CommitmentProcessed
	case "finalized":
		c = rpc.CommitmentFinalized
	}
	return &OnChainCollector{
		RPC:    rpc.New(rpcURL),
		Owner:  owner,
		Wallet: wallet,
		Rate:   rate,
		Commit: c,
		Log:    log,
	}
}

func (c *OnChainCollector) Calculate(amount uint64) uint64 {
	return Calculate(amount, c.Rate)
}

// CollectSOL moves the fee from the owner to the platform wallet as a plain
// system transfer and waits for confirmation.
func (c *OnChainCollector) CollectSOL(ctx context.Context, amount uint64) (solana.Signature, error) {
	if amount == 0 {
		return solana.Signature{}, nil
	}
	owner := c.Owner.PublicKey()

	bal, err := c.RPC.GetBalance(ctx, owner, c.Commit)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("fee preflight balance: %w", err)
	}
	if bal.Value < amount+baseTxFee {
		return solana.Signature{}, fmt.Errorf("insufficient public balance for fee: have %d lamports, need %d", bal.Value, amount+baseTxFee)
	}

	ix := system.NewTransferInstruction(amount, owner, c.Wallet).Build()
	sig, err := c.signAndSend(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, err
	}
	c.Log.Info().Str("tx", sig.String()).Uint64("lamports", amount).Msg("platform fee collected")
	return sig, nil
}

// CollectSPL transfers the fee in token base units, creating the platform
// wallet's associated token account first when it does not exist yet.
func (c *OnChainCollector) CollectSPL(ctx context.Context, amount uint64, mint solana.PublicKey) (solana.Signature, error) {
	if amount == 0 {
		return solana.Signature{}, nil
	}
	owner := c.Owner.PublicKey()

	source, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("derive source token account: %w", err)
	}
	dest, _, err := solana.FindAssociatedTokenAddress(c.Wallet, mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("derive platform token account: %w", err)
	}

	have, err := c.tokenBalance(ctx, source)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("fee preflight token balance: %w", err)
	}
	if have < amount {
		return solana.Signature{}, fmt.Errorf("insufficient token balance for fee: have %d, need %d", have, amount)
	}

	if err := c.ensureAccount(ctx, dest, mint); err != nil {
		return solana.Signature{}, err
	}

	ix := token.NewTransferInstruction(amount, source, dest, owner, nil).Build()
	sig, err := c.signAndSend(ctx, []solana.Instruction{ix})
	if err != nil {
		return solana.Signature{}, err
	}
	c.Log.Info().Str("tx", sig.String()).Uint64("base_units", amount).Str("mint", mint.String()).Msg("platform token fee collected")
	return sig, nil
}

// ensureAccount lazily creates the platform wallet's associated token account
// in its own confirmed transaction.
func (c *OnChainCollector) ensureAccount(ctx context.Context, account, mint solana.PublicKey) error {
	_, err := c.RPC.GetAccountInfo(ctx, account)
	if err == nil {
		return nil
	}
	if !errors.Is(err, rpc.ErrNotFound) {
		return fmt.Errorf("check platform token account: %w", err)
	}

	ix := associatedtokenaccount.NewCreateInstruction(c.Owner.PublicKey(), c.Wallet, mint).Build()
	sig, err := c.signAndSend(ctx, []solana.Instruction{ix})
	if err != nil {
		return fmt.Errorf("create platform token account: %w", err)
	}
	c.Log.Info().Str("tx", sig.String()).Str("account", account.String()).Msg("created platform token account")
	return nil
}

func (c *OnChainCollector) tokenBalance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	out, err := c.RPC.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var acc token.Account
	if err := bin.NewBinDecoder(out.Value.Data.GetBinary()).Decode(&acc); err != nil {
		return 0, fmt.Errorf("decode token account: %w", err)
	}
	return acc.Amount, nil
}

func (c *OnChainCollector) signAndSend(ctx context.Context, instrs []solana.Instruction) (solana.Signature, error) {
	recent, err := c.RPC.GetLatestBlockhash(ctx, c.Commit)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instrs, recent.Value.Blockhash, solana.TransactionPayer(c.Owner.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}
	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(c.Owner.PublicKey()) {
			return &c.Owner
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("sign: %w", err)
	}

	sig, err := c.RPC.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: c.Commit,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}
	if err := c.confirm(ctx, sig); err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

// confirm polls signature status until the configured commitment is reached.
func (c *OnChainCollector) confirm(ctx context.Context, sig solana.Signature) error {
	interval := c.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	deadline := c.PollDeadline
	if deadline <= 0 {
		deadline = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirm %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}

		out, err := c.RPC.GetSignatureStatuses(ctx, false, sig)
		if err != nil || len(out.Value) == 0 || out.Value[0] == nil {
			continue
		}
		st := out.Value[0]
		if st.Err != nil {
			return fmt.Errorf("fee transaction %s failed on chain: %v", sig, st.Err)
		}
		switch st.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return nil
		}
	}
}
