// Package dispatch routes one parsed command to one remote operation and
// shapes the single result the process reports back.
package dispatch

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"privsend-go/internal/bridge"
	"privsend-go/internal/command"
	"privsend-go/internal/config"
	"privsend-go/internal/fees"
	"privsend-go/internal/metrics"
	"privsend-go/internal/relayer"
	"privsend-go/internal/token"
)

// Dispatcher executes commands against the injected collaborators. It holds
// no state between invocations; every call is a self-contained sequence.
type Dispatcher struct {
	bridge  bridge.Client
	fees    fees.Collector
	relayer *relayer.Client
	indexer config.Indexer
	log     zerolog.Logger
}

// New wires a dispatcher. The relayer client may be nil when fee estimation
// is not needed.
func New(b bridge.Client, f fees.Collector, r *relayer.Client, indexer config.Indexer, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{bridge: b, fees: f, relayer: r, indexer: indexer, log: log}
}

// Do performs exactly one logical action and returns exactly one result.
// Every error ends up inside the failure envelope; nothing is swallowed.
func (d *Dispatcher) Do(ctx context.Context, cmd *command.Command) *command.Result {
	if err := cmd.Validate(); err != nil {
		metrics.OperationsTotal.WithLabelValues(string(cmd.Action), "invalid").Inc()
		return command.Failure(err)
	}

	res, err := d.route(ctx, cmd)
	if err != nil {
		res = command.Failure(err)
	}
	outcome := "ok"
	if !res.Success {
		outcome = "error"
		d.log.Error().Str("action", string(cmd.Action)).Str("reason", res.Error).Msg("operation failed")
	}
	metrics.OperationsTotal.WithLabelValues(string(cmd.Action), outcome).Inc()
	return res
}

func (d *Dispatcher) route(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	switch cmd.Action {
	case command.Balance:
		return d.balance(ctx, cmd)
	case command.BalanceSPL:
		return d.balanceSPL(ctx, cmd)
	case command.Deposit:
		return d.deposit(ctx, cmd)
	case command.DepositSPL:
		return d.depositSPL(ctx, cmd)
	case command.Withdraw:
		return d.withdraw(ctx, cmd, cmd.AmountValue())
	case command.WithdrawSPL:
		return d.withdrawSPL(ctx, cmd, cmd.AmountValue())
	case command.WithdrawAll:
		return d.withdrawAll(ctx, cmd)
	case command.WithdrawAllSPL:
		return d.withdrawAllSPL(ctx, cmd)
	case command.SendPrivately:
		return d.sendPrivately(ctx, cmd)
	case command.SendPrivatelySPL:
		return d.sendPrivatelySPL(ctx, cmd)
	case command.EstimateFees:
		return d.estimateFees(ctx, cmd)
	case command.EstimateFeesSPL:
		return d.estimateFeesSPL(ctx, cmd)
	case command.Tokens:
		return d.tokens(), nil
	}
	return nil, fmt.Errorf("unknown action %q", cmd.Action)
}

func (d *Dispatcher) balance(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	bal, err := d.bridge.Balance(ctx, cmd.RPCURL, cmd.PrivateKey)
	if err != nil {
		return nil, err
	}
	return command.BalanceResult(bal.Lamports, bal.SOL), nil
}

func (d *Dispatcher) balanceSPL(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	bal, err := d.bridge.BalanceSPL(ctx, cmd.RPCURL, cmd.PrivateKey, cmd.MintAddress)
	if err != nil {
		return nil, err
	}
	return command.SPLBalanceResult(cmd.MintAddress, bal.BaseUnits, bal.Amount), nil
}

func (d *Dispatcher) deposit(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	dep, err := d.bridge.Deposit(ctx, cmd.RPCURL, cmd.PrivateKey, cmd.AmountValue())
	if err != nil {
		return nil, err
	}
	d.log.Info().Str("tx", dep.Signature).Uint64("lamports", dep.Amount).Msg("deposited")
	return &command.Result{Success: true, Signature: dep.Signature, AmountInLamports: dep.Amount}, nil
}

func (d *Dispatcher) depositSPL(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	dep, err := d.bridge.DepositSPL(ctx, cmd.RPCURL, cmd.PrivateKey, cmd.AmountValue(), cmd.MintAddress)
	if err != nil {
		return nil, err
	}
	d.log.Info().Str("tx", dep.Signature).Uint64("base_units", dep.Amount).Str("mint", cmd.MintAddress).Msg("deposited")
	res := &command.Result{Success: true, Signature: dep.Signature, MintAddress: cmd.MintAddress}
	units := dep.Amount
	res.BaseUnits = &units
	return res, nil
}

func (d *Dispatcher) tokens() *command.Result {
	res := &command.Result{Success: true}
	for _, t := range token.Supported() {
		res.Tokens = append(res.Tokens, command.TokenInfo{
			Name:          t.Name,
			Mint:          t.Mint.String(),
			UnitsPerToken: t.UnitsPerToken,
		})
	}
	return res
}

func (d *Dispatcher) estimateFees(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	cfg, err := d.relayerConfig(ctx)
	if err != nil {
		return nil, err
	}
	amount := cmd.AmountValue()
	protocol := uint64(float64(amount)*cfg.WithdrawFeeRate + float64(token.LamportsPerSOL)*cfg.WithdrawRentFee)
	platform := d.fees.Calculate(amount)
	return &command.Result{
		Success:              true,
		EstimatedProtocolFee: protocol,
		PlatformFee:          platform,
		EstimatedTotalFee:    protocol + platform,
	}, nil
}

func (d *Dispatcher) estimateFeesSPL(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	cfg, err := d.relayerConfig(ctx)
	if err != nil {
		return nil, err
	}
	mint, err := solana.PublicKeyFromBase58(cmd.MintAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid mint_address: %w", err)
	}
	info, ok := token.ByMint(mint)
	if !ok {
		return nil, fmt.Errorf("token not supported: %s", cmd.MintAddress)
	}
	amount := cmd.AmountValue()
	protocol := uint64(float64(amount)*cfg.WithdrawFeeRate + float64(info.UnitsPerToken)*cfg.RentFeeFor(info.Name))
	platform := d.fees.Calculate(amount)
	return &command.Result{
		Success:              true,
		MintAddress:          cmd.MintAddress,
		EstimatedProtocolFee: protocol,
		PlatformFee:          platform,
		EstimatedTotalFee:    protocol + platform,
	}, nil
}

func (d *Dispatcher) relayerConfig(ctx context.Context) (*relayer.FeeConfig, error) {
	if d.relayer == nil {
		return nil, fmt.Errorf("relayer not configured")
	}
	return d.relayer.Config(ctx)
}

// feeToken labels fee metrics with the registered token name when the mint
// is known.
func feeToken(mintAddress string) string {
	if mintAddress == "" {
		return "sol"
	}
	mint, err := solana.PublicKeyFromBase58(mintAddress)
	if err != nil {
		return "spl"
	}
	if info, ok := token.ByMint(mint); ok {
		return info.Name
	}
	return "spl"
}
