package dispatch

import (
	"context"
	"fmt"

	solana "github.com/gagliardetto/solana-go"

	"privsend-go/internal/command"
	"privsend-go/internal/metrics"
)

// nothingToWithdraw is reported as a success envelope: an empty pool is an
// answer, not a failure.
const nothingToWithdraw = "nothing to withdraw"

// collectPlatformFee computes and, when non-zero, collects the platform fee
// for amount. Collection is confirmed before this returns, which serializes
// fee collection strictly before the paired withdrawal.
func (d *Dispatcher) collectPlatformFee(ctx context.Context, amount uint64, mintAddress string) (fee uint64, feeTx string, err error) {
	fee = d.fees.Calculate(amount)
	if fee == 0 {
		return 0, "", nil
	}

	var sig solana.Signature
	if mintAddress == "" {
		sig, err = d.fees.CollectSOL(ctx, fee)
	} else {
		var mint solana.PublicKey
		mint, err = solana.PublicKeyFromBase58(mintAddress)
		if err != nil {
			return 0, "", fmt.Errorf("invalid mint_address: %w", err)
		}
		sig, err = d.fees.CollectSPL(ctx, fee, mint)
	}
	if err != nil {
		return 0, "", fmt.Errorf("collect platform fee: %w", err)
	}
	metrics.PlatformFeeTotal.WithLabelValues(feeToken(mintAddress)).Add(float64(fee))
	return fee, sig.String(), nil
}

func (d *Dispatcher) withdraw(ctx context.Context, cmd *command.Command, amount uint64) (*command.Result, error) {
	fee, feeTx, err := d.collectPlatformFee(ctx, amount, "")
	if err != nil {
		return nil, err
	}

	wd, err := d.bridge.Withdraw(ctx, cmd.RPCURL, cmd.PrivateKey, amount, cmd.Recipient)
	if err != nil {
		return nil, err
	}
	d.log.Info().Str("tx", wd.Signature).Uint64("lamports", wd.Lamports).Msg("withdrawn")
	return &command.Result{
		Success:          true,
		Signature:        wd.Signature,
		AmountInLamports: wd.Lamports,
		FeeInLamports:    wd.Fee,
		PlatformFee:      fee,
		PlatformFeeTx:    feeTx,
		Recipient:        cmd.Recipient,
	}, nil
}

func (d *Dispatcher) withdrawSPL(ctx context.Context, cmd *command.Command, amount uint64) (*command.Result, error) {
	fee, feeTx, err := d.collectPlatformFee(ctx, amount, cmd.MintAddress)
	if err != nil {
		return nil, err
	}

	wd, err := d.bridge.WithdrawSPL(ctx, cmd.RPCURL, cmd.PrivateKey, amount, cmd.MintAddress, cmd.Recipient)
	if err != nil {
		return nil, err
	}
	d.log.Info().Str("tx", wd.Signature).Uint64("base_units", wd.BaseUnits).Str("mint", cmd.MintAddress).Msg("withdrawn")
	res := &command.Result{
		Success:       true,
		Signature:     wd.Signature,
		FeeBaseUnits:  wd.Fee,
		PlatformFee:   fee,
		PlatformFeeTx: feeTx,
		Recipient:     cmd.Recipient,
		MintAddress:   cmd.MintAddress,
	}
	units := wd.BaseUnits
	res.BaseUnits = &units
	return res, nil
}

func (d *Dispatcher) withdrawAll(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	bal, err := d.bridge.Balance(ctx, cmd.RPCURL, cmd.PrivateKey)
	if err != nil {
		return nil, err
	}
	if bal.Lamports == 0 {
		return &command.Result{Success: true, Message: nothingToWithdraw}, nil
	}
	return d.withdraw(ctx, cmd, bal.Lamports)
}

func (d *Dispatcher) withdrawAllSPL(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	bal, err := d.bridge.BalanceSPL(ctx, cmd.RPCURL, cmd.PrivateKey, cmd.MintAddress)
	if err != nil {
		return nil, err
	}
	if bal.BaseUnits == 0 {
		return &command.Result{Success: true, Message: nothingToWithdraw, MintAddress: cmd.MintAddress}, nil
	}
	return d.withdrawSPL(ctx, cmd, bal.BaseUnits)
}
