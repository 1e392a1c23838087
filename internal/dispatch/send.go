package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"privsend-go/internal/command"
)

// ErrIndexerTimeout means the deposit confirmed on chain but the protocol
// indexer never reported the funds before the deadline. The deposit is not
// lost; the funds stay privately held and a later withdraw can release them.
var ErrIndexerTimeout = errors.New("indexer did not observe deposit before deadline")

const (
	defaultIndexerInitialDelay = time.Second
	defaultIndexerMaxDelay     = 16 * time.Second
	defaultIndexerDeadline     = 2 * time.Minute
)

// waitForIndexer polls the private balance until it rises above baseline,
// backing off exponentially between probes up to a hard deadline. This
// replaces a blind fixed sleep: the indexer's latency is unbounded, so the
// wait is observed rather than assumed.
func (d *Dispatcher) waitForIndexer(ctx context.Context, baseline uint64, probe func(context.Context) (uint64, error)) error {
	delay := time.Duration(d.indexer.InitialDelayMs) * time.Millisecond
	if delay <= 0 {
		delay = defaultIndexerInitialDelay
	}
	maxDelay := time.Duration(d.indexer.MaxDelayMs) * time.Millisecond
	if maxDelay <= 0 {
		maxDelay = defaultIndexerMaxDelay
	}
	deadline := time.Duration(d.indexer.DeadlineMs) * time.Millisecond
	if deadline <= 0 {
		deadline = defaultIndexerDeadline
	}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ErrIndexerTimeout
		case <-time.After(delay):
		}

		balance, err := probe(ctx)
		if err != nil {
			// Transient probe failures are retried until the deadline.
			d.log.Warn().Err(err).Msg("indexer probe failed")
		} else if balance > baseline {
			return nil
		}

		if delay *= 2; delay > maxDelay {
			delay = maxDelay
		}
	}
}

// sendPrivately runs the composite flow: deposit, wait for the indexer,
// collect the platform fee, withdraw to the recipient. There is no rollback;
// a failure after the deposit keeps the deposit signature and completed steps
// in the failure result so the caller can finish the transfer manually.
func (d *Dispatcher) sendPrivately(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	amount := cmd.AmountValue()
	steps := newStepLedger(d.log)

	baseline, err := d.bridge.Balance(ctx, cmd.RPCURL, cmd.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("baseline balance: %w", err)
	}

	dep, err := d.bridge.Deposit(ctx, cmd.RPCURL, cmd.PrivateKey, amount)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	steps.Complete(StepDeposited)
	d.log.Info().Str("deposit_tx", dep.Signature).Uint64("lamports", amount).Str("recipient", cmd.Recipient).Msg("private send: deposited")

	fail := func(cause error) *command.Result {
		res := command.Failure(cause)
		res.DepositSignature = dep.Signature
		res.AmountSent = amount
		res.Recipient = cmd.Recipient
		res.Steps = steps.Names()
		// The deposit is durable even though the transfer failed; surface
		// the signature prominently for manual recovery.
		d.log.Error().Err(cause).Str("deposit_tx", dep.Signature).Msg("private send failed after deposit; funds remain privately held")
		return res
	}

	err = d.waitForIndexer(ctx, baseline.Lamports, func(ctx context.Context) (uint64, error) {
		bal, err := d.bridge.Balance(ctx, cmd.RPCURL, cmd.PrivateKey)
		return bal.Lamports, err
	})
	if err != nil {
		return fail(err), nil
	}

	fee, feeTx, err := d.collectPlatformFee(ctx, amount, "")
	if err != nil {
		return fail(err), nil
	}
	steps.Complete(StepFeeCollected)

	wd, err := d.bridge.Withdraw(ctx, cmd.RPCURL, cmd.PrivateKey, amount, cmd.Recipient)
	if err != nil {
		return fail(fmt.Errorf("withdraw: %w", err)), nil
	}
	steps.Complete(StepWithdrawn)

	return &command.Result{
		Success:           true,
		DepositSignature:  dep.Signature,
		WithdrawSignature: wd.Signature,
		AmountSent:        amount,
		AmountReceived:    wd.Lamports,
		ProtocolFee:       wd.Fee,
		PlatformFee:       fee,
		PlatformFeeTx:     feeTx,
		Recipient:         cmd.Recipient,
		Steps:             steps.Names(),
	}, nil
}

// sendPrivatelySPL is sendPrivately for a token mint.
func (d *Dispatcher) sendPrivatelySPL(ctx context.Context, cmd *command.Command) (*command.Result, error) {
	amount := cmd.AmountValue()
	steps := newStepLedger(d.log)

	baseline, err := d.bridge.BalanceSPL(ctx, cmd.RPCURL, cmd.PrivateKey, cmd.MintAddress)
	if err != nil {
		return nil, fmt.Errorf("baseline balance: %w", err)
	}

	dep, err := d.bridge.DepositSPL(ctx, cmd.RPCURL, cmd.PrivateKey, amount, cmd.MintAddress)
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	steps.Complete(StepDeposited)
	d.log.Info().Str("deposit_tx", dep.Signature).Uint64("base_units", amount).Str("mint", cmd.MintAddress).Str("recipient", cmd.Recipient).Msg("private send: deposited")

	fail := func(cause error) *command.Result {
		res := command.Failure(cause)
		res.DepositSignature = dep.Signature
		res.BaseUnitsSent = amount
		res.Recipient = cmd.Recipient
		res.MintAddress = cmd.MintAddress
		res.Steps = steps.Names()
		d.log.Error().Err(cause).Str("deposit_tx", dep.Signature).Msg("private send failed after deposit; funds remain privately held")
		return res
	}

	err = d.waitForIndexer(ctx, baseline.BaseUnits, func(ctx context.Context) (uint64, error) {
		bal, err := d.bridge.BalanceSPL(ctx, cmd.RPCURL, cmd.PrivateKey, cmd.MintAddress)
		return bal.BaseUnits, err
	})
	if err != nil {
		return fail(err), nil
	}

	fee, feeTx, err := d.collectPlatformFee(ctx, amount, cmd.MintAddress)
	if err != nil {
		return fail(err), nil
	}
	steps.Complete(StepFeeCollected)

	wd, err := d.bridge.WithdrawSPL(ctx, cmd.RPCURL, cmd.PrivateKey, amount, cmd.MintAddress, cmd.Recipient)
	if err != nil {
		return fail(fmt.Errorf("withdraw: %w", err)), nil
	}
	steps.Complete(StepWithdrawn)

	return &command.Result{
		Success:           true,
		DepositSignature:  dep.Signature,
		WithdrawSignature: wd.Signature,
		BaseUnitsSent:     amount,
		BaseUnitsReceived: wd.BaseUnits,
		ProtocolFee:       wd.Fee,
		PlatformFee:       fee,
		PlatformFeeTx:     feeTx,
		Recipient:         cmd.Recipient,
		MintAddress:       cmd.MintAddress,
		Steps:             steps.Names(),
	}, nil
}
