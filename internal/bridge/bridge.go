// Package bridge talks to the upstream privacy CLI, a Node process that owns
// proof generation and on-chain submission. One JSON object goes in as the
// sole argument, one JSON object comes back on the last stdout line.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Client is the remote privacy protocol surface the dispatcher depends on.
type Client interface {
	Balance(ctx context.Context, rpcURL, privateKey string) (Balance, error)
	BalanceSPL(ctx context.Context, rpcURL, privateKey, mint string) (SPLBalance, error)
	Deposit(ctx context.Context, rpcURL, privateKey string, lamports uint64) (DepositResult, error)
	DepositSPL(ctx context.Context, rpcURL, privateKey string, baseUnits uint64, mint string) (DepositResult, error)
	Withdraw(ctx context.Context, rpcURL, privateKey string, lamports uint64, recipient string) (WithdrawResult, error)
	WithdrawSPL(ctx context.Context, rpcURL, privateKey string, baseUnits uint64, mint, recipient string) (SPLWithdrawResult, error)
}

// Balance is the private native balance.
type Balance struct {
	Lamports uint64
	SOL      float64
}

// SPLBalance is the private balance for one mint.
type SPLBalance struct {
	BaseUnits uint64
	Amount    float64
}

// DepositResult reports a completed shield operation.
type DepositResult struct {
	Signature string
	Amount    uint64
}

// WithdrawResult reports a completed native unshield operation. Fee is the
// protocol's own fee, not the platform fee collected locally.
type WithdrawResult struct {
	Signature string
	Lamports  uint64
	Fee       uint64
}

// SPLWithdrawResult is WithdrawResult for token withdrawals.
type SPLWithdrawResult struct {
	Signature string
	BaseUnits uint64
	Fee       uint64
}

// request mirrors the upstream CLI's command contract field for field.
type request struct {
	Action      string `json:"action"`
	RPCURL      string `json:"rpc_url"`
	PrivateKey  string `json:"private_key"`
	Amount      uint64 `json:"amount,omitempty"`
	MintAddress string `json:"mint_address,omitempty"`
	Recipient   string `json:"recipient,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
}

// response mirrors the upstream CLI's result contract. Fields are populated
// per action; absent fields decode to their zero values.
type response struct {
	Success          bool    `json:"success"`
	Error            string  `json:"error"`
	Signature        string  `json:"signature"`
	Lamports         uint64  `json:"lamports"`
	SOL              float64 `json:"sol"`
	BaseUnits        uint64  `json:"base_units"`
	Amount           float64 `json:"amount"`
	AmountInLamports uint64  `json:"amount_in_lamports"`
	FeeInLamports    uint64  `json:"fee_in_lamports"`
	FeeBaseUnits     uint64  `json:"fee_base_units"`
}

// Process shells out to the upstream CLI. Command is the argv prefix the
// JSON payload is appended to; Dir is its working directory.
type Process struct {
	Dir      string
	Command  []string
	Referrer string
	Log      zerolog.Logger
}

// DefaultCommand runs the CLI through the Node toolchain.
var DefaultCommand = []string{"npx", "tsx", "cli.ts"}

// NewProcess builds a Process with the default argv.
func NewProcess(dir, referrer string, log zerolog.Logger) *Process {
	return &Process{Dir: dir, Command: DefaultCommand, Referrer: referrer, Log: log}
}

func (p *Process) call(ctx context.Context, req request) (*response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode bridge command: %w", err)
	}

	argv := p.Command
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	// The default toolchain invocation needs installed node modules; fail
	// with an actionable message instead of an opaque npx error.
	if argv[0] == DefaultCommand[0] {
		if _, err := os.Stat(filepath.Join(p.Dir, "node_modules")); err != nil {
			return nil, fmt.Errorf("privacy CLI not installed: run npm install in %s", p.Dir)
		}
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], string(payload))...)
	cmd.Dir = p.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	// The CLI narrates progress on stderr; relay it as diagnostics so the
	// structured stdout channel stays parseable.
	if stderr.Len() > 0 {
		p.Log.Debug().Str("stderr", stderr.String()).Msg("bridge diagnostics")
	}

	line := lastJSONLine(stdout.String())
	if line == "" {
		if runErr != nil {
			return nil, fmt.Errorf("run privacy CLI: %w", runErr)
		}
		return nil, fmt.Errorf("no response from privacy CLI")
	}

	var resp response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return nil, fmt.Errorf("parse bridge response: %w", err)
	}
	if !resp.Success {
		if resp.Error == "" {
			resp.Error = "unknown bridge error"
		}
		return nil, fmt.Errorf("bridge: %s", resp.Error)
	}
	return &resp, nil
}

// lastJSONLine returns the final stdout line that looks like a JSON object.
// Anything before it is narration the CLI leaked onto stdout.
func lastJSONLine(out string) string {
	var last string
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") {
			last = trimmed
		}
	}
	return last
}

func (p *Process) Balance(ctx context.Context, rpcURL, privateKey string) (Balance, error) {
	resp, err := p.call(ctx, request{Action: "balance", RPCURL: rpcURL, PrivateKey: privateKey})
	if err != nil {
		return Balance{}, err
	}
	return Balance{Lamports: resp.Lamports, SOL: resp.SOL}, nil
}

func (p *Process) BalanceSPL(ctx context.Context, rpcURL, privateKey, mint string) (SPLBalance, error) {
	resp, err := p.call(ctx, request{Action: "balance_spl", RPCURL: rpcURL, PrivateKey: privateKey, MintAddress: mint})
	if err != nil {
		return SPLBalance{}, err
	}
	return SPLBalance{BaseUnits: resp.BaseUnits, Amount: resp.Amount}, nil
}

func (p *Process) Deposit(ctx context.Context, rpcURL, privateKey string, lamports uint64) (DepositResult, error) {
	resp, err := p.call(ctx, request{Action: "deposit", RPCURL: rpcURL, PrivateKey: privateKey, Amount: lamports})
	if err != nil {
		return DepositResult{}, err
	}
	return DepositResult{Signature: resp.Signature, Amount: lamports}, nil
}

func (p *Process) DepositSPL(ctx context.Context, rpcURL, privateKey string, baseUnits uint64, mint string) (DepositResult, error) {
	resp, err := p.call(ctx, request{Action: "deposit_spl", RPCURL: rpcURL, PrivateKey: privateKey, Amount: baseUnits, MintAddress: mint})
	if err != nil {
		return DepositResult{}, err
	}
	return DepositResult{Signature: resp.Signature, Amount: baseUnits}, nil
}

func (p *Process) Withdraw(ctx context.Context, rpcURL, privateKey string, lamports uint64, recipient string) (WithdrawResult, error) {
	resp, err := p.call(ctx, request{
		Action: "withdraw", RPCURL: rpcURL, PrivateKey: privateKey,
		Amount: lamports, Recipient: recipient, Referrer: p.Referrer,
	})
	if err != nil {
		return WithdrawResult{}, err
	}
	return WithdrawResult{Signature: resp.Signature, Lamports: resp.AmountInLamports, Fee: resp.FeeInLamports}, nil
}

func (p *Process) WithdrawSPL(ctx context.Context, rpcURL, privateKey string, baseUnits uint64, mint, recipient string) (SPLWithdrawResult, error) {
	resp, err := p.call(ctx, request{
		Action: "withdraw_spl", RPCURL: rpcURL, PrivateKey: privateKey,
		Amount: baseUnits, MintAddress: mint, Recipient: recipient, Referrer: p.Referrer,
	})
	if err != nil {
		return SPLWithdrawResult{}, err
	}
	return SPLWithdrawResult{Signature: resp.Signature, BaseUnits: resp.BaseUnits, Fee: resp.FeeBaseUnits}, nil
}
