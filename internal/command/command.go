// Package command models the single JSON command a caller passes per invocation
// and the single JSON result the process emits in return.
package command

import (
	"encoding/json"
	"fmt"
)

// Action tags the supported operations.
type Action string

const (
	Balance          Action = "balance"
	BalanceSPL       Action = "balance_spl"
	Deposit          Action = "deposit"
	DepositSPL       Action = "deposit_spl"
	Withdraw         Action = "withdraw"
	WithdrawSPL      Action = "withdraw_spl"
	WithdrawAll      Action = "withdraw_all"
	WithdrawAllSPL   Action = "withdraw_all_spl"
	SendPrivately    Action = "send_privately"
	SendPrivatelySPL Action = "send_privately_spl"
	EstimateFees     Action = "estimate_fees"
	EstimateFeesSPL  Action = "estimate_fees_spl"
	Tokens           Action = "tokens"
)

// Command is one logical action. Amount is denominated in base units
// (lamports for SOL). MintAddress absent means the base asset.
type Command struct {
	Action      Action  `json:"action"`
	RPCURL      string  `json:"rpc_url"`
	PrivateKey  string  `json:"private_key"`
	Amount      *uint64 `json:"amount,omitempty"`
	MintAddress string  `json:"mint_address,omitempty"`
	Recipient   string  `json:"recipient,omitempty"`
}

// Decode unmarshals a command without validating it, so callers can fill
// defaults (RPC URL, signing key) before Validate runs.
func Decode(raw []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return nil, fmt.Errorf("decode command: %w", err)
	}
	return &cmd, nil
}

// Parse decodes a single JSON command object and validates it.
func Parse(raw []byte) (*Command, error) {
	cmd, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// requirements lists, per action, which optional fields are mandatory.
var requirements = map[Action]struct {
	amount    bool
	mint      bool
	recipient bool
}{
	Balance:          {},
	BalanceSPL:       {mint: true},
	Deposit:          {amount: true},
	DepositSPL:       {amount: true, mint: true},
	Withdraw:         {amount: true},
	WithdrawSPL:      {amount: true, mint: true},
	WithdrawAll:      {},
	WithdrawAllSPL:   {mint: true},
	SendPrivately:    {amount: true, recipient: true},
	SendPrivatelySPL: {amount: true, mint: true, recipient: true},
	EstimateFees:     {amount: true},
	EstimateFeesSPL:  {amount: true, mint: true},
	Tokens:           {},
}

// Validate fails fast on a missing required field or an unknown action tag,
// before any remote call is attempted.
func (c *Command) Validate() error {
	req, ok := requirements[c.Action]
	if !ok {
		return fmt.Errorf("unknown action %q", c.Action)
	}
	if c.Action != Tokens {
		if c.RPCURL == "" {
			return missingField(c.Action, "rpc_url")
		}
		if c.PrivateKey == "" {
			return missingField(c.Action, "private_key")
		}
	}
	if req.amount && (c.Amount == nil || *c.Amount == 0) {
		return missingField(c.Action, "amount")
	}
	if req.mint && c.MintAddress == "" {
		return missingField(c.Action, "mint_address")
	}
	if req.recipient && c.Recipient == "" {
		return missingField(c.Action, "recipient")
	}
	return nil
}

func missingField(action Action, field string) error {
	return fmt.Errorf("action %s requires field %q", action, field)
}

// AmountValue returns the amount or zero when absent.
func (c *Command) AmountValue() uint64 {
	if c.Amount == nil {
		return 0
	}
	return *c.Amount
}
