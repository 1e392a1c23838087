package command

import (
	"encoding/json"
	"strings"
	"testing"
)

func validBase() Command {
	amount := uint64(10_000_000)
	return Command{
		Action:     SendPrivately,
		RPCURL:     "https://rpc.test",
		PrivateKey: "key",
		Amount:     &amount,
		Recipient:  "RecipientPubkey",
	}
}

func TestParseValid(t *testing.T) {
	raw := []byte(`{"action":"deposit","rpc_url":"https://rpc.test","private_key":"k","amount":1000}`)
	cmd, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cmd.Action != Deposit || cmd.AmountValue() != 1000 {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse([]byte(`{"action":`)); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestValidateUnknownAction(t *testing.T) {
	cmd := validBase()
	cmd.Action = "teleport"
	err := cmd.Validate()
	if err == nil {
		t.Fatalf("expected unknown action error")
	}
	if !strings.Contains(err.Error(), "teleport") {
		t.Fatalf("error must name the unrecognized tag: %v", err)
	}
}

func TestValidateMissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Command)
		field  string
	}{
		{"no rpc url", func(c *Command) { c.RPCURL = "" }, "rpc_url"},
		{"no key", func(c *Command) { c.PrivateKey = "" }, "private_key"},
		{"no amount", func(c *Command) { c.Amount = nil }, "amount"},
		{"no recipient", func(c *Command) { c.Recipient = "" }, "recipient"},
	}
	for _, tc := range cases {
		cmd := validBase()
		tc.mutate(&cmd)
		err := cmd.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.field) {
			t.Fatalf("%s: error must name %q, got %v", tc.name, tc.field, err)
		}
	}
}

func TestValidateMintRequiredForSPL(t *testing.T) {
	amount := uint64(1)
	cmd := Command{Action: WithdrawAllSPL, RPCURL: "u", PrivateKey: "k", Amount: &amount}
	err := cmd.Validate()
	if err == nil || !strings.Contains(err.Error(), "mint_address") {
		t.Fatalf("expected mint_address error, got %v", err)
	}
}

func TestValidateBalanceNeedsNoAmount(t *testing.T) {
	cmd := Command{Action: Balance, RPCURL: "u", PrivateKey: "k"}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("balance should not require amount: %v", err)
	}
}

func TestValidateTokensNeedsNothing(t *testing.T) {
	cmd := Command{Action: Tokens}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("tokens should validate without credentials: %v", err)
	}
}

func TestResultEncodeFailure(t *testing.T) {
	cmd := validBase()
	cmd.Recipient = ""
	err := cmd.Validate()
	res := Failure(err)

	var decoded map[string]any
	if err := json.Unmarshal(res.Encode(), &decoded); err != nil {
		t.Fatalf("failure result must be valid JSON: %v", err)
	}
	if decoded["success"] != false {
		t.Fatalf("expected success false, got %v", decoded["success"])
	}
	if decoded["error"] == "" {
		t.Fatalf("expected error message")
	}
}

func TestResultOmitsZeroBalanceFieldsOnlyWhenNil(t *testing.T) {
	res := BalanceResult(0, 0)
	raw := string(res.Encode())
	if !strings.Contains(raw, `"lamports":0`) {
		t.Fatalf("zero balance must still be reported: %s", raw)
	}
}
