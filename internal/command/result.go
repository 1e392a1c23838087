package command

import "encoding/json"

// TokenInfo is one entry of the tokens action response.
type TokenInfo struct {
	Name          string `json:"name"`
	Mint          string `json:"mint"`
	UnitsPerToken uint64 `json:"units_per_token"`
}

// Result is the single JSON object emitted per invocation. Exactly one of
// Success/Error carries meaning: a failure result always has Success false
// and a non-empty Error.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	Signature string `json:"signature,omitempty"`

	Lamports  *uint64  `json:"lamports,omitempty"`
	SOL       *float64 `json:"sol,omitempty"`
	BaseUnits *uint64  `json:"base_units,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`

	AmountInLamports uint64 `json:"amount_in_lamports,omitempty"`
	FeeInLamports    uint64 `json:"fee_in_lamports,omitempty"`
	FeeBaseUnits     uint64 `json:"fee_base_units,omitempty"`

	PlatformFee   uint64 `json:"platform_fee,omitempty"`
	PlatformFeeTx string `json:"platform_fee_tx,omitempty"`

	DepositSignature  string `json:"deposit_signature,omitempty"`
	WithdrawSignature string `json:"withdraw_signature,omitempty"`
	AmountSent        uint64 `json:"amount_sent,omitempty"`
	AmountReceived    uint64 `json:"amount_received,omitempty"`
	BaseUnitsSent     uint64 `json:"base_units_sent,omitempty"`
	BaseUnitsReceived uint64 `json:"base_units_received,omitempty"`
	ProtocolFee       uint64 `json:"protocol_fee,omitempty"`

	EstimatedProtocolFee uint64 `json:"estimated_protocol_fee,omitempty"`
	EstimatedTotalFee    uint64 `json:"estimated_total_fee,omitempty"`

	Recipient   string      `json:"recipient,omitempty"`
	MintAddress string      `json:"mint_address,omitempty"`
	Tokens      []TokenInfo `json:"tokens,omitempty"`

	// Steps records the composite-flow transitions that completed, in order,
	// so a caller can resume from the last completed step after a failure.
	Steps []string `json:"steps,omitempty"`
}

// Failure wraps an error into the failure envelope.
func Failure(err error) *Result {
	return &Result{Success: false, Error: err.Error()}
}

// Encode renders the result as a single JSON object.
func (r *Result) Encode() []byte {
	data, err := json.Marshal(r)
	if err != nil {
		// Result contains only marshalable fields; this is unreachable in
		// practice but keeps the emitter total.
		return []byte(`{"success":false,"error":"encode result"}`)
	}
	return data
}

func uintPtr(v uint64) *uint64    { return &v }
func floatPtr(v float64) *float64 { return &v }

// BalanceResult shapes the native balance response.
func BalanceResult(lamports uint64, sol float64) *Result {
	return &Result{Success: true, Lamports: uintPtr(lamports), SOL: floatPtr(sol)}
}

// SPLBalanceResult shapes the token balance response.
func SPLBalanceResult(mint string, baseUnits uint64, amount float64) *Result {
	return &Result{Success: true, MintAddress: mint, BaseUnits: uintPtr(baseUnits), Amount: floatPtr(amount)}
}
