package tx

import "fmt"

// Result represents a transaction result code.
type Result int

// Transaction result codes, organized by category: tes, tec, tef, tem, ter.
// Unlike networks that claim a fee on tec results, this engine applies
// nothing on failure: only tesSUCCESS commits state.
const (
	// tesSUCCESS (0)
	TesSUCCESS Result = 0

	// tec codes (100-199): the transaction was well formed but rejected
	// by the current ledger state.
	TecUNAUTHORIZED           Result = 100
	TecINSUFFICIENT_BALANCE   Result = 101
	TecINSUFFICIENT_ALLOWANCE Result = 102
	TecINSUFFICIENT_PRINCIPAL Result = 103
	TecSALE_NOT_OPEN          Result = 104
	TecHARDCAP_EXCEEDED       Result = 105
	TecALREADY_FINALIZED      Result = 106
	TecNOT_FINALIZED          Result = 107
	TecVESTING_NOT_ELAPSED    Result = 108
	TecNOTHING_TO_CLAIM       Result = 109
	TecINSUFFICIENT_FUNDS     Result = 110

	// tef codes (-199 to -100): the transaction cannot succeed in any
	// ledger derived from this one.
	TefFAILURE  Result = -199
	TefINTERNAL Result = -192
	TefPAST_SEQ Result = -190

	// tem codes (-299 to -200): malformed transaction.
	TemMALFORMED      Result = -299
	TemINVALID_AMOUNT Result = -298
	TemBAD_ACCOUNT    Result = -281
	TemINVALID        Result = -277
	TemREDUNDANT      Result = -275

	// ter codes (-99 to -1): retry later.
	TerRETRY      Result = -99
	TerNO_ACCOUNT Result = -96
	TerPRE_SEQ    Result = -92
)

// String returns the string representation of the result code.
func (r Result) String() string {
	switch r {
	case TesSUCCESS:
		return "tesSUCCESS"
	case TecUNAUTHORIZED:
		return "tecUNAUTHORIZED"
	case TecINSUFFICIENT_BALANCE:
		return "tecINSUFFICIENT_BALANCE"
	case TecINSUFFICIENT_ALLOWANCE:
		return "tecINSUFFICIENT_ALLOWANCE"
	case TecINSUFFICIENT_PRINCIPAL:
		return "tecINSUFFICIENT_PRINCIPAL"
	case TecSALE_NOT_OPEN:
		return "tecSALE_NOT_OPEN"
	case TecHARDCAP_EXCEEDED:
		return "tecHARDCAP_EXCEEDED"
	case TecALREADY_FINALIZED:
		return "tecALREADY_FINALIZED"
	case TecNOT_FINALIZED:
		return "tecNOT_FINALIZED"
	case TecVESTING_NOT_ELAPSED:
		return "tecVESTING_NOT_ELAPSED"
	case TecNOTHING_TO_CLAIM:
		return "tecNOTHING_TO_CLAIM"
	case TecINSUFFICIENT_FUNDS:
		return "tecINSUFFICIENT_FUNDS"
	case TefFAILURE:
		return "tefFAILURE"
	case TefINTERNAL:
		return "tefINTERNAL"
	case TefPAST_SEQ:
		return "tefPAST_SEQ"
	case TemMALFORMED:
		return "temMALFORMED"
	case TemINVALID_AMOUNT:
		return "temINVALID_AMOUNT"
	case TemBAD_ACCOUNT:
		return "temBAD_ACCOUNT"
	case TemINVALID:
		return "temINVALID"
	case TemREDUNDANT:
		return "temREDUNDANT"
	case TerRETRY:
		return "terRETRY"
	case TerNO_ACCOUNT:
		return "terNO_ACCOUNT"
	case TerPRE_SEQ:
		return "terPRE_SEQ"
	default:
		return fmt.Sprintf("Unknown(%d)", r)
	}
}

// IsSuccess returns true if the result indicates success.
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec (state rejection) code.
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code.
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code.
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsTer returns true if this is a ter (retry) code.
func (r Result) IsTer() bool {
	return r >= -99 && r <= -1
}

// ShouldRetry returns true if the transaction should be retried later.
func (r Result) ShouldRetry() bool {
	return r.IsTer()
}

// IsApplied returns true if the transaction changed ledger state.
// Failed transactions of every category leave no state change.
func (r Result) IsApplied() bool {
	return r.IsSuccess()
}

// Message returns a human-readable message for the result.
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TecUNAUTHORIZED:
		return "The account is not authorized to perform this operation."
	case TecINSUFFICIENT_BALANCE:
		return "Insufficient token balance."
	case TecINSUFFICIENT_ALLOWANCE:
		return "Insufficient allowance for the spender."
	case TecINSUFFICIENT_PRINCIPAL:
		return "Unstake amount exceeds the staked principal."
	case TecSALE_NOT_OPEN:
		return "The presale is not open."
	case TecHARDCAP_EXCEEDED:
		return "The purchase would exceed the sale hardcap."
	case TecALREADY_FINALIZED:
		return "The sale has already been finalized."
	case TecNOT_FINALIZED:
		return "The sale has not been finalized."
	case TecVESTING_NOT_ELAPSED:
		return "The vesting period has not elapsed."
	case TecNOTHING_TO_CLAIM:
		return "Nothing to claim."
	case TecINSUFFICIENT_FUNDS:
		return "A module account cannot cover the requested payout."
	case TemINVALID_AMOUNT:
		return "The amount is missing, malformed or out of range."
	case TemBAD_ACCOUNT:
		return "An account field is missing or malformed."
	case TemINVALID:
		return "The transaction is ill-formed."
	case TerNO_ACCOUNT:
		return "The source account does not exist."
	case TerPRE_SEQ:
		return "Missing/inapplicable prior transaction."
	case TefPAST_SEQ:
		return "Sequence number has already passed."
	default:
		return r.String()
	}
}
