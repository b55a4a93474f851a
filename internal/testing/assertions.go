package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takulai/takd/internal/core/amount"
)

// RequireBalance asserts that an account has the expected balance in
// base units.
func RequireBalance(t *testing.T, env *Env, acc *Account, expected *amount.Amount) {
	t.Helper()
	actual := env.Balance(acc)
	require.True(t, actual.Eq(expected),
		"Account %s balance mismatch: expected %s, got %s",
		acc.Name, amount.Format(expected), amount.Format(actual))
}

// RequireBalanceTokens asserts that an account holds exactly n whole tokens.
func RequireBalanceTokens(t *testing.T, env *Env, acc *Account, n uint64) {
	t.Helper()
	RequireBalance(t, env, acc, amount.Tokens(n))
}

// RequireTxSuccess asserts that a transaction applied with tesSUCCESS.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, "tesSUCCESS", result.Code)
}

// RequireTxFail asserts that a transaction failed with a specific code
// and changed nothing.
func RequireTxFail(t *testing.T, result TxResult, expectedCode string) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expectedCode)
	require.Equal(t, expectedCode, result.Code,
		"Expected failure code %s, got %s: %s", expectedCode, result.Code, result.Message)
	require.False(t, result.Applied,
		"Failed transaction %s must not be applied", result.Code)
}
