package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/takulai/takd/internal/node"
)

const (
	testOwner = "0x00112233445566778899aabbccddeeff00112233"
	testDest  = "0xffeeddccbbaa99887766554433221100ffeeddcc"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n, err := node.Open(node.Options{
		Backend:      "memory",
		HistoryPath:  ":memory:",
		GenesisOwner: testOwner,
		Logger:       logger,
	})
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })

	srv := NewServer(n, Options{Version: "test", Logger: logger})
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, ts *httptest.Server, method string, params map[string]any) map[string]any {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"method": method,
		"params": []any{params},
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NotNil(t, envelope.Result)
	return envelope.Result
}

func TestServerInfoOverGet(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/?command=server_info")
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope struct {
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, "success", envelope.Result["status"])
	require.Equal(t, "test", envelope.Result["build_version"])
	require.Equal(t, "full", envelope.Result["server_state"])
}

func TestSubmitAndQuery(t *testing.T) {
	ts := newTestServer(t)

	txJSON := fmt.Sprintf(`{
		"TransactionType": "Transfer",
		"Account":         %q,
		"Destination":     %q,
		"Amount":          "1000000000000000000"
	}`, testOwner, testDest)

	result := call(t, ts, "submit", map[string]any{
		"tx_json": json.RawMessage(txJSON),
	})
	require.Equal(t, "success", result["status"])
	require.Equal(t, "tesSUCCESS", result["engine_result"])
	require.Equal(t, true, result["applied"])
	hash, ok := result["tx_hash"].(string)
	require.True(t, ok)
	require.Len(t, hash, 64)

	// The destination receives the amount net of the 2% transfer fee.
	info := call(t, ts, "account_info", map[string]any{"account": testDest})
	require.Equal(t, "success", info["status"])
	require.Equal(t, "980000000000000000", info["balance"])

	rec := call(t, ts, "tx", map[string]any{"transaction": hash})
	require.Equal(t, "success", rec["status"])
	require.Equal(t, "Transfer", rec["type"])
	require.Equal(t, testOwner, rec["account"])

	txs := call(t, ts, "account_tx", map[string]any{"account": testOwner})
	require.Equal(t, "success", txs["status"])
	require.Len(t, txs["transactions"], 1)
}

func TestSubmitRejectedNotStored(t *testing.T) {
	ts := newTestServer(t)

	// Self-transfers are malformed and never touch the ledger.
	txJSON := fmt.Sprintf(`{
		"TransactionType": "Transfer",
		"Account":         %q,
		"Destination":     %q,
		"Amount":          "1"
	}`, testOwner, testOwner)

	result := call(t, ts, "submit", map[string]any{
		"tx_json": json.RawMessage(txJSON),
	})
	require.Equal(t, "success", result["status"])
	require.Equal(t, "temREDUNDANT", result["engine_result"])
	require.Equal(t, false, result["applied"])
}

func TestUnknownMethod(t *testing.T) {
	ts := newTestServer(t)

	result := call(t, ts, "no_such_method", map[string]any{})
	require.Equal(t, "error", result["status"])
	require.Equal(t, "unknownCmd", result["error"])
	require.Equal(t, float64(RpcUNKNOWN_COMMAND), result["error_code"])
}

func TestMissingMethodField(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL, "application/json", bytes.NewReader([]byte(`{"params":[]}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope struct {
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, "error", envelope.Result["status"])
	require.Equal(t, "missingCommand", envelope.Result["error"])
}

func TestSupplyAndConfigQueries(t *testing.T) {
	ts := newTestServer(t)

	supply := call(t, ts, "supply", map[string]any{})
	require.Equal(t, "success", supply["status"])
	require.Equal(t, "0", supply["burned"])
	require.Equal(t, supply["total"], supply["circulating"])

	cfg := call(t, ts, "token_config", map[string]any{})
	require.Equal(t, "success", cfg["status"])
	require.Equal(t, testOwner, cfg["owner"])
	require.Equal(t, float64(2), cfg["fee_percent"])
	require.Equal(t, float64(5), cfg["burn_rate"])
}
