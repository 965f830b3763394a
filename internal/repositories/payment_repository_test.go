package repositories

import (
	"encoding/json"
	"testing"
)

func TestMergeGatewayResponseKeepsPriorKeys(t *testing.T) {
	existing := `{"transaction_status":"pending","va_number":"123"}`
	raw := []byte(`{"transaction_status":"settlement","settlement_time":"2024-01-10 08:00:00"}`)

	merged := MergeGatewayResponse(existing, raw)

	var out map[string]any
	if err := json.Unmarshal([]byte(merged), &out); err != nil {
		t.Fatalf("merged blob is not valid JSON: %v", err)
	}
	if out["transaction_status"] != "settlement" {
		t.Fatalf("latest status should win, got %v", out["transaction_status"])
	}
	if out["va_number"] != "123" {
		t.Fatalf("prior key lost: %v", out)
	}
	if out["settlement_time"] != "2024-01-10 08:00:00" {
		t.Fatalf("new key missing: %v", out)
	}
}

func TestMergeGatewayResponseUnparseableInputs(t *testing.T) {
	// broken stored blob: the raw payload wins
	merged := MergeGatewayResponse("not-json", []byte(`{"a":1}`))
	var out map[string]any
	if err := json.Unmarshal([]byte(merged), &out); err != nil {
		t.Fatalf("merged blob is not valid JSON: %v", err)
	}
	if _, ok := out["a"]; !ok {
		t.Fatalf("raw payload lost: %s", merged)
	}

	// broken raw payload: the stored blob survives
	merged = MergeGatewayResponse(`{"b":2}`, []byte("not-json"))
	if err := json.Unmarshal([]byte(merged), &out); err != nil {
		t.Fatalf("merged blob is not valid JSON: %v", err)
	}
	if _, ok := out["b"]; !ok {
		t.Fatalf("stored blob lost: %s", merged)
	}
}
