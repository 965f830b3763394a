package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	intconfig "tourbooking/internal/config"
)

func TestSignatureMatchesMidtransScheme(t *testing.T) {
	serverKey := "SB-server-key"
	sig := Signature(serverKey, "PAY-1", "200", "150000.00")

	if !VerifySignature(serverKey, "PAY-1", "200", "150000.00", sig) {
		t.Fatalf("valid signature rejected")
	}
	if VerifySignature(serverKey, "PAY-1", "200", "150000.00", sig+"x") {
		t.Fatalf("tampered signature accepted")
	}
	if VerifySignature(serverKey, "PAY-1", "200", "999999.00", sig) {
		t.Fatalf("amount swap accepted")
	}
	if VerifySignature("other-key", "PAY-1", "200", "150000.00", sig) {
		t.Fatalf("wrong server key accepted")
	}
}

func TestCreateSnapTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if user, _, ok := r.BasicAuth(); !ok || user != "SB-key" {
			t.Fatalf("missing basic auth")
		}
		var body struct {
			Details struct {
				OrderID     string `json:"order_id"`
				GrossAmount string `json:"gross_amount"`
			} `json:"transaction_details"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Details.OrderID != "PAY-1" {
			t.Fatalf("order_id = %s", body.Details.OrderID)
		}
		if body.Details.GrossAmount != "150000.00" {
			t.Fatalf("gross_amount = %s, want the two-decimal gateway form", body.Details.GrossAmount)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"token":        "tok-123",
			"redirect_url": "https://example.test/redirect",
		})
	}))
	defer srv.Close()

	c := NewHTTP(intconfig.Env{MidtransServerKey: "SB-key", MidtransSnapURL: srv.URL})
	snap, err := c.CreateSnapTransaction(SnapRequest{OrderID: "PAY-1", GrossAmount: 150000, CustomerID: 9})
	if err != nil {
		t.Fatalf("create error: %v", err)
	}
	if snap.Token != "tok-123" {
		t.Fatalf("token = %s", snap.Token)
	}
}

func TestCreateSnapTransactionUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewHTTP(intconfig.Env{MidtransServerKey: "SB-key", MidtransSnapURL: srv.URL})
	if _, err := c.CreateSnapTransaction(SnapRequest{OrderID: "PAY-1"}); err == nil {
		t.Fatalf("expected error on 401")
	}
}

func TestGetTransactionStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/PAY-1/status" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"transaction_status": "settlement",
			"status_code":        "200",
			"gross_amount":       "150000.00",
		})
	}))
	defer srv.Close()

	c := NewHTTP(intconfig.Env{MidtransServerKey: "SB-key", MidtransBaseURL: srv.URL})
	st, err := c.GetTransactionStatus("PAY-1")
	if err != nil {
		t.Fatalf("poll error: %v", err)
	}
	if st.TransactionStatus != "settlement" {
		t.Fatalf("status = %s", st.TransactionStatus)
	}
	if st.OrderID != "PAY-1" {
		t.Fatalf("order_id should fall back to the requested id, got %s", st.OrderID)
	}
}
