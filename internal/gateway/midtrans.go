package gateway

import (
	"bytes"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	intconfig "tourbooking/internal/config"
	"tourbooking/internal/utils"
)

// SnapRequest describes one checkout session to create at the gateway.
type SnapRequest struct {
	OrderID     string
	GrossAmount int64
	CustomerID  int64
}

// SnapResponse carries the session token the client redirects into.
type SnapResponse struct {
	Token       string
	RedirectURL string
}

// TransactionStatus is the gateway's view of one order.
type TransactionStatus struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
}

// Client is the payment-gateway boundary. Services depend on this interface so
// reconciliation tests can stub the gateway.
type Client interface {
	CreateSnapTransaction(req SnapRequest) (*SnapResponse, error)
	GetTransactionStatus(orderID string) (*TransactionStatus, error)
	VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool
}

type httpClient struct {
	serverKey string
	baseURL   string
	snapURL   string
	client    *http.Client
}

func NewHTTP(env intconfig.Env) Client {
	return &httpClient{
		serverKey: env.MidtransServerKey,
		baseURL:   env.MidtransBaseURL,
		snapURL:   env.MidtransSnapURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *httpClient) CreateSnapTransaction(req SnapRequest) (*SnapResponse, error) {
	body := map[string]any{
		"transaction_details": map[string]any{
			"order_id":     req.OrderID,
			"gross_amount": utils.FormatGross(req.GrossAmount),
		},
		"customer_details": map[string]any{
			"customer_id": fmt.Sprintf("CUST-%d", req.CustomerID),
		},
	}
	b, _ := json.Marshal(body)
	httpReq, err := http.NewRequest(http.MethodPost, c.snapURL+"/transactions", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.serverKey, "")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("snap create transaction failed: %s", resp.Status)
	}

	var out struct {
		Token       string `json:"token"`
		RedirectURL string `json:"redirect_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("snap: empty session token")
	}

	return &SnapResponse{Token: out.Token, RedirectURL: out.RedirectURL}, nil
}

func (c *httpClient) GetTransactionStatus(orderID string) (*TransactionStatus, error) {
	httpReq, err := http.NewRequest(http.MethodGet, c.baseURL+"/v2/"+orderID+"/status", nil)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.serverKey, "")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status poll failed: %s", resp.Status)
	}

	var out TransactionStatus
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.OrderID == "" {
		out.OrderID = orderID
	}
	return &out, nil
}

// VerifySignature checks signature_key = sha512(order_id+status_code+gross_amount+serverKey).
func (c *httpClient) VerifySignature(orderID, statusCode, grossAmount, signatureKey string) bool {
	return VerifySignature(c.serverKey, orderID, statusCode, grossAmount, signatureKey)
}

// VerifySignature is exported separately so webhook tests can compute
// signatures without an HTTP client.
func VerifySignature(serverKey, orderID, statusCode, grossAmount, signatureKey string) bool {
	expected := Signature(serverKey, orderID, statusCode, grossAmount)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureKey)) == 1
}

// Signature computes the hex sha512 digest of order_id+status_code+gross_amount+serverKey.
func Signature(serverKey, orderID, statusCode, grossAmount string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}
