package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client calls the wallet gateway's disbursement API. It implements the
// payroll.PaymentExecutor contract: one call, one funds movement.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents a wallet gateway error
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wallet API error [%d] %s: %s", e.StatusCode, e.ErrorCode, e.Message)
}

type disbursementRequest struct {
	ExternalID  string          `json:"external_id"`
	WalletID    string          `json:"wallet_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type disbursementResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Disburse sends netAmount to the employee's wallet and returns the gateway
// transaction id. Timeouts and gateway rejections surface as ordinary errors;
// retry policy is the gateway's concern, not ours.
func (c *Client) Disburse(ctx context.Context, employeeID string, amount decimal.Decimal, walletID string) (string, error) {
	payload := disbursementRequest{
		ExternalID:  fmt.Sprintf("payroll-%s-%s", employeeID, uuid.NewString()),
		WalletID:    walletID,
		Amount:      amount,
		Description: "payroll disbursement",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode disbursement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/disbursements", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build disbursement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", payload.ExternalID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("disbursement request failed: %w", err)
	}
	defer resp.Body.Close()

	var result disbursementResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode disbursement response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			ErrorCode:  result.ErrorCode,
			Message:    result.Message,
		}
	}

	return result.ID, nil
}
