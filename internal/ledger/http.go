package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const idempotencyKeyHeader = "Idempotency-Key"

// HTTPClient talks to the ledger service over its JSON API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a ledger client against the given base URL. A single
// attempt is made per call; retry policy belongs to the caller.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SubmitTransfer posts the transfer request. A non-2xx answer is returned as
// ErrRejected carrying the service's message; transport problems surface as
// ErrUnavailable. Callers treat both identically.
func (c *HTTPClient) SubmitTransfer(ctx context.Context, req TransferRequest) (SubmitResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("encode transfer request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/transfers", bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("build transfer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.ClientTxID != "" {
		httpReq.Header.Set(idempotencyKeyHeader, req.ClientTxID)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var result SubmitResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || result.Status != "success" {
		if result.Message != "" {
			return result, fmt.Errorf("%w: %s", ErrRejected, result.Message)
		}
		return result, fmt.Errorf("%w: http %d", ErrRejected, resp.StatusCode)
	}

	return result, nil
}

// FetchTransactions retrieves the caller's recent transactions, newest first.
func (c *HTTPClient) FetchTransactions(ctx context.Context, userID int64, email string) ([]Record, error) {
	query := url.Values{}
	query.Set("user_id", strconv.FormatInt(userID, 10))
	if email != "" {
		query.Set("email", email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/transactions?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build transactions request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: http %d", ErrUnavailable, resp.StatusCode)
	}

	var records []Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decode transactions: %v", ErrUnavailable, err)
	}

	return records, nil
}
