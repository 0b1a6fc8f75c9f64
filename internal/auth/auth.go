// Package auth performs the client-side login exchange. It touches the
// session only through SetIdentity and Clear; everything else about the
// session belongs to the transfer pipeline.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mybank/mybank/internal/money"
	"github.com/mybank/mybank/internal/session"
)

// ErrInvalidCredentials indicates the service rejected the login.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// Client authenticates users against the ledger service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a login client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

type loginPayload struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		UserID         int64        `json:"user_id"`
		Name           string       `json:"name"`
		Email          string       `json:"email"`
		AccountNumber  int64        `json:"account_number"`
		CurrentBalance money.Amount `json:"current_balance"`
	} `json:"data"`
}

// Login exchanges credentials for the authenticated identity and its opening
// balance. The caller installs the result with session.SetIdentity.
func (c *Client) Login(ctx context.Context, userID int64, email, password string) (session.Identity, money.Amount, error) {
	body, err := json.Marshal(loginPayload{UserID: userID, Email: email, Password: password})
	if err != nil {
		return session.Identity{}, 0, fmt.Errorf("encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/login", bytes.NewReader(body))
	if err != nil {
		return session.Identity{}, 0, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return session.Identity{}, 0, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusTooManyRequests {
		return session.Identity{}, 0, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return session.Identity{}, 0, fmt.Errorf("login failed: http %d", resp.StatusCode)
	}

	var parsed loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return session.Identity{}, 0, fmt.Errorf("decode login response: %w", err)
	}
	if parsed.Status != "success" {
		return session.Identity{}, 0, ErrInvalidCredentials
	}

	identity := session.Identity{
		UserID:        parsed.Data.UserID,
		Name:          parsed.Data.Name,
		Email:         parsed.Data.Email,
		AccountNumber: fmt.Sprintf("%d", parsed.Data.AccountNumber),
	}
	return identity, parsed.Data.CurrentBalance, nil
}
