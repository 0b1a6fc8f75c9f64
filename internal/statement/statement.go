// Package statement downloads monthly account statements from the ledger
// service. It sits outside the transfer pipeline: a statement is a read-only
// report and never touches session state.
package statement

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNoTransactions indicates the requested month has nothing to report.
var ErrNoTransactions = errors.New("no transactions for the requested month")

// Client fetches CSV statements.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a statement client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

// Download streams the user's statement for the given month into w.
func (c *Client) Download(ctx context.Context, userID int64, month, year int, w io.Writer) error {
	query := url.Values{}
	query.Set("user_id", strconv.FormatInt(userID, 10))
	query.Set("month", strconv.Itoa(month))
	query.Set("year", strconv.Itoa(year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/statements?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build statement request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("statement request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ErrNoTransactions
	default:
		return fmt.Errorf("statement download failed: http %d", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("write statement: %w", err)
	}
	return nil
}
