package ledgerd

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mybank/mybank/internal/config"
	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/ledgerd/store"
	"github.com/mybank/mybank/internal/logging"
	"github.com/mybank/mybank/internal/money"
)

func testServer(t *testing.T) (*Server, store.Store) {
	t.Helper()

	st := store.NewMemory()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := []store.User{
		{ID: 1, Name: "Alice", Email: "alice@x.com", AccountNumber: 11, PasswordHash: hash, Balance: money.FromCents(10000)},
		{ID: 7, Name: "Bob", Email: "bob@x.com", AccountNumber: 42, PasswordHash: hash, Balance: money.FromCents(0)},
	}
	for _, user := range users {
		if err := st.CreateUser(ctx, user); err != nil {
			t.Fatalf("seed user %d: %v", user.ID, err)
		}
	}

	cfg := config.Config{AppName: "MyBank", Port: "0"}
	return New(cfg, st, nil, logging.Discard()), st
}

func postJSON(t *testing.T, srv *Server, path string, payload any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp, raw
}

func getPath(t *testing.T, srv *Server, path string) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := srv.App().Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp, raw
}

func TestLoginSuccess(t *testing.T) {
	srv, _ := testServer(t)

	resp, raw := postJSON(t, srv, "/api/v1/login", map[string]any{
		"user_id": 1, "email": "alice@x.com", "password": "hunter2",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			UserID         int64        `json:"user_id"`
			Name           string       `json:"name"`
			AccountNumber  int64        `json:"account_number"`
			CurrentBalance money.Amount `json:"current_balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Status != "success" || envelope.Data.Name != "Alice" || envelope.Data.AccountNumber != 11 {
		t.Fatalf("unexpected envelope: %s", raw)
	}
	if envelope.Data.CurrentBalance.Cents() != 10000 {
		t.Fatalf("balance = %d cents, want 10000", envelope.Data.CurrentBalance.Cents())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := testServer(t)

	cases := []map[string]any{
		{"user_id": 1, "email": "alice@x.com", "password": "wrong"},
		{"user_id": 1, "email": "eve@x.com", "password": "hunter2"},
		{"user_id": 99, "email": "alice@x.com", "password": "hunter2"},
	}
	for _, payload := range cases {
		resp, raw := postJSON(t, srv, "/api/v1/login", payload, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("payload %v: status = %d, body %s", payload, resp.StatusCode, raw)
		}
	}
}

func TestTransferSuccess(t *testing.T) {
	srv, st := testServer(t)

	resp, raw := postJSON(t, srv, "/api/v1/transfers", ledger.TransferRequest{
		SenderID:      1,
		ReceiverID:    7,
		AccountNumber: 42,
		Amount:        money.FromCents(5000),
		Remarks:       "Transfer of $50.00 from Alice to Bob",
		Timestamp:     time.Now().Unix(),
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}

	var result ledger.SubmitResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != "success" || result.UpdatedBalance == nil || result.UpdatedBalance.Cents() != 5000 {
		t.Fatalf("unexpected result: %s", raw)
	}

	recent, err := st.RecentTransactions(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Status != store.StatusSuccess {
		t.Fatalf("unexpected history: %+v", recent)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	srv, st := testServer(t)

	resp, raw := postJSON(t, srv, "/api/v1/transfers", ledger.TransferRequest{
		SenderID:      1,
		ReceiverID:    7,
		AccountNumber: 42,
		Amount:        money.FromCents(20000),
		Remarks:       "Transfer of $200.00 from Alice to Bob",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}

	var result ledger.SubmitResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Status != "error" || !strings.Contains(result.Message, "Insufficient") {
		t.Fatalf("unexpected result: %s", raw)
	}
	if result.UpdatedBalance == nil || result.UpdatedBalance.Cents() != 10000 {
		t.Fatalf("rejection must echo the untouched balance, got %s", raw)
	}

	// The failed attempt still lands in the history.
	recent, err := st.RecentTransactions(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Status != store.StatusFailed {
		t.Fatalf("unexpected history: %+v", recent)
	}
}

func TestTransferAccountMismatch(t *testing.T) {
	srv, _ := testServer(t)

	resp, raw := postJSON(t, srv, "/api/v1/transfers", ledger.TransferRequest{
		SenderID:      1,
		ReceiverID:    7,
		AccountNumber: 99,
		Amount:        money.FromCents(100),
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}
	var result ledger.SubmitResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(result.Message, "account number") {
		t.Fatalf("unexpected message: %q", result.Message)
	}
}

func TestTransactionsEndpoint(t *testing.T) {
	srv, st := testServer(t)
	ctx := context.Background()

	for i := int64(0); i < 12; i++ {
		err := st.RecordTransaction(ctx, store.Transaction{
			SenderID:      1,
			ReceiverID:    7,
			Amount:        money.FromCents(100),
			Remarks:       "Transfer of $1.00 from Alice to Bob",
			DateTimeStamp: 1000 + i,
			Status:        store.StatusSuccess,
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	resp, raw := getPath(t, srv, "/api/v1/transactions?user_id=1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}

	var records []ledger.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("got %d records, want 10", len(records))
	}
	if records[0].DateTimeStamp != 1011 {
		t.Fatalf("first record timestamp = %d, want newest 1011", records[0].DateTimeStamp)
	}
}

func TestStatementCSV(t *testing.T) {
	srv, st := testServer(t)

	march := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	err := st.RecordTransaction(context.Background(), store.Transaction{
		SenderID:      1,
		ReceiverID:    7,
		Amount:        money.FromCents(5000),
		Remarks:       "Transfer of $50.00 from Alice to Bob",
		DateTimeStamp: march.Unix(),
		Status:        store.StatusSuccess,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	resp, raw := getPath(t, srv, "/api/v1/statements?user_id=1&month=3&year=2024")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "attachment") {
		t.Fatalf("Content-Disposition = %q", got)
	}

	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header + 1", len(rows))
	}
	if rows[0][0] != "Sender ID" || rows[0][5] != "Status" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][2] != "50.00" || rows[1][4] != "15 Mar 2024" {
		t.Fatalf("unexpected row: %v", rows[1])
	}
}

func TestStatementValidation(t *testing.T) {
	srv, _ := testServer(t)

	badQueries := []string{
		"/api/v1/statements?user_id=1&month=13&year=2024",
		"/api/v1/statements?user_id=1&month=0&year=2024",
		"/api/v1/statements?user_id=1&month=abc&year=2024",
		"/api/v1/statements?month=3&year=2024",
	}
	for _, path := range badQueries {
		resp, _ := getPath(t, srv, path)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", path, resp.StatusCode)
		}
	}

	// No transactions in the window.
	resp, _ := getPath(t, srv, "/api/v1/statements?user_id=1&month=1&year=2020")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("empty month: status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t)

	resp, raw := getPath(t, srv, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var payload map[string]string
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected payload: %s", raw)
	}
}
