package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func loginHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var payload struct {
			UserID   int64  `json:"user_id"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.UserID != 1 || payload.Email != "alice@x.com" || payload.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"status": "error", "message": "Invalid credentials. Please try again."})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Login successful.",
			"data": map[string]any{
				"user_id":         1,
				"name":            "Alice",
				"email":           "alice@x.com",
				"account_number":  11,
				"current_balance": 100,
			},
		})
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(loginHandler(t))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	identity, balance, err := client.Login(context.Background(), 1, "alice@x.com", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if identity.UserID != 1 || identity.Name != "Alice" || identity.AccountNumber != "11" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if balance.Cents() != 10000 {
		t.Fatalf("balance = %d cents, want 10000", balance.Cents())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(loginHandler(t))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, _, err := client.Login(context.Background(), 1, "alice@x.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, _, err := client.Login(context.Background(), 1, "alice@x.com", "hunter2")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}
