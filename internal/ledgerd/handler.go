// Package ledgerd implements the ledger service: the system of record for
// balances and transactions that the banking client talks to.
package ledgerd

import (
	"bytes"
	"encoding/csv"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/ledgerd/store"
)

const recentTransactionLimit = 10

// Response is the envelope for login and error answers.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Handler exposes the ledger service's HTTP endpoints.
type Handler struct {
	store    store.Store
	notifier Notifier
	logger   *slog.Logger
}

// NewHandler constructs the API handler.
func NewHandler(st store.Store, notifier Notifier, logger *slog.Logger) *Handler {
	return &Handler{store: st, notifier: notifier, logger: logger}
}

type loginRequest struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns the identity plus opening balance.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(Response{Status: "error", Message: "Failed to parse request body."})
	}
	if req.UserID == 0 || req.Email == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(Response{Status: "error", Message: "Missing required fields (user_id, email, password)."})
	}

	user, err := h.store.GetUser(c.UserContext(), req.UserID)
	if err != nil {
		return c.Status(http.StatusUnauthorized).JSON(Response{Status: "error", Message: "Invalid credentials. Please try again."})
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password)); err != nil {
		return c.Status(http.StatusUnauthorized).JSON(Response{Status: "error", Message: "Invalid credentials. Please try again."})
	}
	if user.Email != req.Email {
		return c.Status(http.StatusUnauthorized).JSON(Response{Status: "error", Message: "Invalid credentials. Please try again."})
	}

	return c.Status(http.StatusOK).JSON(Response{
		Status:  "success",
		Message: "Login successful.",
		Data: fiber.Map{
			"user_id":         user.ID,
			"name":            user.Name,
			"email":           user.Email,
			"account_number":  user.AccountNumber,
			"current_balance": user.Balance,
		},
	})
}

// Transfer applies a money transfer. Failed attempts are logged to the
// transaction history as well, matching the service's long-standing behavior.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req ledger.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ledger.SubmitResult{Status: "error", Message: "Failed to parse JSON."})
	}
	if req.Amount == 0 {
		return c.Status(http.StatusBadRequest).JSON(ledger.SubmitResult{Status: "error", Message: "Amount is required."})
	}

	ctx := c.UserContext()
	updated, err := h.store.Transfer(ctx, req.SenderID, req.ReceiverID, req.AccountNumber, req.Amount)
	if err != nil {
		h.recordAttempt(c, req, store.StatusFailed)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			return c.Status(http.StatusNotFound).JSON(ledger.SubmitResult{Status: "error", Message: "Sender or receiver not found."})
		case errors.Is(err, store.ErrInsufficientFunds):
			return c.Status(http.StatusBadRequest).JSON(ledger.SubmitResult{Status: "error", Message: "Insufficient balance.", UpdatedBalance: &updated})
		case errors.Is(err, store.ErrAccountMismatch):
			return c.Status(http.StatusBadRequest).JSON(ledger.SubmitResult{Status: "error", Message: "Receiver's account number does not match."})
		default:
			h.logger.Error("transfer failed", "sender_id", req.SenderID, "error", err)
			return c.Status(http.StatusInternalServerError).JSON(ledger.SubmitResult{Status: "error", Message: "Failed to complete transaction."})
		}
	}

	h.recordAttempt(c, req, store.StatusSuccess)

	_ = h.notifier.TransferCompleted(ctx, TransferEvent{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
		Remarks:    req.Remarks,
	})

	return c.Status(http.StatusOK).JSON(ledger.SubmitResult{
		Status:         "success",
		Message:        "Transaction completed successfully.",
		UpdatedBalance: &updated,
	})
}

func (h *Handler) recordAttempt(c *fiber.Ctx, req ledger.TransferRequest, status string) {
	timestamp := req.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().Unix()
	}
	err := h.store.RecordTransaction(c.UserContext(), store.Transaction{
		SenderID:      req.SenderID,
		ReceiverID:    req.ReceiverID,
		Amount:        req.Amount,
		Remarks:       req.Remarks,
		DateTimeStamp: timestamp,
		Status:        status,
	})
	if err != nil {
		h.logger.Error("record transaction", "sender_id", req.SenderID, "status", status, "error", err)
	}
}

// Transactions returns the caller's ten most recent transactions, newest first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return c.Status(http.StatusBadRequest).JSON(Response{Status: "error", Message: "user_id is required"})
	}

	transactions, err := h.store.RecentTransactions(c.UserContext(), userID, recentTransactionLimit)
	if err != nil {
		h.logger.Error("fetch transactions", "user_id", userID, "error", err)
		return c.Status(http.StatusInternalServerError).JSON(Response{Status: "error", Message: "Failed to fetch transactions."})
	}

	records := make([]ledger.Record, 0, len(transactions))
	for _, tx := range transactions {
		records = append(records, ledger.Record{
			Remarks:       tx.Remarks,
			Amount:        tx.Amount,
			DateTimeStamp: tx.DateTimeStamp,
			Status:        tx.Status,
		})
	}

	return c.Status(http.StatusOK).JSON(records)
}

// Statement streams the user's transactions for one calendar month as a CSV
// attachment.
func (h *Handler) Statement(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "user_id is required")
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		return fiber.NewError(http.StatusBadRequest, "invalid month provided")
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 0 {
		return fiber.NewError(http.StatusBadRequest, "invalid year provided")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	transactions, err := h.store.TransactionsBetween(c.UserContext(), userID, start.Unix(), end.Unix())
	if err != nil {
		h.logger.Error("fetch statement", "user_id", userID, "error", err)
		return fiber.NewError(http.StatusInternalServerError, "failed to fetch transactions")
	}
	if len(transactions) == 0 {
		return c.Status(http.StatusNotFound).JSON(Response{Status: "error", Message: "No transactions found for the specified criteria"})
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write([]string{"Sender ID", "Receiver ID", "Amount", "Remarks", "Date", "Status"}); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to write statement")
	}
	for _, tx := range transactions {
		row := []string{
			strconv.FormatInt(tx.SenderID, 10),
			strconv.FormatInt(tx.ReceiverID, 10),
			tx.Amount.String(),
			tx.Remarks,
			time.Unix(tx.DateTimeStamp, 0).UTC().Format("02 Jan 2006"),
			tx.Status,
		}
		if err := writer.Write(row); err != nil {
			return fiber.NewError(http.StatusInternalServerError, "failed to write statement")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to write statement")
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename=statement.csv`)
	c.Set(fiber.HeaderContentType, "text/csv")
	return c.Status(http.StatusOK).Send(buf.Bytes())
}
