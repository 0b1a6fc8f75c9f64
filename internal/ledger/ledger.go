package ledger

import (
	"context"
	"errors"

	"github.com/mybank/mybank/internal/money"
)

var (
	// ErrRejected indicates the ledger service answered with a non-success
	// status. The pipeline treats it exactly like a transport failure.
	ErrRejected = errors.New("transfer rejected by ledger service")

	// ErrUnavailable indicates the ledger service could not be reached.
	ErrUnavailable = errors.New("ledger service unavailable")
)

// Record is a read-only copy of a ledger transaction. The client replaces its
// cached list wholesale on every fetch and never patches it incrementally.
type Record struct {
	Remarks       string       `json:"remarks"`
	Amount        money.Amount `json:"amount"`
	DateTimeStamp int64        `json:"dateTimeStamp,omitempty"`
	Date          string       `json:"date,omitempty"`
	Status        string       `json:"status"`
}

// TransferRequest is the wire payload for a money transfer, derived
// deterministically from the draft and the sender identity at submission time.
type TransferRequest struct {
	SenderID      int64        `json:"sender_id"`
	ReceiverID    int64        `json:"receiver_id"`
	AccountNumber int64        `json:"account_number"`
	Amount        money.Amount `json:"amount"`
	Remarks       string       `json:"remarks"`
	Timestamp     int64        `json:"dateTimeStamp"`
	ClientTxID    string       `json:"-"`
}

// SubmitResult is the ledger service's answer to a transfer submission.
// UpdatedBalance is a pointer so a success payload missing the field can be
// told apart from a genuine zero balance.
type SubmitResult struct {
	Status         string        `json:"status"`
	Message        string        `json:"message"`
	UpdatedBalance *money.Amount `json:"updated_balance"`
}

// Client is the contract the core consumes from the remote ledger service.
type Client interface {
	SubmitTransfer(ctx context.Context, req TransferRequest) (SubmitResult, error)
	FetchTransactions(ctx context.Context, userID int64, email string) ([]Record, error)
}

// Placeholder returns the fixed fallback list shown when the transaction fetch
// fails, so the dashboard is never left empty.
func Placeholder() []Record {
	return []Record{
		{Date: "2024-01-01", Remarks: "Deposit", Amount: money.FromCents(50000), Status: "completed"},
		{Date: "2024-01-02", Remarks: "Withdrawal", Amount: money.FromCents(10000), Status: "completed"},
	}
}
