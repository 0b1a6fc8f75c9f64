// Package store persists the ledger service's users and transaction log.
package store

import (
	"context"
	"errors"

	"github.com/mybank/mybank/internal/money"
)

var (
	// ErrUserNotFound indicates no user exists with the requested id.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientFunds occurs when the sender's balance cannot cover the
	// requested transfer.
	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrAccountMismatch indicates the supplied account number does not belong
	// to the receiver.
	ErrAccountMismatch = errors.New("receiver account number does not match")
)

const (
	// StatusSuccess marks a completed transaction.
	StatusSuccess = "success"
	// StatusFailed marks a rejected attempt; failed attempts are logged too.
	StatusFailed = "failed"
)

// User is an account holder. Balance is authoritative here; clients only cache it.
type User struct {
	ID            int64
	Name          string
	Email         string
	AccountNumber int64
	PasswordHash  []byte
	Balance       money.Amount
}

// Transaction is one entry in the transaction log.
type Transaction struct {
	ID            string
	SenderID      int64
	ReceiverID    int64
	Amount        money.Amount
	Remarks       string
	DateTimeStamp int64
	Status        string
}

// Store is the persistence contract implemented by the Postgres, SQLite and
// in-memory backends.
type Store interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id int64) (User, error)

	// Transfer atomically moves amount from sender to receiver after checking
	// funds and the receiver's account number, returning the sender's updated
	// balance. A transfer to self is a deposit (positive amount) or a
	// withdrawal (negative amount).
	Transfer(ctx context.Context, senderID, receiverID, accountNumber int64, amount money.Amount) (money.Amount, error)

	RecordTransaction(ctx context.Context, tx Transaction) error
	RecentTransactions(ctx context.Context, userID int64, limit int) ([]Transaction, error)
	TransactionsBetween(ctx context.Context, userID int64, from, to int64) ([]Transaction, error)
}
