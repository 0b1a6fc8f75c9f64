package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mybank/mybank/internal/money"
)

type inMemoryAccount struct {
	balance       money.Amount
	accountNumber int64
	name          string
}

// InMemory is a concurrency-safe stand-in for the ledger service, used by unit
// tests and the client's offline dev mode.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[int64]*inMemoryAccount
	records  map[int64][]Record
}

// NewInMemory creates an empty in-memory ledger service.
func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[int64]*inMemoryAccount),
		records:  make(map[int64][]Record),
	}
}

// SeedAccount registers an account with an opening balance.
func (l *InMemory) SeedAccount(userID, accountNumber int64, name string, balance money.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[userID] = &inMemoryAccount{balance: balance, accountNumber: accountNumber, name: name}
}

// SeedRecords replaces the stored transaction history for a user.
func (l *InMemory) SeedRecords(userID int64, records []Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[userID] = append([]Record(nil), records...)
}

// SubmitTransfer applies the transfer against the seeded accounts, mirroring
// the remote service's checks: sender exists and has funds, receiver exists,
// account number matches.
func (l *InMemory) SubmitTransfer(_ context.Context, req TransferRequest) (SubmitResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	sender, ok := l.accounts[req.SenderID]
	if !ok {
		return SubmitResult{Status: "error", Message: "Sender not found."}, fmt.Errorf("%w: sender not found", ErrRejected)
	}
	receiver, ok := l.accounts[req.ReceiverID]
	if !ok {
		return SubmitResult{Status: "error", Message: "Receiver not found."}, fmt.Errorf("%w: receiver not found", ErrRejected)
	}
	if receiver.accountNumber != req.AccountNumber {
		return SubmitResult{Status: "error", Message: "Receiver's account number does not match."}, fmt.Errorf("%w: account mismatch", ErrRejected)
	}
	if sender.balance < req.Amount {
		current := sender.balance
		return SubmitResult{Status: "error", Message: "Insufficient balance.", UpdatedBalance: &current}, fmt.Errorf("%w: insufficient balance", ErrRejected)
	}

	sender.balance -= req.Amount
	receiver.balance += req.Amount

	rec := Record{
		Remarks:       req.Remarks,
		Amount:        req.Amount,
		DateTimeStamp: req.Timestamp,
		Status:        "success",
	}
	l.records[req.SenderID] = append(l.records[req.SenderID], rec)
	l.records[req.ReceiverID] = append(l.records[req.ReceiverID], rec)

	updated := sender.balance
	return SubmitResult{Status: "success", Message: "Transaction completed successfully.", UpdatedBalance: &updated}, nil
}

// FetchTransactions returns the user's records newest first.
func (l *InMemory) FetchTransactions(_ context.Context, userID int64, _ string) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := append([]Record(nil), l.records[userID]...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DateTimeStamp > records[j].DateTimeStamp
	})
	return records, nil
}
