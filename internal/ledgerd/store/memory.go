package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mybank/mybank/internal/money"
)

type memoryStore struct {
	mu           sync.RWMutex
	users        map[int64]User
	transactions []Transaction
}

// NewMemory builds an in-memory store for tests and single-process dev runs.
func NewMemory() Store {
	return &memoryStore{users: make(map[int64]User)}
}

func (s *memoryStore) CreateUser(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.ID]; exists {
		return errors.New("user exists")
	}
	s.users[user.ID] = user
	return nil
}

func (s *memoryStore) GetUser(_ context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (s *memoryStore) Transfer(_ context.Context, senderID, receiverID, accountNumber int64, amount money.Amount) (money.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.users[senderID]
	if !ok {
		return 0, ErrUserNotFound
	}
	receiver, ok := s.users[receiverID]
	if !ok {
		return 0, ErrUserNotFound
	}
	if receiver.AccountNumber != accountNumber {
		return sender.Balance, ErrAccountMismatch
	}

	if senderID == receiverID {
		if sender.Balance+amount < 0 {
			return sender.Balance, ErrInsufficientFunds
		}
		sender.Balance += amount
		s.users[senderID] = sender
		return sender.Balance, nil
	}

	if sender.Balance < amount {
		return sender.Balance, ErrInsufficientFunds
	}

	sender.Balance -= amount
	receiver.Balance += amount
	s.users[senderID] = sender
	s.users[receiverID] = receiver
	return sender.Balance, nil
}

func (s *memoryStore) RecordTransaction(_ context.Context, tx Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.transactions = append(s.transactions, tx)
	return nil
}

func (s *memoryStore) RecentTransactions(_ context.Context, userID int64, limit int) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.involving(userID, 0, 1<<62)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *memoryStore) TransactionsBetween(_ context.Context, userID int64, from, to int64) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.involving(userID, from, to), nil
}

// involving returns the user's transactions within [from, to], newest first.
// Callers must hold at least the read lock.
func (s *memoryStore) involving(userID int64, from, to int64) []Transaction {
	var matches []Transaction
	for _, tx := range s.transactions {
		if tx.SenderID != userID && tx.ReceiverID != userID {
			continue
		}
		if tx.DateTimeStamp < from || tx.DateTimeStamp > to {
			continue
		}
		matches = append(matches, tx)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DateTimeStamp > matches[j].DateTimeStamp
	})
	return matches
}
