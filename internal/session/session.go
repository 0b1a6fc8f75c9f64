package session

import (
	"sync"

	"github.com/mybank/mybank/internal/ledger"
	"github.com/mybank/mybank/internal/money"
)

// Identity is the authenticated user. It is immutable for the duration of a
// session and replaced wholesale on login/logout.
type Identity struct {
	UserID        int64
	Name          string
	Email         string
	AccountNumber string
}

// Session holds the authenticated identity, the current balance and the
// last-known transaction list. It is the single source of truth for funds
// available and is mutated only by the transfer pipeline and the login flow.
//
// The epoch increments every time the identity changes. In-flight work captures
// the epoch when it starts and compares before writing back, so a response that
// lands after logout is discarded instead of mutating a fresh session.
type Session struct {
	mu           sync.RWMutex
	identity     Identity
	active       bool
	balance      money.Amount
	transactions []ledger.Record
	epoch        uint64
}

// New returns an empty, unauthenticated session.
func New() *Session {
	return &Session{}
}

// SetIdentity installs a freshly authenticated identity with its opening
// balance, dropping everything held for the previous one.
func (s *Session) SetIdentity(id Identity, balance money.Amount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.identity = id
	s.active = true
	s.balance = balance
	s.transactions = nil
}

// Identity returns the current identity and whether a user is logged in.
func (s *Session) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.active
}

// Balance returns the funds available.
func (s *Session) Balance() money.Amount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// SetBalance replaces the balance with a server-reported value.
func (s *Session) SetBalance(balance money.Amount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = balance
}

// Transactions returns a copy of the cached transaction list.
func (s *Session) Transactions() []ledger.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ledger.Record(nil), s.transactions...)
}

// SetTransactions replaces the cached transaction list wholesale.
func (s *Session) SetTransactions(records []ledger.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append([]ledger.Record(nil), records...)
}

// Clear drops the identity, balance and cached transactions. Bumping the epoch
// invalidates any in-flight draft or pending submission response.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.identity = Identity{}
	s.active = false
	s.balance = 0
	s.transactions = nil
}

// Epoch returns the current identity generation.
func (s *Session) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}
