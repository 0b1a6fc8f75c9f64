package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mybank/mybank/internal/money"
)

// PostgresStore persists users and the transaction log in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed store.
func NewPostgres(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			account_number BIGINT NOT NULL,
			password_hash BYTEA NOT NULL,
			current_balance BIGINT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id UUID PRIMARY KEY,
			sender_id BIGINT NOT NULL,
			receiver_id BIGINT NOT NULL,
			amount BIGINT NOT NULL,
			remarks TEXT NOT NULL DEFAULT '',
			date_time_stamp BIGINT NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_parties
			ON transactions (sender_id, receiver_id, date_time_stamp DESC)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.Exec(ctx, `INSERT INTO users (user_id, name, email, account_number, password_hash, current_balance)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.AccountNumber, user.PasswordHash, user.Balance.Cents())
	return err
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT user_id, name, email, account_number, password_hash, current_balance
		FROM users WHERE user_id = $1`, id)

	var (
		user  User
		cents int64
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.AccountNumber, &user.PasswordHash, &cents); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	user.Balance = money.FromCents(cents)
	return user, nil
}

// Transfer moves funds inside one database transaction, locking the sender row
// first so concurrent submissions cannot overdraw the account.
func (s *PostgresStore) Transfer(ctx context.Context, senderID, receiverID, accountNumber int64, amount money.Amount) (money.Amount, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var senderBalance int64
	if err := tx.QueryRow(ctx, `SELECT current_balance FROM users WHERE user_id = $1 FOR UPDATE`, senderID).Scan(&senderBalance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	var (
		receiverAccount int64
		receiverBalance int64
	)
	if err := tx.QueryRow(ctx, `SELECT account_number, current_balance FROM users WHERE user_id = $1 FOR UPDATE`, receiverID).Scan(&receiverAccount, &receiverBalance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return money.FromCents(senderBalance), ErrUserNotFound
		}
		return money.FromCents(senderBalance), err
	}
	if receiverAccount != accountNumber {
		return money.FromCents(senderBalance), ErrAccountMismatch
	}

	if senderID == receiverID {
		updated := senderBalance + amount.Cents()
		if updated < 0 {
			return money.FromCents(senderBalance), ErrInsufficientFunds
		}
		if _, err := tx.Exec(ctx, `UPDATE users SET current_balance = $1 WHERE user_id = $2`, updated, senderID); err != nil {
			return money.FromCents(senderBalance), err
		}
		if err := tx.Commit(ctx); err != nil {
			return money.FromCents(senderBalance), err
		}
		return money.FromCents(updated), nil
	}

	if senderBalance < amount.Cents() {
		return money.FromCents(senderBalance), ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET current_balance = current_balance - $1 WHERE user_id = $2`, amount.Cents(), senderID); err != nil {
		return money.FromCents(senderBalance), err
	}
	if _, err := tx.Exec(ctx, `UPDATE users SET current_balance = current_balance + $1 WHERE user_id = $2`, amount.Cents(), receiverID); err != nil {
		return money.FromCents(senderBalance), err
	}

	if err := tx.Commit(ctx); err != nil {
		return money.FromCents(senderBalance), err
	}
	return money.FromCents(senderBalance - amount.Cents()), nil
}

func (s *PostgresStore) RecordTransaction(ctx context.Context, record Transaction) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := s.db.Exec(ctx, `INSERT INTO transactions (id, sender_id, receiver_id, amount, remarks, date_time_stamp, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.SenderID, record.ReceiverID, record.Amount.Cents(), record.Remarks, record.DateTimeStamp, record.Status)
	return err
}

func (s *PostgresStore) RecentTransactions(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT id, sender_id, receiver_id, amount, remarks, date_time_stamp, status
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY date_time_stamp DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (s *PostgresStore) TransactionsBetween(ctx context.Context, userID int64, from, to int64) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT id, sender_id, receiver_id, amount, remarks, date_time_stamp, status
		FROM transactions
		WHERE (sender_id = $1 OR receiver_id = $1)
		  AND date_time_stamp BETWEEN $2 AND $3
		ORDER BY date_time_stamp DESC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	var transactions []Transaction
	for rows.Next() {
		var (
			tx    Transaction
			cents int64
		)
		if err := rows.Scan(&tx.ID, &tx.SenderID, &tx.ReceiverID, &cents, &tx.Remarks, &tx.DateTimeStamp, &tx.Status); err != nil {
			return nil, err
		}
		tx.Amount = money.FromCents(cents)
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}
