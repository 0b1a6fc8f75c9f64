package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mybank/mybank/internal/money"
)

// SQLiteStore keeps the ledger in a single SQLite file, for dev setups where
// running Postgres is not worth the trouble.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite constructs a SQLite-backed store and runs its migrations.
func NewSQLite(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			account_number INTEGER NOT NULL,
			password_hash BLOB NOT NULL,
			current_balance INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			sender_id INTEGER NOT NULL,
			receiver_id INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			remarks TEXT NOT NULL DEFAULT '',
			date_time_stamp INTEGER NOT NULL,
			status TEXT NOT NULL
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (user_id, name, email, account_number, password_hash, current_balance)
		VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.AccountNumber, user.PasswordHash, user.Balance.Cents())
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id, name, email, account_number, password_hash, current_balance
		FROM users WHERE user_id = ?`, id)

	var (
		user  User
		cents int64
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.AccountNumber, &user.PasswordHash, &cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	user.Balance = money.FromCents(cents)
	return user, nil
}

func (s *SQLiteStore) Transfer(ctx context.Context, senderID, receiverID, accountNumber int64, amount money.Amount) (money.Amount, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() // nolint:errcheck

	var senderBalance int64
	if err := tx.QueryRowContext(ctx, `SELECT current_balance FROM users WHERE user_id = ?`, senderID).Scan(&senderBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	var (
		receiverAccount int64
		receiverBalance int64
	)
	if err := tx.QueryRowContext(ctx, `SELECT account_number, current_balance FROM users WHERE user_id = ?`, receiverID).Scan(&receiverAccount, &receiverBalance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		if _, err := tx.ExecContext(ctx, `UPDATE users SET current_balance = ? WHERE user_id = ?`, updated, senderID); err != nil {
			return money.FromCents(senderBalance), err
		}
		if err := tx.Commit(); err != nil {
			return money.FromCents(senderBalance), err
		}
		return money.FromCents(updated), nil
	}

	if senderBalance < amount.Cents() {
		return money.FromCents(senderBalance), ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET current_balance = current_balance - ? WHERE user_id = ?`, amount.Cents(), senderID); err != nil {
		return money.FromCents(senderBalance), err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET current_balance = current_balance + ? WHERE user_id = ?`, amount.Cents(), receiverID); err != nil {
		return money.FromCents(senderBalance), err
	}

	if err := tx.Commit(); err != nil {
		return money.FromCents(senderBalance), err
	}
	return money.FromCents(senderBalance - amount.Cents()), nil
}

func (s *SQLiteStore) RecordTransaction(ctx context.Context, record Transaction) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO transactions (id, sender_id, receiver_id, amount, remarks, date_time_stamp, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.SenderID, record.ReceiverID, record.Amount.Cents(), record.Remarks, record.DateTimeStamp, record.Status)
	return err
}

func (s *SQLiteStore) RecentTransactions(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, sender_id, receiver_id, amount, remarks, date_time_stamp, status
		FROM transactions
		WHERE sender_id = ? OR receiver_id = ?
		ORDER BY date_time_stamp DESC
		LIMIT ?`, userID, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLTransactions(rows)
}

func (s *SQLiteStore) TransactionsBetween(ctx context.Context, userID int64, from, to int64) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, sender_id, receiver_id, amount, remarks, date_time_stamp, status
		FROM transactions
		WHERE (sender_id = ? OR receiver_id = ?)
		  AND date_time_stamp BETWEEN ? AND ?
		ORDER BY date_time_stamp DESC`, userID, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSQLTransactions(rows)
}

func scanSQLTransactions(rows *sql.Rows) ([]Transaction, error) {
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
