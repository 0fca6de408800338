package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payrail/pkg/sentinel"
)

// PostgresStore persists transactions in the transactions table. The unique
// constraint on transaction_id provides insert-if-absent: ON CONFLICT DO
// NOTHING plus a rows-affected check turns a duplicate into
// sentinel.ErrConflict without a read-modify-write window.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, txn Transaction) error {
	query := `
		INSERT INTO transactions (transaction_id, student_id, amount, scheduled_date, status, response_detail, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (transaction_id) DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, query,
		txn.TransactionID,
		txn.StudentID,
		txn.Amount,
		txn.ScheduledDate,
		string(txn.Status),
		txn.ResponseDetail,
		txn.CreatedAt,
		txn.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) FindByTransactionID(ctx context.Context, transactionID string) (Transaction, error) {
	query := `
		SELECT transaction_id, student_id, amount, scheduled_date, status, response_detail, created_at, updated_at
		FROM transactions
		WHERE transaction_id = $1
	`
	row := s.db.QueryRowContext(ctx, query, transactionID)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Transaction{}, sentinel.ErrNotFound
		}
		return Transaction{}, fmt.Errorf("find transaction: %w", err)
	}
	return txn, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, transactionID string, status Status, responseDetail *string, now time.Time) error {
	query := `
		UPDATE transactions
		SET status = $2, response_detail = $3, updated_at = GREATEST(updated_at, $4)
		WHERE transaction_id = $1
	`
	res, err := s.db.ExecContext(ctx, query, transactionID, string(status), responseDetail, now)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]Transaction, error) {
	query := `
		SELECT transaction_id, student_id, amount, scheduled_date, status, response_detail, created_at, updated_at
		FROM transactions
		WHERE status = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var txn Transaction
	var status string
	err := row.Scan(
		&txn.TransactionID,
		&txn.StudentID,
		&txn.Amount,
		&txn.ScheduledDate,
		&status,
		&txn.ResponseDetail,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err != nil {
		return Transaction{}, err
	}
	txn.Status = Status(status)
	return txn, nil
}
