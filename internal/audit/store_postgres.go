package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists audit entries in the audit_entries table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO audit_entries (id, ts, actor, operation, request_payload, result_code, error_detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Timestamp,
		entry.Actor,
		entry.Operation,
		entry.RequestPayload,
		entry.ResultCode,
		entry.ErrorDetail,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByActor(ctx context.Context, actor string) ([]Entry, error) {
	query := `
		SELECT id, ts, actor, operation, request_payload, result_code, error_detail
		FROM audit_entries
		WHERE actor = $1
		ORDER BY ts
	`
	rows, err := s.db.QueryContext(ctx, query, actor)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Actor, &e.Operation, &e.RequestPayload, &e.ResultCode, &e.ErrorDetail); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
