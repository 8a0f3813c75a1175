package backupcode

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists backup code hashes in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed backup code store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Replace swaps the user's code set in a single transaction so a crash can
// never leave a mix of old and new codes.
func (s *PostgresStore) Replace(ctx context.Context, userID uuid.UUID, hashes []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace backup codes: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM backup_codes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete old backup codes: %w", err)
	}
	for _, hash := range hashes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO backup_codes (user_id, code_hash) VALUES ($1, $2)`,
			userID, hash,
		)
		if err != nil {
			return fmt.Errorf("insert backup code: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) ListUnused(ctx context.Context, userID uuid.UUID) ([]StoredCode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code_hash FROM backup_codes WHERE user_id = $1 AND used_at IS NULL ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list backup codes: %w", err)
	}
	defer rows.Close()

	var out []StoredCode
	for rows.Next() {
		var sc StoredCode
		if err := rows.Scan(&sc.ID, &sc.CodeHash); err != nil {
			return nil, fmt.Errorf("scan backup code: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkUsed(ctx context.Context, codeID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE backup_codes SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`,
		codeID,
	)
	if err != nil {
		return fmt.Errorf("mark backup code used: %w", err)
	}
	return nil
}
