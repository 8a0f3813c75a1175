package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	dErrors "idport/pkg/domain-errors"
)

// PostgresStore persists users in PostgreSQL.
// This store is pure I/O; attempt limit policy belongs in the attempter service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed user store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, email, phone, idv_attempts, totp_secret, mfa_enabled, personal_key_issued_at, password_reset_pending, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, phone, totp_secret, mfa_enabled, password_reset_pending)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		u.ID, u.Email, u.Phone, u.TOTPSecret, u.MFAEnabled, u.PasswordResetPending,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) Update(ctx context.Context, u *User) error {
	query := `
		UPDATE users
		SET email = $2, phone = $3, totp_secret = $4, mfa_enabled = $5,
		    personal_key_issued_at = $6, password_reset_pending = $7, updated_at = NOW()
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Phone, u.TOTPSecret, u.MFAEnabled,
		u.PersonalKeyIssuedAt, u.PasswordResetPending,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user rows affected: %w", err)
	}
	if rows == 0 {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return nil
}

// IncrementIdvAttempts atomically increments the attempt counter and returns
// the updated value. A single UPDATE...RETURNING prevents lost updates when
// duplicate submissions race.
func (s *PostgresStore) IncrementIdvAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	query := `
		UPDATE users
		SET idv_attempts = idv_attempts + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING idv_attempts
	`
	var attempts int
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&attempts); err != nil {
		if err == sql.ErrNoRows {
			return 0, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return 0, fmt.Errorf("increment idv attempts: %w", err)
	}
	return attempts, nil
}

func (s *PostgresStore) IdvAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	var attempts int
	err := s.db.QueryRowContext(ctx, `SELECT idv_attempts FROM users WHERE id = $1`, id).Scan(&attempts)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return 0, fmt.Errorf("get idv attempts: %w", err)
	}
	return attempts, nil
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (*User, error) {
	var u User
	var personalKeyIssuedAt sql.NullTime
	err := row.Scan(
		&u.ID, &u.Email, &u.Phone, &u.IdvAttempts, &u.TOTPSecret,
		&u.MFAEnabled, &personalKeyIssuedAt, &u.PasswordResetPending,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	if personalKeyIssuedAt.Valid {
		u.PersonalKeyIssuedAt = &personalKeyIssuedAt.Time
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
