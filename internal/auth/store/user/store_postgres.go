package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"familytree/internal/auth/models"
	id "familytree/pkg/domain"
	"familytree/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresUserStore persists accounts in the users table.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, password_hash, refresh_token_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.UUID(u.ID), u.Name, u.PasswordHash, u.RefreshTokenHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, refresh_token_hash, created_at
		FROM users WHERE id = $1
	`, uuid.UUID(userID))
	return scanUser(row)
}

func (s *PostgresUserStore) FindByName(ctx context.Context, name string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, password_hash, refresh_token_hash, created_at
		FROM users WHERE lower(name) = lower($1)
	`, name)
	return scanUser(row)
}

func (s *PostgresUserStore) SetRefreshTokenHash(ctx context.Context, userID id.UserID, hash *string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET refresh_token_hash = $2 WHERE id = $1`, uuid.UUID(userID), hash)
	if err != nil {
		return fmt.Errorf("set refresh token hash: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set refresh token hash: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u       models.User
		userID  uuid.UUID
		refresh sql.NullString
	)
	if err := row.Scan(&userID, &u.Name, &u.PasswordHash, &refresh, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(userID)
	if refresh.Valid {
		u.RefreshTokenHash = &refresh.String
	}
	return &u, nil
}
