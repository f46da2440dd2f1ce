package auth

import (
	"context"
	"database/sql"
	"errors"
)

type Account struct {
	Email        string
	PasswordHash string
	Role         string
	IsDisabled   bool
	CreatedAt    string
}

type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, a *Account) error
	Delete(ctx context.Context, email string) (int64, error)
	Count(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, email, hash string) (int64, error)
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) AccountStore {
	return &Store{db: db}
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*Account, error) {
	const q = `
SELECT email, password_hash, role, is_disabled, created_at
FROM auth_accounts
WHERE email = ?
LIMIT 1
`
	var a Account
	var isDisabledInt int
	err := s.db.QueryRowContext(ctx, q, email).Scan(
		&a.Email,
		&a.PasswordHash,
		&a.Role,
		&isDisabledInt,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if isDisabledInt != 0 {
		a.IsDisabled = true
	}
	return &a, nil
}

func (s *Store) Create(ctx context.Context, a *Account) error {
	const q = `
INSERT INTO auth_accounts (email, password_hash, role, is_disabled, created_at)
VALUES (?, ?, ?, 0, NOW(6))
`
	_, err := s.db.ExecContext(ctx, q, a.Email, a.PasswordHash, a.Role)
	return err
}

func (s *Store) Delete(ctx context.Context, email string) (int64, error) {
	const q = `DELETE FROM auth_accounts WHERE email = ?`
	res, err := s.db.ExecContext(ctx, q, email)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM auth_accounts`).Scan(&n)
	return n, err
}

func (s *Store) UpdatePassword(ctx context.Context, email, hash string) (int64, error) {
	const q = `UPDATE auth_accounts SET password_hash = ? WHERE email = ?`
	res, err := s.db.ExecContext(ctx, q, hash, email)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
