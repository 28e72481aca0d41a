package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/financas-app/financas-backend/internal/model"
)

// AuthRepo persists session rows in the `auths` table. user_id carries
// a UNIQUE key, so Upsert is a single atomic insert-or-replace and two
// concurrent logins can never leave a user with two sessions.
type AuthRepo struct{ DB *sql.DB }

func NewAuthRepo(db *sql.DB) *AuthRepo { return &AuthRepo{DB: db} }

// Upsert installs a fresh token for the user, overwriting any previous
// session in the same statement.
func (r *AuthRepo) Upsert(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO auths (user_id, token, expires_at, last_access)
		 VALUES (?,?,?,UTC_TIMESTAMP())
		 ON DUPLICATE KEY UPDATE token=VALUES(token), expires_at=VALUES(expires_at), last_access=UTC_TIMESTAMP()`,
		userID, token, expiresAt)
	return err
}

// GetByToken resolves a session by its opaque token string.
func (r *AuthRepo) GetByToken(ctx context.Context, token string) (*model.Auth, error) {
	var a model.Auth
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, expires_at, last_access, created_at FROM auths WHERE token=? LIMIT 1",
		token).Scan(&a.ID, &a.UserID, &a.Token, &a.ExpiresAt, &a.LastAccess, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuthNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByUserID resolves the single session row of a user.
func (r *AuthRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Auth, error) {
	var a model.Auth
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token, expires_at, last_access, created_at FROM auths WHERE user_id=? LIMIT 1",
		userID).Scan(&a.ID, &a.UserID, &a.Token, &a.ExpiresAt, &a.LastAccess, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAuthNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// TouchLastAccess refreshes the heartbeat timestamp of a valid session.
func (r *AuthRepo) TouchLastAccess(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE auths SET last_access=UTC_TIMESTAMP() WHERE id=?", id)
	return err
}

// DeleteByUserID removes the session row on logout. A missing row
// already means "not logged in", so there is no blanked-token state to
// reason about.
func (r *AuthRepo) DeleteByUserID(ctx context.Context, userID uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM auths WHERE user_id=?", userID)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrAuthNotFound)
}

// DeleteByToken removes a session detected as expired.
func (r *AuthRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM auths WHERE token=?", token)
	return err
}
