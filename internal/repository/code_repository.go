package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/financas-app/financas-backend/internal/model"
)

// CodeRepo persists verification codes in the `codes` table. user_id
// carries a UNIQUE key: one pending code per user, superseded in place
// by the atomic upsert. created_at is stored explicitly so the resend
// cooldown reads it directly instead of back-deriving issuance time
// from expires_at. All SQL-side timestamps use UTC_TIMESTAMP() so they
// compare cleanly against the UTC values written from Go, regardless of
// the server's time_zone setting.
type CodeRepo struct{ DB *sql.DB }

func NewCodeRepo(db *sql.DB) *CodeRepo { return &CodeRepo{DB: db} }

// Upsert installs a new pending code for the user, replacing any
// previous one in a single statement.
func (r *CodeRepo) Upsert(ctx context.Context, userID uint64, code string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO codes (user_id, code, expires_at, created_at)
		 VALUES (?,?,?,UTC_TIMESTAMP())
		 ON DUPLICATE KEY UPDATE code=VALUES(code), expires_at=VALUES(expires_at), created_at=UTC_TIMESTAMP()`,
		userID, code, expiresAt)
	return err
}

// GetByUserID returns the pending code of a user, if any.
func (r *CodeRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Code, error) {
	var c model.Code
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, code, expires_at, created_at FROM codes WHERE user_id=? LIMIT 1",
		userID).Scan(&c.ID, &c.UserID, &c.Code, &c.ExpiresAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Consume validates and burns a code in one transaction: the row is
// deleted only if it matches user and code and has not expired, and
// the user's verify flag is flipped in the same transaction. The flag
// is therefore never set for a failed match.
func (r *CodeRepo) Consume(ctx context.Context, userID uint64, code string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM codes WHERE user_id=? AND code=? AND expires_at > UTC_TIMESTAMP()",
		userID, code)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCodeNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET verify=1 WHERE id=?", userID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteByUserID discards a user's pending code without consuming it.
func (r *CodeRepo) DeleteByUserID(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM codes WHERE user_id=?", userID)
	return err
}

// DeleteExpiredBefore purges codes whose expiry has passed; used by the
// daily sweeper. Returns the number of rows removed.
func (r *CodeRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM codes WHERE expires_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
