package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/financas-app/financas-backend/internal/model"
)

// UserRepo encapsulates all queries against the `users` table. The
// password hash is produced by the caller; this layer never sees
// plaintext credentials.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, nome, email, senha, avatar, renda_mensal, renda_extra, verify, status, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u      model.User
		avatar sql.NullString
		renda  sql.NullString
		extra  sql.NullString
	)
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.Senha, &avatar, &renda, &extra,
		&u.Verify, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if avatar.Valid {
		u.Avatar = &avatar.String
	}
	u.RendaMensal = parseNullValor(renda)
	u.RendaExtra = parseNullValor(extra)
	return &u, nil
}

func parseNullValor(ns sql.NullString) *model.Valor {
	if !ns.Valid {
		return nil
	}
	v, err := model.ParseValor(ns.String)
	if err != nil {
		return nil
	}
	return &v
}

// Create inserts a user and populates the generated fields. A 1062
// duplicate-key violation on the unique email maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (nome, email, senha, avatar) VALUES (?,?,?,?)",
		u.Nome, u.Email, u.Senha, u.Avatar)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)

	created, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return err
	}
	*u = *created
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// List returns all users ordered by id. The senha column is selected
// only to satisfy the scanner and is blanked before returning.
func (r *UserRepo) List(ctx context.Context) ([]*model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var (
			u      model.User
			avatar sql.NullString
			renda  sql.NullString
			extra  sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Nome, &u.Email, &u.Senha, &avatar, &renda, &extra,
			&u.Verify, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Senha = ""
		if avatar.Valid {
			u.Avatar = &avatar.String
		}
		u.RendaMensal = parseNullValor(renda)
		u.RendaExtra = parseNullValor(extra)
		users = append(users, &u)
	}
	return users, rows.Err()
}

// UpdateProfile changes nome/email and optionally the avatar path.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, nome, email string, avatar *string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	var err error
	if avatar != nil {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE users SET nome=?, email=?, avatar=? WHERE id=?",
			nome, email, *avatar, id)
	} else {
		_, err = r.DB.ExecContext(ctx,
			"UPDATE users SET nome=?, email=? WHERE id=?",
			nome, email, id)
	}
	if err != nil && isDuplicate(err) {
		return ErrEmailExists
	}
	return err
}

// UpdateData changes the income fields used by spreadsheet snapshots.
// Existence is checked by the handler, so a no-op update (same values)
// is not treated as an error here.
func (r *UserRepo) UpdateData(ctx context.Context, id uint64, rendaMensal, rendaExtra *model.Valor) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET renda_mensal=?, renda_extra=? WHERE id=?",
		rendaMensal, rendaExtra, id)
	return err
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET senha=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrUserNotFound)
}

// Delete removes a user. Sessions, codes, spreadsheets and
// notification views cascade at the schema level.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	return oneRowOr(res, ErrUserNotFound)
}

// DeleteUnverifiedBefore removes accounts that never confirmed their
// email and were created before the cutoff. Returns the number of rows
// purged; used by the daily sweeper.
func (r *UserRepo) DeleteUnverifiedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM users WHERE verify=0 AND created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

func oneRowOr(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
