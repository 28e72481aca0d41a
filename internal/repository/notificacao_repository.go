package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/financas-app/financas-backend/internal/model"
)

// NotificacaoRepo handles notifications and their per-user viewed
// state. "Valid" notifications have a NULL validade or one in the
// future; expired ones are ignored by the unseen counter.
type NotificacaoRepo struct{ DB *sql.DB }

func NewNotificacaoRepo(db *sql.DB) *NotificacaoRepo { return &NotificacaoRepo{DB: db} }

// Create inserts a notification.
func (r *NotificacaoRepo) Create(ctx context.Context, n *model.Notificacao) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO notificacoes (nome, texto, user_id, validade) VALUES (?,?,?,?)",
		n.Nome, n.Texto, n.UserID, n.Validade)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)

	return r.DB.QueryRowContext(ctx,
		"SELECT created_at FROM notificacoes WHERE id=?", n.ID).Scan(&n.CreatedAt)
}

// GetByID fetches one notification without its view rows.
func (r *NotificacaoRepo) GetByID(ctx context.Context, id uint64) (*model.Notificacao, error) {
	var (
		n        model.Notificacao
		validade sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, nome, texto, user_id, validade, created_at FROM notificacoes WHERE id=? LIMIT 1",
		id).Scan(&n.ID, &n.Nome, &n.Texto, &n.UserID, &validade, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotificacaoNotFound
	}
	if err != nil {
		return nil, err
	}
	if validade.Valid {
		n.Validade = &validade.Time
	}
	return &n, nil
}

// ListAll returns every notification with its viewing rows attached.
func (r *NotificacaoRepo) ListAll(ctx context.Context) ([]*model.Notificacao, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, nome, texto, user_id, validade, created_at FROM notificacoes ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*model.Notificacao{}
	byID := map[uint64]*model.Notificacao{}
	for rows.Next() {
		var (
			n        model.Notificacao
			validade sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.Nome, &n.Texto, &n.UserID, &validade, &n.CreatedAt); err != nil {
			return nil, err
		}
		if validade.Valid {
			n.Validade = &validade.Time
		}
		n.Visualizacoes = []model.NotificacaoUser{}
		list = append(list, &n)
		byID[n.ID] = &n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	views, err := r.DB.QueryContext(ctx,
		"SELECT id, notificacao_id, user_id, visualizado, created_at FROM notificacoes_usuarios ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer views.Close()

	for views.Next() {
		var v model.NotificacaoUser
		if err := views.Scan(&v.ID, &v.NotificacaoID, &v.UserID, &v.Visualizado, &v.CreatedAt); err != nil {
			return nil, err
		}
		if n, ok := byID[v.NotificacaoID]; ok {
			n.Visualizacoes = append(n.Visualizacoes, v)
		}
	}
	return list, views.Err()
}

// MarkViewed records that a user saw a notification. The table has a
// UNIQUE (notificacao_id, user_id) key; repeated views update the
// existing row instead of failing, keeping the operation idempotent.
func (r *NotificacaoRepo) MarkViewed(ctx context.Context, notificacaoID, userID uint64) (*model.NotificacaoUser, error) {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO notificacoes_usuarios (notificacao_id, user_id, visualizado)
		 VALUES (?,?,1)
		 ON DUPLICATE KEY UPDATE visualizado=1`,
		notificacaoID, userID)
	if err != nil {
		return nil, err
	}

	var v model.NotificacaoUser
	err = r.DB.QueryRowContext(ctx,
		"SELECT id, notificacao_id, user_id, visualizado, created_at FROM notificacoes_usuarios WHERE notificacao_id=? AND user_id=? LIMIT 1",
		notificacaoID, userID).Scan(&v.ID, &v.NotificacaoID, &v.UserID, &v.Visualizado, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// CountUnseen returns how many valid notifications targeted at the
// user have no viewed row yet.
func (r *NotificacaoRepo) CountUnseen(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notificacoes n
		 WHERE n.user_id = ?
		   AND (n.validade IS NULL OR n.validade > UTC_TIMESTAMP())
		   AND NOT EXISTS (
		     SELECT 1 FROM notificacoes_usuarios nu
		     WHERE nu.notificacao_id = n.id AND nu.user_id = ? AND nu.visualizado = 1
		   )`,
		userID, userID).Scan(&count)
	return count, err
}
