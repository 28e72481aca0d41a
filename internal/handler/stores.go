package handler

import (
	"context"
	"time"

	"github.com/financas-app/financas-backend/internal/model"
)

// Store interfaces consumed by the handlers. The repository package
// provides the production implementations; tests substitute in-memory
// fakes.

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	UpdateProfile(ctx context.Context, id uint64, nome, email string, avatar *string) error
	UpdateData(ctx context.Context, id uint64, rendaMensal, rendaExtra *model.Valor) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	Delete(ctx context.Context, id uint64) error
}

type AuthStore interface {
	Upsert(ctx context.Context, userID uint64, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*model.Auth, error)
	GetByUserID(ctx context.Context, userID uint64) (*model.Auth, error)
	TouchLastAccess(ctx context.Context, id uint64) error
	DeleteByUserID(ctx context.Context, userID uint64) error
	DeleteByToken(ctx context.Context, token string) error
}

type PlanilhaStore interface {
	Create(ctx context.Context, p *model.Planilha) error
	GetByID(ctx context.Context, id uint64) (*model.Planilha, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Planilha, error)
	Update(ctx context.Context, id uint64, nome string, descricao *string) error
	Delete(ctx context.Context, id uint64) error
	AddLinha(ctx context.Context, l *model.LinhaPlanilha) error
	GetLinha(ctx context.Context, id uint64) (*model.LinhaPlanilha, error)
	UpdateLinha(ctx context.Context, id uint64, nome, tipo string, data time.Time, valor model.Valor, color string) error
	DeleteLinha(ctx context.Context, id uint64) error
}

type NotificacaoStore interface {
	Create(ctx context.Context, n *model.Notificacao) error
	GetByID(ctx context.Context, id uint64) (*model.Notificacao, error)
	ListAll(ctx context.Context) ([]*model.Notificacao, error)
	MarkViewed(ctx context.Context, notificacaoID, userID uint64) (*model.NotificacaoUser, error)
	CountUnseen(ctx context.Context, userID uint64) (int64, error)
}
