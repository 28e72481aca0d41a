package handler

// In-memory fakes backing the handler tests. They implement the store
// interfaces with map storage and mimic the repository sentinels.

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/financas-app/financas-backend/internal/model"
	"github.com/financas-app/financas-backend/internal/repository"
	"github.com/financas-app/financas-backend/internal/service"
)

// ----- users -----

type fakeUsers struct {
	mu   sync.Mutex
	seq  uint64
	byID map[uint64]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uint64]*model.User{}}
}

func (f *fakeUsers) add(u *model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u.ID = f.seq
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) Create(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	for _, ex := range f.byID {
		if ex.Email == u.Email {
			f.mu.Unlock()
			return repository.ErrEmailExists
		}
	}
	f.mu.Unlock()
	u.Status = true
	f.add(u)
	return nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) List(ctx context.Context) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.User, 0, len(f.byID))
	for _, u := range f.byID {
		cp := *u
		cp.Senha = ""
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, id uint64, nome, email string, avatar *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Nome, u.Email = nome, email
	if avatar != nil {
		u.Avatar = avatar
	}
	return nil
}

func (f *fakeUsers) UpdateData(ctx context.Context, id uint64, rendaMensal, rendaExtra *model.Valor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.RendaMensal, u.RendaExtra = rendaMensal, rendaExtra
	return nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Senha = hash
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.byID, id)
	return nil
}

// ----- auths -----

type fakeAuths struct {
	mu     sync.Mutex
	seq    uint64
	byUser map[uint64]*model.Auth
}

func newFakeAuths() *fakeAuths {
	return &fakeAuths{byUser: map[uint64]*model.Auth{}}
}

func (f *fakeAuths) Upsert(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byUser[userID]
	if !ok {
		f.seq++
		a = &model.Auth{ID: f.seq, UserID: userID, CreatedAt: time.Now()}
		f.byUser[userID] = a
	}
	a.Token, a.ExpiresAt, a.LastAccess = token, expiresAt, time.Now()
	return nil
}

func (f *fakeAuths) GetByToken(ctx context.Context, token string) (*model.Auth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byUser {
		if a.Token == token {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrAuthNotFound
}

func (f *fakeAuths) GetByUserID(ctx context.Context, userID uint64) (*model.Auth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byUser[userID]
	if !ok {
		return nil, repository.ErrAuthNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAuths) TouchLastAccess(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byUser {
		if a.ID == id {
			a.LastAccess = time.Now()
			return nil
		}
	}
	return repository.ErrAuthNotFound
}

func (f *fakeAuths) DeleteByUserID(ctx context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[userID]; !ok {
		return repository.ErrAuthNotFound
	}
	delete(f.byUser, userID)
	return nil
}

func (f *fakeAuths) DeleteByToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for uid, a := range f.byUser {
		if a.Token == token {
			delete(f.byUser, uid)
			return nil
		}
	}
	return repository.ErrAuthNotFound
}

// ----- planilhas -----

type fakePlanilhas struct {
	mu       sync.Mutex
	seq      uint64
	linhaSeq uint64
	byID     map[uint64]*model.Planilha
	linhas   map[uint64]*model.LinhaPlanilha
}

func newFakePlanilhas() *fakePlanilhas {
	return &fakePlanilhas{
		byID:   map[uint64]*model.Planilha{},
		linhas: map[uint64]*model.LinhaPlanilha{},
	}
}

func (f *fakePlanilhas) Create(ctx context.Context, p *model.Planilha) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = f.seq
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePlanilhas) withLinhas(p *model.Planilha) *model.Planilha {
	cp := *p
	cp.Linhas = []model.LinhaPlanilha{}
	for _, l := range f.linhas {
		if l.PlanilhaID == p.ID {
			cp.Linhas = append(cp.Linhas, *l)
		}
	}
	return &cp
}

func (f *fakePlanilhas) GetByID(ctx context.Context, id uint64) (*model.Planilha, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrPlanilhaNotFound
	}
	return f.withLinhas(p), nil
}

func (f *fakePlanilhas) ListByUser(ctx context.Context, userID uint64) ([]*model.Planilha, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Planilha{}
	for _, p := range f.byID {
		if p.UserID == userID {
			out = append(out, f.withLinhas(p))
		}
	}
	return out, nil
}

func (f *fakePlanilhas) Update(ctx context.Context, id uint64, nome string, descricao *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return repository.ErrPlanilhaNotFound
	}
	p.Nome, p.Descricao = nome, descricao
	return nil
}

func (f *fakePlanilhas) Delete(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrPlanilhaNotFound
	}
	delete(f.byID, id)
	for lid, l := range f.linhas {
		if l.PlanilhaID == id {
			delete(f.linhas, lid)
		}
	}
	return nil
}

func (f *fakePlanilhas) AddLinha(ctx context.Context, l *model.LinhaPlanilha) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linhaSeq++
	l.ID = f.linhaSeq
	l.CreatedAt = time.Now()
	l.UpdatedAt = l.CreatedAt
	cp := *l
	f.linhas[l.ID] = &cp
	return nil
}

func (f *fakePlanilhas) GetLinha(ctx context.Context, id uint64) (*model.LinhaPlanilha, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.linhas[id]
	if !ok {
		return nil, repository.ErrLinhaNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakePlanilhas) UpdateLinha(ctx context.Context, id uint64, nome, tipo string, data time.Time, valor model.Valor, color string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.linhas[id]
	if !ok {
		return repository.ErrLinhaNotFound
	}
	l.Nome, l.Tipo, l.Data, l.Valor, l.Color = nome, tipo, data, valor, color
	return nil
}

func (f *fakePlanilhas) DeleteLinha(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.linhas[id]; !ok {
		return repository.ErrLinhaNotFound
	}
	delete(f.linhas, id)
	return nil
}

// ----- notificacoes -----

type fakeNotificacoes struct {
	mu      sync.Mutex
	seq     uint64
	viewSeq uint64
	byID    map[uint64]*model.Notificacao
	views   map[uint64]map[uint64]*model.NotificacaoUser // notificacaoID -> userID
}

func newFakeNotificacoes() *fakeNotificacoes {
	return &fakeNotificacoes{
		byID:  map[uint64]*model.Notificacao{},
		views: map[uint64]map[uint64]*model.NotificacaoUser{},
	}
}

func (f *fakeNotificacoes) Create(ctx context.Context, n *model.Notificacao) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	n.ID = f.seq
	n.CreatedAt = time.Now()
	cp := *n
	f.byID[n.ID] = &cp
	return nil
}

func (f *fakeNotificacoes) GetByID(ctx context.Context, id uint64) (*model.Notificacao, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotificacaoNotFound
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotificacoes) ListAll(ctx context.Context) ([]*model.Notificacao, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*model.Notificacao{}
	for _, n := range f.byID {
		cp := *n
		cp.Visualizacoes = []model.NotificacaoUser{}
		for _, v := range f.views[n.ID] {
			cp.Visualizacoes = append(cp.Visualizacoes, *v)
		}
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeNotificacoes) MarkViewed(ctx context.Context, notificacaoID, userID uint64) (*model.NotificacaoUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.views[notificacaoID] == nil {
		f.views[notificacaoID] = map[uint64]*model.NotificacaoUser{}
	}
	v, ok := f.views[notificacaoID][userID]
	if !ok {
		f.viewSeq++
		v = &model.NotificacaoUser{
			ID:            f.viewSeq,
			NotificacaoID: notificacaoID,
			UserID:        userID,
			CreatedAt:     time.Now(),
		}
		f.views[notificacaoID][userID] = v
	}
	v.Visualizado = true
	cp := *v
	return &cp, nil
}

func (f *fakeNotificacoes) CountUnseen(ctx context.Context, userID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	var count int64
	for _, n := range f.byID {
		if n.Validade != nil && !n.Validade.After(now) {
			continue
		}
		if v, ok := f.views[n.ID][userID]; ok && v.Visualizado {
			continue
		}
		count++
	}
	return count, nil
}

// ----- codes + mail, for wiring a CodeService into handler tests -----

type fakeCodes struct {
	mu      sync.Mutex
	pending *model.Code
}

func (f *fakeCodes) Upsert(ctx context.Context, userID uint64, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = &model.Code{UserID: userID, Code: code, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	return nil
}

func (f *fakeCodes) GetByUserID(ctx context.Context, userID uint64) (*model.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil || f.pending.UserID != userID {
		return nil, repository.ErrCodeNotFound
	}
	cp := *f.pending
	return &cp, nil
}

func (f *fakeCodes) Consume(ctx context.Context, userID uint64, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending == nil || f.pending.UserID != userID || f.pending.Code != code {
		return repository.ErrCodeNotFound
	}
	// Matches the storage contract: an expired code is never consumed.
	if !f.pending.ExpiresAt.After(time.Now()) {
		return repository.ErrCodeNotFound
	}
	f.pending = nil
	return nil
}

type fakeMail struct {
	mu   sync.Mutex
	sent int
	err  error
}

func (f *fakeMail) Send(ctx context.Context, to, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent++
	return nil
}

func newTestCodeService(codes *fakeCodes, mail *fakeMail) *service.CodeService {
	return service.NewCodeService(codes, mail, 5*time.Minute, 30*time.Second)
}

// ----- echo helpers -----

func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
