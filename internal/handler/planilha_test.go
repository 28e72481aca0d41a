package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/financas-app/financas-backend/internal/model"
)

func newPlanilhaFixture(t *testing.T) (*PlanilhaHandler, *fakeUsers, *fakePlanilhas) {
	t.Helper()
	users := newFakeUsers()
	planilhas := newFakePlanilhas()
	return NewPlanilhaHandler(planilhas, users), users, planilhas
}

func seedPlanilha(t *testing.T, planilhas *fakePlanilhas, userID uint64, valores ...model.Valor) *model.Planilha {
	t.Helper()
	p := &model.Planilha{UserID: userID, Nome: "Orçamento"}
	require.NoError(t, planilhas.Create(t.Context(), p))
	for i, v := range valores {
		l := &model.LinhaPlanilha{
			PlanilhaID: p.ID,
			Nome:       fmt.Sprintf("linha %d", i),
			Tipo:       "despesa",
			Data:       time.Now(),
			Valor:      v,
			Color:      "#ffffff",
		}
		require.NoError(t, planilhas.AddLinha(t.Context(), l))
	}
	return p
}

func TestCreatePlanilhaSnapshotsRenda(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	renda := model.Valor(350000)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true, RendaMensal: &renda})

	c, rec := newJSONContext(t, http.MethodPost, "/planilha/register",
		fmt.Sprintf(`{"nome":"Agosto","userId":%d}`, u.ID))
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	p, err := planilhas.GetByID(c.Request().Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Agosto", p.Nome)
	require.NotNil(t, p.RendaMensal)
	assert.Equal(t, renda, *p.RendaMensal)

	// A later income change must not touch the snapshot.
	nova := model.Valor(999900)
	require.NoError(t, users.UpdateData(c.Request().Context(), u.ID, &nova, nil))
	p, err = planilhas.GetByID(c.Request().Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, renda, *p.RendaMensal)
}

func TestCreatePlanilhaUnknownUser(t *testing.T) {
	h, _, _ := newPlanilhaFixture(t)

	c, rec := newJSONContext(t, http.MethodPost, "/planilha/register", `{"nome":"Agosto","userId":99}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgUserNotFound)
}

func TestCreatePlanilhaMissingFields(t *testing.T) {
	h, _, _ := newPlanilhaFixture(t)

	c, rec := newJSONContext(t, http.MethodPost, "/planilha/register", `{"nome":"  "}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgCamposObrigatorios)
}

func TestListByUserComputesTotals(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true})
	seedPlanilha(t, planilhas, u.ID, 1050, -500, 450) // 10.50 - 5.00 + 4.50

	c, rec := newJSONContext(t, http.MethodGet, "/planilha/1", "")
	c.SetParamNames("userId")
	c.SetParamValues(fmt.Sprint(u.ID))
	require.NoError(t, h.ListByUser(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valorTotal":10.00`)
}

func TestDetalhes(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true})
	p := seedPlanilha(t, planilhas, u.ID, 199, 1)

	c, rec := newJSONContext(t, http.MethodGet, "/planilha/detalhes/1", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(p.ID))
	require.NoError(t, h.Detalhes(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valorTotalFormatado":2.00`)
}

func TestDetalhesNotFound(t *testing.T) {
	h, _, _ := newPlanilhaFixture(t)

	c, rec := newJSONContext(t, http.MethodGet, "/planilha/detalhes/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.Detalhes(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgPlanilhaNotFound)
}

func TestUpdatePlanilha(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true})
	p := seedPlanilha(t, planilhas, u.ID)

	c, rec := newJSONContext(t, http.MethodPut, "/planilha/edit/1",
		`{"nome":"Setembro","descricao":"contas do mês"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(p.ID))
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	atualizada, err := planilhas.GetByID(c.Request().Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Setembro", atualizada.Nome)
	require.NotNil(t, atualizada.Descricao)
	assert.Equal(t, "contas do mês", *atualizada.Descricao)
}

func TestDeletePlanilhaRemovesLinhas(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true})
	p := seedPlanilha(t, planilhas, u.ID, 100, 200)

	c, rec := newJSONContext(t, http.MethodDelete, "/planilha/delete/1", "")
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(p.ID))
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgPlanilhaDeleted)
	assert.Empty(t, planilhas.linhas, "rows must go with the sheet")
}

func TestAddLinha(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true})
	p := seedPlanilha(t, planilhas, u.ID)

	c, rec := newJSONContext(t, http.MethodPost, "/planilha/1/linhas",
		`{"nome":"Mercado","tipo":"despesa","data":"2026-08-01","valor":"150,75"}`)
	c.SetParamNames("planilhaId")
	c.SetParamValues(fmt.Sprint(p.ID))
	require.NoError(t, h.AddLinha(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	l, err := planilhas.GetLinha(c.Request().Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.Valor(15075), l.Valor)
	assert.Equal(t, "#ffffff", l.Color, "missing color falls back to white")
}

func TestAddLinhaValorZeroIsValid(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true})
	p := seedPlanilha(t, planilhas, u.ID)

	c, rec := newJSONContext(t, http.MethodPost, "/planilha/1/linhas",
		`{"nome":"Ajuste","tipo":"receita","data":"2026-08-01","valor":0}`)
	c.SetParamNames("planilhaId")
	c.SetParamValues(fmt.Sprint(p.ID))
	require.NoError(t, h.AddLinha(c))
	assert.Equal(t, http.StatusCreated, rec.Code, "explicit zero is not a missing field")
}

func TestAddLinhaMissingFields(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true})
	p := seedPlanilha(t, planilhas, u.ID)

	c, rec := newJSONContext(t, http.MethodPost, "/planilha/1/linhas",
		`{"nome":"Mercado","tipo":"despesa","data":"2026-08-01"}`)
	c.SetParamNames("planilhaId")
	c.SetParamValues(fmt.Sprint(p.ID))
	require.NoError(t, h.AddLinha(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "obrigatórios")
}

func TestAddLinhaUnknownPlanilha(t *testing.T) {
	h, _, _ := newPlanilhaFixture(t)

	c, rec := newJSONContext(t, http.MethodPost, "/planilha/99/linhas",
		`{"nome":"Mercado","tipo":"despesa","data":"2026-08-01","valor":"10"}`)
	c.SetParamNames("planilhaId")
	c.SetParamValues("99")
	require.NoError(t, h.AddLinha(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgPlanilhaNotFound)
}

func TestUpdateLinha(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true})
	seedPlanilha(t, planilhas, u.ID, 100)

	c, rec := newJSONContext(t, http.MethodPut, "/planilha/linhas/1",
		`{"nome":"Feira","tipo":"despesa","data":"2026-08-02T00:00:00Z","valor":"20.00","color":"#ff0000"}`)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.UpdateLinha(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	l, err := planilhas.GetLinha(c.Request().Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Feira", l.Nome)
	assert.Equal(t, model.Valor(2000), l.Valor)
	assert.Equal(t, "#ff0000", l.Color)
}

func TestUpdateLinhaNotFound(t *testing.T) {
	h, _, _ := newPlanilhaFixture(t)

	c, rec := newJSONContext(t, http.MethodPut, "/planilha/linhas/99",
		`{"nome":"Feira","tipo":"despesa","data":"2026-08-02","valor":"20.00"}`)
	c.SetParamNames("id")
	c.SetParamValues("99")
	require.NoError(t, h.UpdateLinha(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), msgLinhaNotFound)
}

func TestDeleteLinha(t *testing.T) {
	h, users, planilhas := newPlanilhaFixture(t)
	u := users.add(&model.User{Nome: "Ana", Email: "ana@example.com", Status: true})
	seedPlanilha(t, planilhas, u.ID, 100)

	c, rec := newJSONContext(t, http.MethodDelete, "/planilha/linhas/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.DeleteLinha(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgLinhaDeleted)

	c2, rec2 := newJSONContext(t, http.MethodDelete, "/planilha/linhas/1", "")
	c2.SetParamNames("id")
	c2.SetParamValues("1")
	require.NoError(t, h.DeleteLinha(c2))
	assert.Equal(t, http.StatusNotFound, rec2.Code)
}
