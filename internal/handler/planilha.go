package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/financas-app/financas-backend/internal/model"
	"github.com/financas-app/financas-backend/internal/repository"
)

// PlanilhaHandler covers spreadsheet and row CRUD plus the running
// totals. Sums are integer centavos, so they are commutative and two
// requests over the same data always agree.
type PlanilhaHandler struct {
	Planilhas PlanilhaStore
	Users     UserStore
}

func NewPlanilhaHandler(planilhas PlanilhaStore, users UserStore) *PlanilhaHandler {
	return &PlanilhaHandler{Planilhas: planilhas, Users: users}
}

type createPlanilhaReq struct {
	Nome   string `json:"nome"`
	UserID uint64 `json:"userId"`
}

// planilhaComTotal augments a spreadsheet with its computed total for
// list and detail responses.
type planilhaComTotal struct {
	*model.Planilha
	ValorTotal model.Valor `json:"valorTotal"`
}

// Create registers a spreadsheet, snapshotting the owner's declared
// monthly income at creation time.
func (h *PlanilhaHandler) Create(c echo.Context) error {
	var req createPlanilhaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	if req.Nome == "" || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgCamposObrigatorios})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("planilha: user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	p := &model.Planilha{
		UserID:      req.UserID,
		Nome:        req.Nome,
		RendaMensal: u.RendaMensal,
		Linhas:      []model.LinhaPlanilha{},
	}
	if err := h.Planilhas.Create(ctx, p); err != nil {
		log.Printf("planilha: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusCreated, p)
}

// ListByUser returns a user's spreadsheets with rows and per-sheet
// totals.
func (h *PlanilhaHandler) ListByUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	planilhas, err := h.Planilhas.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("planilha: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	out := make([]planilhaComTotal, 0, len(planilhas))
	for _, p := range planilhas {
		out = append(out, planilhaComTotal{Planilha: p, ValorTotal: model.SomaLinhas(p.Linhas)})
	}
	return c.JSON(http.StatusOK, out)
}

// Detalhes returns one spreadsheet with its rows and formatted total.
func (h *PlanilhaHandler) Detalhes(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Planilhas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPlanilhaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgPlanilhaNotFound})
		}
		log.Printf("planilha: get failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	total := model.SomaLinhas(p.Linhas)
	return c.JSON(http.StatusOK, echo.Map{
		"planilha":            p,
		"valorTotalFormatado": total,
	})
}

type updatePlanilhaReq struct {
	Nome      string  `json:"nome"`
	Descricao *string `json:"descricao"`
}

// Update changes nome/descricao of a spreadsheet.
func (h *PlanilhaHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	var req updatePlanilhaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	if req.Nome == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgCamposObrigatorios})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Planilhas.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPlanilhaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgPlanilhaNotFound})
		}
		log.Printf("planilha: update lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	if err := h.Planilhas.Update(ctx, id, req.Nome, req.Descricao); err != nil {
		log.Printf("planilha: update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	p, err := h.Planilhas.GetByID(ctx, id)
	if err != nil {
		log.Printf("planilha: reload after update failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, p)
}

// Delete removes a spreadsheet together with its rows.
func (h *PlanilhaHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Planilhas.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPlanilhaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgPlanilhaNotFound})
		}
		log.Printf("planilha: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgPlanilhaDeleted})
}

type linhaReq struct {
	Nome  string       `json:"nome"`
	Tipo  string       `json:"tipo"`
	Data  string       `json:"data"`
	Valor *model.Valor `json:"valor"`
	Color string       `json:"color"`
}

// parseData accepts RFC 3339 timestamps or plain dates.
func parseData(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// AddLinha appends one entry to a spreadsheet. Valor is a pointer so a
// missing field is distinguishable from an explicit zero.
func (h *PlanilhaHandler) AddLinha(c echo.Context) error {
	planilhaID, err := strconv.ParseUint(c.Param("planilhaId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	var req linhaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	req.Tipo = strings.TrimSpace(req.Tipo)
	if req.Nome == "" || req.Tipo == "" || req.Data == "" || req.Valor == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Os campos 'nome', 'tipo', 'data' e 'valor' são obrigatórios."})
	}
	data, err := parseData(req.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Planilhas.GetByID(ctx, planilhaID); err != nil {
		if errors.Is(err, repository.ErrPlanilhaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgPlanilhaNotFound})
		}
		log.Printf("planilha: linha lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	color := req.Color
	if color == "" {
		color = "#ffffff"
	}
	l := &model.LinhaPlanilha{
		PlanilhaID: planilhaID,
		Nome:       req.Nome,
		Tipo:       req.Tipo,
		Data:       data,
		Valor:      *req.Valor,
		Color:      color,
	}
	if err := h.Planilhas.AddLinha(ctx, l); err != nil {
		log.Printf("planilha: add linha failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusCreated, l)
}

// UpdateLinha rewrites one entry.
func (h *PlanilhaHandler) UpdateLinha(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	var req linhaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	req.Tipo = strings.TrimSpace(req.Tipo)
	if req.Nome == "" || req.Tipo == "" || req.Data == "" || req.Valor == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Os campos 'nome', 'tipo', 'data' e 'valor' são obrigatórios."})
	}
	data, err := parseData(req.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	color := req.Color
	if color == "" {
		color = "#ffffff"
	}
	if err := h.Planilhas.UpdateLinha(ctx, id, req.Nome, req.Tipo, data, *req.Valor, color); err != nil {
		if errors.Is(err, repository.ErrLinhaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgLinhaNotFound})
		}
		log.Printf("planilha: update linha failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	l, err := h.Planilhas.GetLinha(ctx, id)
	if err != nil {
		log.Printf("planilha: reload linha failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, l)
}

// DeleteLinha removes one entry.
func (h *PlanilhaHandler) DeleteLinha(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Planilhas.DeleteLinha(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLinhaNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgLinhaNotFound})
		}
		log.Printf("planilha: delete linha failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgLinhaDeleted})
}
