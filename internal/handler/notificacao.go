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
	"github.com/financas-app/financas-backend/internal/queue"
	"github.com/financas-app/financas-backend/internal/repository"
	"github.com/financas-app/financas-backend/internal/service"
)

// NotificacaoHandler covers notification creation, per-user viewed
// tracking and the unseen counter. Creation additionally publishes a
// broker event so downstream consumers (audit log today) see the
// fan-out without polling the database.
type NotificacaoHandler struct {
	Notificacoes NotificacaoStore
	Users        UserStore

	// publish is swappable in tests; defaults to the RabbitMQ publisher.
	publish func(ctx context.Context, ev queue.NotificacaoCreatedEvent) error
}

func NewNotificacaoHandler(notificacoes NotificacaoStore, users UserStore) *NotificacaoHandler {
	return &NotificacaoHandler{
		Notificacoes: notificacoes,
		Users:        users,
		publish:      service.PublishNotificacaoCreated,
	}
}

type createNotificacaoReq struct {
	Nome     string `json:"nome"`
	Texto    string `json:"texto"`
	UserID   uint64 `json:"userId"`
	Validade string `json:"validade"`
}

// Criar creates a notification. The broker publish is best-effort: a
// RabbitMQ outage never loses the notification row.
func (h *NotificacaoHandler) Criar(c echo.Context) error {
	var req createNotificacaoReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	req.Nome = strings.TrimSpace(req.Nome)
	req.Texto = strings.TrimSpace(req.Texto)
	if req.Nome == "" || req.Texto == "" || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgCamposObrigatorios})
	}

	var validade *time.Time
	if req.Validade != "" {
		t, err := time.Parse(time.RFC3339, req.Validade)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
		}
		validade = &t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("notificacao: user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	n := &model.Notificacao{
		Nome:          req.Nome,
		Texto:         req.Texto,
		UserID:        req.UserID,
		Validade:      validade,
		Visualizacoes: []model.NotificacaoUser{},
	}
	if err := h.Notificacoes.Create(ctx, n); err != nil {
		log.Printf("notificacao: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	ev := queue.NotificacaoCreatedEvent{
		NotificacaoID: n.ID,
		UserID:        n.UserID,
		Nome:          n.Nome,
		Texto:         n.Texto,
		CreatedAt:     n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if n.Validade != nil {
		ev.Validade = n.Validade.UTC().Format(time.RFC3339)
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer pubCancel()
		_ = h.publish(pubCtx, ev)
	}()

	return c.JSON(http.StatusCreated, n)
}

// ListAll returns every notification with its viewing rows.
func (h *NotificacaoHandler) ListAll(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Notificacoes.ListAll(ctx)
	if err != nil {
		log.Printf("notificacao: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, list)
}

// Visualizar marks a notification as seen by a user.
func (h *NotificacaoHandler) Visualizar(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgCamposObrigatorios})
	}
	notificacaoID, err := strconv.ParseUint(c.Param("notificacaoId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgCamposObrigatorios})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("notificacao: user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	if _, err := h.Notificacoes.GetByID(ctx, notificacaoID); err != nil {
		if errors.Is(err, repository.ErrNotificacaoNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgNotificacaoNotFound})
		}
		log.Printf("notificacao: lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	v, err := h.Notificacoes.MarkViewed(ctx, notificacaoID, userID)
	if err != nil {
		log.Printf("notificacao: mark viewed failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusCreated, v)
}

// NumeroNaoVisualizadas returns how many valid notifications the user
// has not yet seen.
func (h *NotificacaoHandler) NumeroNaoVisualizadas(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Campo de id não informado."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("notificacao: user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	count, err := h.Notificacoes.CountUnseen(ctx, userID)
	if err != nil {
		log.Printf("notificacao: count failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{"quantidade": count})
}
