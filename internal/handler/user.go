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

	"github.com/financas-app/financas-backend/internal/config"
	"github.com/financas-app/financas-backend/internal/model"
	"github.com/financas-app/financas-backend/internal/repository"
	"github.com/financas-app/financas-backend/internal/service"
	"github.com/financas-app/financas-backend/internal/utils"
)

// avatarDir is where uploaded avatars land; the directory is served
// statically under /public.
const avatarDir = "public/avatar"

// UserHandler covers registration, profile CRUD and the password-reset
// entry points.
type UserHandler struct {
	Cfg   config.Config
	Users UserStore
	Auths AuthStore
	Codes *service.CodeService
}

func NewUserHandler(cfg config.Config, users UserStore, auths AuthStore, codes *service.CodeService) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Auths: auths, Codes: codes}
}

// Register creates a user from a multipart form (nome, email, senha,
// optional avatar file) and emails a verification code best-effort —
// a mail outage must not block sign-up.
func (h *UserHandler) Register(c echo.Context) error {
	nome := strings.TrimSpace(c.FormValue("nome"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	senha := c.FormValue("senha")
	if nome == "" || email == "" || senha == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgCamposObrigatorios})
	}

	var avatar *string
	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		path, err := utils.SaveAvatar(fh, avatarDir)
		if err != nil {
			if errors.Is(err, utils.ErrExtensaoInvalida) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			log.Printf("user: avatar save failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
		}
		avatar = &path
	}

	hash, err := utils.HashPassword(senha, h.Cfg.BcryptCost)
	if err != nil {
		log.Printf("user: password hash failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	u := &model.User{Nome: nome, Email: email, Senha: hash, Avatar: avatar}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msgEmailExists})
		}
		log.Printf("user: create failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	if err := h.Codes.Issue(ctx, u, service.PurposeVerification); err != nil {
		log.Printf("user: verification mail for %s failed: %v", u.Email, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": msgUserCreated,
		"user":    u,
	})
}

// List returns every user; senha is never serialized.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		log.Printf("user: list failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": msgUserFetched,
		"users":   users,
	})
}

// GetByID fetches one user.
func (h *UserHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("user: get failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": msgUserFetched,
		"user":    u,
	})
}

// Edit updates nome/email and optionally replaces the avatar
// (multipart form, same contract as Register).
func (h *UserHandler) Edit(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	nome := strings.TrimSpace(c.FormValue("nome"))
	email := strings.ToLower(strings.TrimSpace(c.FormValue("email")))
	if nome == "" || email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgCamposObrigatorios})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("user: edit lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	var avatar *string
	if fh, err := c.FormFile("avatar"); err == nil && fh != nil {
		path, err := utils.SaveAvatar(fh, avatarDir)
		if err != nil {
			if errors.Is(err, utils.ErrExtensaoInvalida) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}
			log.Printf("user: avatar save failed: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
		}
		avatar = &path
	}

	if err := h.Users.UpdateProfile(ctx, id, nome, email, avatar); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msgEmailExists})
		}
		log.Printf("user: edit failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		log.Printf("user: reload after edit failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": msgUserUpdated,
		"user":    u,
	})
}

type updateDataReq struct {
	RendaMensal *model.Valor `json:"renda_mensal"`
	RendaExtra  *model.Valor `json:"renda_extra"`
}

// UpdateData changes the income fields and reissues the session token,
// so clients pick up a profile-bound token without logging in again.
func (h *UserHandler) UpdateData(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	var req updateDataReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("user: update-data lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	if err := h.Users.UpdateData(ctx, id, req.RendaMensal, req.RendaExtra); err != nil {
		log.Printf("user: update-data failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, id, h.Cfg.SessionTTL)
	if err != nil {
		log.Printf("user: token reissue failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	if err := h.Auths.Upsert(ctx, id, tok.Token, tok.Exp); err != nil {
		log.Printf("user: session upsert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		log.Printf("user: reload after update-data failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": msgUserUpdated,
		"token":   tok.Token,
		"user":    u,
	})
}

// Delete removes a user permanently.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("user: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgUserDeleted})
}

// ResendPassword issues a password-recovery code for the given email.
// Unlike login, a missing account is reported as 404 here: the caller
// already proved knowledge of the email by owning the inbox.
func (h *UserHandler) ResendPassword(c echo.Context) error {
	var req sendEmailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("user: resend-password lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	if err := h.Codes.Issue(ctx, u, service.PurposePasswordReset); err != nil {
		if errors.Is(err, service.ErrCooldown) {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": msgCodeCooldown})
		}
		log.Printf("user: reset code issue failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgResetSent})
}

type updatePasswordReq struct {
	Senha string `json:"senha"`
}

// UpdatePassword stores a new bcrypt hash for the user.
func (h *UserHandler) UpdatePassword(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil || req.Senha == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("user: update-password lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	hash, err := utils.HashPassword(req.Senha, h.Cfg.BcryptCost)
	if err != nil {
		log.Printf("user: password hash failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	if err := h.Users.UpdatePassword(ctx, id, hash); err != nil {
		log.Printf("user: update-password failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgPasswordUpdated})
}
