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
	"github.com/financas-app/financas-backend/internal/repository"
	"github.com/financas-app/financas-backend/internal/service"
	"github.com/financas-app/financas-backend/internal/utils"
)

// AuthHandler bundles dependencies for the credential and session
// endpoints: login/logout, the check-token heartbeat and the
// verification-code flow.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
	Auths AuthStore
	Codes *service.CodeService
}

func NewAuthHandler(cfg config.Config, users UserStore, auths AuthStore, codes *service.CodeService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Auths: auths, Codes: codes}
}

// ----- DTOs -----

type loginReq struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}
type logoutReq struct {
	Token  string `json:"token"`
	UserID uint64 `json:"userId"`
}
type checkTokenReq struct {
	Token      string `json:"token"`
	LastAccess string `json:"lastAccess"`
}
type sendEmailReq struct {
	Email string `json:"email"`
}
type verifyReq struct {
	Code string `json:"code"`
}

// Login verifies the password and installs a fresh 6-hour session.
// A new login overwrites the user's previous token; bad email and bad
// password produce the same 401 so neither field leaks.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Senha == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidCredentials})
		}
		log.Printf("auth: login lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	if !u.Status {
		return c.JSON(http.StatusForbidden, echo.Map{"error": msgInvalidCredentials})
	}
	if !utils.VerifyPassword(u.Senha, req.Senha) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidCredentials})
	}

	tok, err := utils.NewSessionToken(h.Cfg.JWTSecret, u.ID, h.Cfg.SessionTTL)
	if err != nil {
		log.Printf("auth: token issue failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	if err := h.Auths.Upsert(ctx, u.ID, tok.Token, tok.Exp); err != nil {
		log.Printf("auth: session upsert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": msgLoginSuccess,
		"token":   tok.Token,
		"user":    u, // Senha is json:"-", never serialized
	})
}

// Logout deletes the session row. Removing the row (instead of
// blanking the token) rules out stale-token reuse.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil || req.Token == "" || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Auths.GetByUserID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrAuthNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgTokenNotFound})
		}
		log.Printf("auth: logout lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	if err := h.Auths.DeleteByUserID(ctx, req.UserID); err != nil && !errors.Is(err, repository.ErrAuthNotFound) {
		log.Printf("auth: logout delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": msgLogoutSuccess})
}

// CheckToken is the heartbeat every authenticated client call makes.
// Expiry is a hard boundary: a session past expires_at is deleted and
// the client must log in again; a valid one gets last_access refreshed.
func (h *AuthHandler) CheckToken(c echo.Context) error {
	var req checkTokenReq
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	auth, err := h.Auths.GetByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrAuthNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgTokenNotFound})
		}
		log.Printf("auth: check-token lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	u, err := h.Users.GetByID(ctx, auth.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": msgUserNotFound})
		}
		log.Printf("auth: check-token user lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}
	if !u.Status {
		return c.JSON(http.StatusForbidden, echo.Map{"error": msgInvalidCredentials})
	}

	if time.Now().UTC().After(auth.ExpiresAt) {
		if err := h.Auths.DeleteByToken(ctx, req.Token); err != nil {
			log.Printf("auth: expired session cleanup failed: %v", err)
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgSessionExpired})
	}

	if err := h.Auths.TouchLastAccess(ctx, auth.ID); err != nil {
		log.Printf("auth: last_access refresh failed: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msgTokenValid})
}

// SendEmail issues a verification code for the account that owns the
// email and delivers it. Requests inside the 30-second cooldown get a
// 429; outside it the pending code is superseded atomically.
func (h *AuthHandler) SendEmail(c echo.Context) error {
	var req sendEmailReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidCredentials})
		}
		log.Printf("auth: send-email lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	if err := h.Codes.Issue(ctx, u, service.PurposeVerification); err != nil {
		if errors.Is(err, service.ErrCooldown) {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"error": msgCodeCooldown})
		}
		log.Printf("auth: code issue failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": msgCodeSent})
}

// VerifyCode consumes the pending code for the user in the path. The
// verify flag is only flipped on a successful, unexpired match — the
// code is checked first, then flag update and code deletion happen in
// one transaction.
func (h *AuthHandler) VerifyCode(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}
	var req verifyReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgInvalidCredentials})
		}
		log.Printf("auth: verify lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	if err := h.Codes.Verify(ctx, id, strings.TrimSpace(req.Code)); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": msgCodeInvalid})
		}
		log.Printf("auth: verify consume failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternalError})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": msgEmailVerified})
}
