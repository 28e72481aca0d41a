// Package service holds the verification-code lifecycle and the
// notification event publisher. Handlers stay thin; the rules that
// span storage and mail live here.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/financas-app/financas-backend/internal/mailer"
	"github.com/financas-app/financas-backend/internal/model"
	"github.com/financas-app/financas-backend/internal/repository"
	"github.com/financas-app/financas-backend/internal/utils"
)

// ErrCooldown is returned when a code is requested again before the
// resend window has elapsed. Handlers map it to HTTP 429.
var ErrCooldown = errors.New("aguarde antes de solicitar um novo código")

// CodeStore is the subset of CodeRepo the service needs.
type CodeStore interface {
	Upsert(ctx context.Context, userID uint64, code string, expiresAt time.Time) error
	GetByUserID(ctx context.Context, userID uint64) (*model.Code, error)
	Consume(ctx context.Context, userID uint64, code string) error
}

// CodePurpose selects the email template for an issued code.
type CodePurpose int

const (
	PurposeVerification CodePurpose = iota
	PurposePasswordReset
)

// CodeService issues and verifies the single-use 6-digit codes.
// Invariants: at most one pending code per user (storage-level unique
// key + atomic upsert), a fixed lifetime, and a resend cooldown read
// from the explicit created_at of the pending code. The email is sent
// before the row is written, so a stored code implies the mail was at
// least accepted for delivery.
type CodeService struct {
	Codes    CodeStore
	Mail     mailer.Mailer
	TTL      time.Duration
	Cooldown time.Duration

	now func() time.Time
}

func NewCodeService(codes CodeStore, mail mailer.Mailer, ttl, cooldown time.Duration) *CodeService {
	return &CodeService{
		Codes:    codes,
		Mail:     mail,
		TTL:      ttl,
		Cooldown: cooldown,
		now:      time.Now,
	}
}

// Issue generates a fresh code for the user, emails it and persists it,
// superseding any previous pending code. Requests inside the cooldown
// window fail with ErrCooldown and leave the pending code untouched.
func (s *CodeService) Issue(ctx context.Context, user *model.User, purpose CodePurpose) error {
	pending, err := s.Codes.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrCodeNotFound) {
		return err
	}
	if pending != nil && s.now().Sub(pending.CreatedAt) < s.Cooldown {
		return ErrCooldown
	}

	code, err := utils.GenerateCode()
	if err != nil {
		return err
	}

	subject, body := "Confirmação de E-mail", mailer.VerificationBody(code)
	if purpose == PurposePasswordReset {
		subject, body = "Recuperação de Senha", mailer.ResetBody(code)
	}
	if err := s.Mail.Send(ctx, user.Email, subject, body); err != nil {
		return err
	}

	return s.Codes.Upsert(ctx, user.ID, code, s.now().Add(s.TTL))
}

// Verify consumes the pending code. The storage layer deletes the row
// and flips the user's verify flag in one transaction, only when the
// code matches and is unexpired.
func (s *CodeService) Verify(ctx context.Context, userID uint64, code string) error {
	return s.Codes.Consume(ctx, userID, code)
}
