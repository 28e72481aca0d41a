// Package repository contains the data access layer, separated from
// HTTP handlers. Sentinel errors defined here let handlers map storage
// failures onto the HTTP taxonomy without string matching.
package repository

import "errors"

var (
	// ErrUserNotFound is returned when a user id or email has no row.
	ErrUserNotFound = errors.New("usuário não encontrado")

	// ErrEmailExists signals a duplicate email on insert or update.
	ErrEmailExists = errors.New("e-mail já cadastrado")

	// ErrAuthNotFound is returned when no session row matches.
	ErrAuthNotFound = errors.New("token de autenticação não encontrado")

	// ErrCodeNotFound is returned when no pending verification code
	// matches the given user and code, or the match has expired.
	ErrCodeNotFound = errors.New("código inválido ou expirado")

	// ErrPlanilhaNotFound is returned for missing spreadsheets.
	ErrPlanilhaNotFound = errors.New("planilha não encontrada")

	// ErrLinhaNotFound is returned for missing spreadsheet rows.
	ErrLinhaNotFound = errors.New("linha da planilha não encontrada")

	// ErrNotificacaoNotFound is returned for missing notifications.
	ErrNotificacaoNotFound = errors.New("notificação não encontrada")
)
