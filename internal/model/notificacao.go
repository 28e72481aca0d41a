package model

import "time"

// Notificacao is a message fanned out to users. Validade is an
// optional expiry; a nil value means the notification never expires.
type Notificacao struct {
	ID            uint64            `json:"id"`
	Nome          string            `json:"nome"`
	Texto         string            `json:"texto"`
	UserID        uint64            `json:"userId"`
	Validade      *time.Time        `json:"validade"`
	Visualizacoes []NotificacaoUser `json:"notificacoesUsuarios"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// NotificacaoUser records that a user viewed a notification. One row
// per (notificacao, user) pair.
type NotificacaoUser struct {
	ID            uint64    `json:"id"`
	NotificacaoID uint64    `json:"notificacaoId"`
	UserID        uint64    `json:"userId"`
	Visualizado   bool      `json:"visualizado"`
	CreatedAt     time.Time `json:"createdAt"`
}
