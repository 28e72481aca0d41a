// Package queue defines the message payloads exchanged over the broker
// and the background consumer that records them.
package queue

// NotificacaoCreatedEvent is published when a notification is created.
// It carries enough context for downstream consumers to log or fan out
// without querying the primary database.
type NotificacaoCreatedEvent struct {
	NotificacaoID uint64 `json:"notificacao_id"`
	UserID        uint64 `json:"user_id"`
	Nome          string `json:"nome"`
	Texto         string `json:"texto"`
	Validade      string `json:"validade,omitempty"`
	CreatedAt     string `json:"created_at"`
}
