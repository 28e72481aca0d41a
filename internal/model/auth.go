package model

import "time"

// Auth is the persisted session for a user. The `auths` table has a
// UNIQUE key on user_id, so there is at most one active session per
// user and logins go through an atomic upsert instead of a
// check-then-insert pair.
type Auth struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"userId"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	LastAccess time.Time `json:"lastAccess"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Code is a short-lived 6-digit verification code. Like Auth it is
// unique per user at the storage level. CreatedAt is stored explicitly
// so the resend cooldown never has to be derived from ExpiresAt.
type Code struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"userId"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
