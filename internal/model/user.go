package model

import "time"

// User mirrors the `users` table. Senha carries the bcrypt hash and is
// never serialized, so handlers can return this struct directly without
// leaking credentials.
//
// Fields:
//  ID          – primary key identifier.
//  Nome        – display name.
//  Email       – unique email address (normalized to lower case).
//  Senha       – bcrypt password hash (json:"-").
//  Avatar      – relative path of the uploaded avatar (nullable).
//  RendaMensal – declared monthly income in centavos (nullable).
//  RendaExtra  – declared extra income in centavos (nullable).
//  Verify      – whether the email address has been confirmed.
//  Status      – account enabled flag; disabled users cannot log in.
type User struct {
	ID          uint64    `json:"id"`
	Nome        string    `json:"nome"`
	Email       string    `json:"email"`
	Senha       string    `json:"-"`
	Avatar      *string   `json:"avatar"`
	RendaMensal *Valor    `json:"renda_mensal"`
	RendaExtra  *Valor    `json:"renda_extra"`
	Verify      bool      `json:"verify"`
	Status      bool      `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
