package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionToken is a signed JWT plus its expiry. The same expiry is
// persisted on the auth row so the server can enforce the hard 6-hour
// boundary without re-parsing the token.
type SessionToken struct {
	Token string
	Exp   time.Time
}

var errTokenInvalido = errors.New("token inválido")

// NewSessionToken signs an HS256 JWT carrying the user identity.
// Claims: sub (user id), exp, iat.
func NewSessionToken(secret string, userID uint64, ttl time.Duration) (SessionToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken validates the signature and returns the user id
// from the sub claim. Tokens signed with a different method are
// rejected.
func ParseSessionToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errTokenInvalido
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, errTokenInvalido
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errTokenInvalido
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, errTokenInvalido
	}
	return uint64(sub), nil
}
