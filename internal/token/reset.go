package token

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"identity-service/internal/domain/user"
)

// MakeResetToken issues the short-lived, single-purpose token handed out
// after a reset code is validated. The signing key mixes in the user's
// current password hash, so any password change invalidates outstanding
// tokens without server-side state.
func (e *Engine) MakeResetToken(u *user.User) (string, error) {
	now := e.now().Truncate(time.Second)
	claims := &Claims{
		TokenType: TypeReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.resetLifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.resetKey(u))
}

// CheckResetToken reports whether the token is valid for the user's
// current state: signature, expiry, type and subject must all match.
func (e *Engine) CheckResetToken(u *user.User, tokenString string) bool {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return e.resetKey(u), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(e.now),
	)
	if err != nil || !parsed.Valid {
		return false
	}

	return claims.TokenType == TypeReset && claims.Subject == u.ID.String()
}

func (e *Engine) resetKey(u *user.User) []byte {
	key := sha256.Sum256(append(append([]byte{}, e.secret...), []byte(u.PasswordHashed)...))
	return key[:]
}

// EncodeUserRef produces the opaque, reversible reference to a user's
// primary key that travels between code validation and password
// submission.
func EncodeUserRef(id uuid.UUID) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id.String()))
}

// DecodeUserRef reverses EncodeUserRef. Malformed input yields an error,
// never a panic; callers map it to a generic not-found failure.
func DecodeUserRef(ref string) (uuid.UUID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ref)
	if err != nil {
		return uuid.Nil, errors.New("malformed user reference")
	}

	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.Nil, errors.New("malformed user reference")
	}

	return id, nil
}
