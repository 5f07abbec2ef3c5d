package token

import (
	"github.com/golang-jwt/jwt/v5"

	"identity-service/internal/domain/user"
)

// Token type discriminators carried in the token_type claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
	TypeReset   = "reset"
)

// UserClaims is the denormalized user snapshot embedded in every access
// and refresh token. It reflects the user record at issuance time and is
// not refreshed by later edits.
type UserClaims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Claims is the signed payload of an access or refresh token. The jti
// lives in RegisteredClaims.ID and doubles as the blacklist key.
type Claims struct {
	TokenType string     `json:"token_type"`
	User      UserClaims `json:"user"`
	jwt.RegisteredClaims
}

// ToClaims projects a user record onto the claim subset embedded in
// tokens. Only id, email and full_name ever cross this boundary.
func ToClaims(u *user.User) UserClaims {
	return UserClaims{
		ID:       u.ID.String(),
		Email:    u.Email,
		FullName: u.FullName,
	}
}
