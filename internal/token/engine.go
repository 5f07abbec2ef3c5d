package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"identity-service/internal/config"
	apperrors "identity-service/pkg/errors"
)

// BlacklistStore records revoked refresh token identifiers. Entries may
// be dropped once the token they belong to has expired anyway.
type BlacklistStore interface {
	Add(ctx context.Context, jti string, expiresAt time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// Pair is an access/refresh token pair sharing one issuance instant.
type Pair struct {
	Access  string
	Refresh string
}

// RotationResult carries the tokens produced by Rotate. Refresh is empty
// when rotation is disabled.
type RotationResult struct {
	Access  string
	Refresh string
}

// Engine mints, verifies, rotates and revokes signed tokens. Revocation
// is an explicit capability: a nil blacklist store disables it, in which
// case Rotate skips blacklisting and Revoke fails outright.
type Engine struct {
	secret                 []byte
	accessLifetime         time.Duration
	refreshLifetime        time.Duration
	resetLifetime          time.Duration
	rotateRefreshTokens    bool
	blacklistAfterRotation bool
	blacklist              BlacklistStore

	// now is swappable for tests. Timestamps are truncated to whole
	// seconds before signing.
	now func() time.Time
}

func NewEngine(cfg *config.Config, blacklist BlacklistStore) *Engine {
	return &Engine{
		secret:                 []byte(cfg.JWT.Secret),
		accessLifetime:         cfg.JWT.AccessLifetime(),
		refreshLifetime:        cfg.JWT.RefreshLifetime(),
		resetLifetime:          cfg.ResetPassword.TokenLifetime(),
		rotateRefreshTokens:    cfg.JWT.RotateRefreshTokens,
		blacklistAfterRotation: cfg.JWT.BlacklistAfterRotation,
		blacklist:              blacklist,
		now:                    time.Now,
	}
}

// IssuePair creates a refresh token with a fresh jti and an access token
// derived from it. Pure token construction, no store writes.
func (e *Engine) IssuePair(claims UserClaims) (*Pair, error) {
	refreshClaims := e.newRefreshClaims(claims)

	refresh, err := e.sign(refreshClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	access, err := e.sign(e.deriveAccessClaims(refreshClaims))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &Pair{Access: access, Refresh: refresh}, nil
}

// Verify checks signature, expiry and the token_type discriminator, and
// for refresh tokens also blacklist membership.
func (e *Engine) Verify(ctx context.Context, tokenString, expectedType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return e.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(e.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrTokenMalformed
	}
	if !parsed.Valid {
		return nil, apperrors.ErrTokenMalformed
	}

	if claims.TokenType != expectedType {
		return nil, apperrors.ErrInvalidToken
	}

	if expectedType == TypeRefresh && e.blacklist != nil {
		revoked, err := e.blacklist.Contains(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check blacklist: %w", err)
		}
		if revoked {
			return nil, apperrors.ErrTokenBlacklisted
		}
	}

	return claims, nil
}

// Rotate verifies the refresh token and mints replacements. With
// rotation enabled the old jti is blacklisted (when configured) and a
// new refresh token is issued next to a paired access token. With
// rotation disabled only an access token is derived from the incoming
// refresh claims.
func (e *Engine) Rotate(ctx context.Context, refreshToken string) (*RotationResult, error) {
	claims, err := e.Verify(ctx, refreshToken, TypeRefresh)
	if err != nil {
		return nil, err
	}

	if !e.rotateRefreshTokens {
		access, err := e.sign(e.deriveAccessClaims(claims))
		if err != nil {
			return nil, fmt.Errorf("failed to sign access token: %w", err)
		}
		return &RotationResult{Access: access}, nil
	}

	if e.blacklistAfterRotation && e.blacklist != nil {
		if err := e.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return nil, fmt.Errorf("failed to blacklist rotated token: %w", err)
		}
	}

	refreshClaims := e.newRefreshClaims(claims.User)
	refresh, err := e.sign(refreshClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	access, err := e.sign(e.deriveAccessClaims(refreshClaims))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &RotationResult{Access: access, Refresh: refresh}, nil
}

// Revoke blacklists the refresh token's jti. Parse and verification
// failures collapse to the generic invalid-token error so callers learn
// nothing about why the token was rejected.
func (e *Engine) Revoke(ctx context.Context, refreshToken string) error {
	if e.blacklist == nil {
		return apperrors.ErrRevocationDisabled
	}

	claims, err := e.Verify(ctx, refreshToken, TypeRefresh)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	if err := e.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

func (e *Engine) newRefreshClaims(claims UserClaims) *Claims {
	now := e.now().Truncate(time.Second)
	return &Claims{
		TokenType: TypeRefresh,
		User:      claims,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.refreshLifetime)),
		},
	}
}

// deriveAccessClaims copies the refresh token's claims except the jti,
// which must be unique per token. The access expiry is anchored to the
// refresh token's issuance instant, so a pair issued together always
// expires in lockstep relative to creation.
func (e *Engine) deriveAccessClaims(refresh *Claims) *Claims {
	issuedAt := refresh.IssuedAt.Time
	return &Claims{
		TokenType: TypeAccess,
		User:      refresh.User,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(e.accessLifetime)),
		},
	}
}

func (e *Engine) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.secret)
}
