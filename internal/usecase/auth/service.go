package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainUser "identity-service/internal/domain/user"
	"identity-service/internal/logger"
	"identity-service/internal/token"
	apperrors "identity-service/pkg/errors"
	"identity-service/pkg/utils"
)

// Service implements the sign-up, sign-in, sign-out and token refresh
// use cases.
type Service struct {
	users  domainUser.Repository
	tokens *token.Engine
}

func NewService(users domainUser.Repository, tokens *token.Engine) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

// SignUp registers a new account. Email uniqueness is enforced before
// creation; a taken address surfaces as a field-level validation error.
func (s *Service) SignUp(ctx context.Context, req *SignUpRequest) (*UserResponse, error) {
	return s.register(ctx, req, false, false)
}

func (s *Service) register(ctx context.Context, req *SignUpRequest, staff, super bool) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domainUser.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		logger.Warn("Sign-up attempt with registered email",
			zap.String("event", "signup_duplicate_email"),
		)
		return nil, apperrors.ErrEmailTaken
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &domainUser.User{
		Email:          req.Email,
		PasswordHashed: hashed,
		FullName:       req.FullName,
		PhoneNumber:    req.Phone,
		IsActive:       true,
		IsStaff:        staff,
		IsSuperuser:    super,
		CreatedAt:      time.Now(),
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.Info("User registered",
		zap.String("user_id", u.ID.String()),
		zap.String("event", "user_registered"),
	)

	return ToUserResponse(u), nil
}

// SignIn authenticates the credentials and issues a token pair. Unknown
// email, wrong password and an inactive account all produce the same
// failure so callers cannot probe which accounts exist.
func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (*TokenPairResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			// Burn a hash comparison so this path costs the same as a
			// wrong password.
			utils.BurnPasswordCheck(req.Password)
			return nil, apperrors.ErrWrongCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(u.PasswordHashed, req.Password) {
		return nil, apperrors.ErrWrongCredentials
	}

	if !u.IsActive {
		logger.Warn("Sign-in attempt for inactive user",
			zap.String("user_id", u.ID.String()),
			zap.String("event", "signin_inactive_user"),
		)
		return nil, apperrors.ErrWrongCredentials
	}

	pair, err := s.tokens.IssuePair(token.ToClaims(u))
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	logger.Info("User signed in",
		zap.String("user_id", u.ID.String()),
		zap.String("event", "user_signed_in"),
	)

	return &TokenPairResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
	}, nil
}

// SignOut blacklists the refresh token. Any verification failure maps
// to the generic invalid-token error.
func (s *Service) SignOut(ctx context.Context, req *SignOutRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	if err := s.tokens.Revoke(ctx, req.RefreshToken); err != nil {
		return err
	}

	logger.Info("Refresh token revoked", zap.String("event", "user_signed_out"))
	return nil
}

// Refresh rotates the refresh token, returning a new access token and,
// when rotation is enabled, a replacement refresh token.
func (s *Service) Refresh(ctx context.Context, req *RefreshRequest) (*RefreshResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	result, err := s.tokens.Rotate(ctx, req.Refresh)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{
		Access:  result.Access,
		Refresh: result.Refresh,
	}, nil
}

// ResolveUser loads the account referenced by a verified token's user
// claim. Used by the request boundary to authenticate bearer tokens.
func (s *Service) ResolveUser(ctx context.Context, claims *token.Claims) (*domainUser.User, error) {
	if claims.User.ID == "" {
		return nil, apperrors.ErrNoUserClaim
	}

	id, err := uuid.Parse(claims.User.ID)
	if err != nil {
		return nil, apperrors.ErrNoUserClaim
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if !u.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	return u, nil
}

// CreateStaffUser registers an account with staff privileges. Intended
// for operator tooling, not exposed over HTTP.
func (s *Service) CreateStaffUser(ctx context.Context, req *SignUpRequest) (*UserResponse, error) {
	return s.register(ctx, req, true, false)
}

// CreateSuperuser registers an account with staff and admin privileges.
func (s *Service) CreateSuperuser(ctx context.Context, req *SignUpRequest) (*UserResponse, error) {
	return s.register(ctx, req, true, true)
}
