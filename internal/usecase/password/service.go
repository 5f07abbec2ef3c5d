package password

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"identity-service/internal/config"
	domainUser "identity-service/internal/domain/user"
	"identity-service/internal/logger"
	"identity-service/internal/messenger"
	"identity-service/internal/token"
	apperrors "identity-service/pkg/errors"
	"identity-service/pkg/utils"
)

const (
	codeSubject = "Password reset request"

	// How long a notification dispatch may run before it is abandoned.
	// Delivery is best effort; the code row is already persisted.
	dispatchTimeout = 30 * time.Second
)

// Service implements the three-step password reset flow: request a
// one-time code, validate it, submit a new password.
type Service struct {
	users  domainUser.Repository
	codes  domainUser.ResetCodeRepository
	tokens *token.Engine
	sender messenger.Sender
	window time.Duration

	now func() time.Time
}

func NewService(
	users domainUser.Repository,
	codes domainUser.ResetCodeRepository,
	tokens *token.Engine,
	sender messenger.Sender,
	cfg *config.Config,
) *Service {
	return &Service{
		users:  users,
		codes:  codes,
		tokens: tokens,
		sender: sender,
		window: cfg.ResetPassword.CodeExpiration(),
		now:    time.Now,
	}
}

// RequestCode creates a reset code for the user and dispatches it
// through the configured messenger. The row is written before the send
// attempt, so a delivery failure never invalidates the code. Older
// outstanding codes stay valid until they expire on their own.
func (s *Service) RequestCode(ctx context.Context, req *RequestCodeRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return apperrors.ErrUserNotFound
		}
		return err
	}

	code, err := utils.GenerateCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	resetCode := &domainUser.ResetCode{
		UserID: u.ID,
		Code:   code,
		Type:   domainUser.ResetPasswordRequestType,
	}
	if err := s.codes.Create(ctx, resetCode); err != nil {
		return fmt.Errorf("failed to create reset code: %w", err)
	}

	s.dispatchCode(u, code)

	logger.Info("Reset code issued",
		zap.String("user_id", u.ID.String()),
		zap.String("event", "reset_code_requested"),
	)

	return nil
}

// dispatchCode sends the code out of band, detached from the request so
// a slow or failing provider cannot unwind the use case.
func (s *Service) dispatchCode(u *domainUser.User, code string) {
	recipient, err := s.sender.Recipient(u)
	if err != nil {
		logger.Error("Failed to resolve reset code recipient",
			zap.String("user_id", u.ID.String()),
			zap.String("messenger", s.sender.ServiceType()),
			zap.Error(err),
		)
		return
	}

	message := fmt.Sprintf("Hi, This is your password reset code: %s", code)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := s.sender.Send(ctx, recipient, codeSubject, message); err != nil {
			logger.Error("Failed to deliver reset code",
				zap.String("user_id", u.ID.String()),
				zap.String("messenger", s.sender.ServiceType()),
				zap.Error(err),
			)
		}
	}()
}

// ValidateCode consumes the matching reset code and returns the opaque
// user reference plus a short-lived reset token. Consumption happens
// before the caller ever submits a password: a validated code cannot be
// replayed to mint a second reference.
func (s *Service) ValidateCode(ctx context.Context, req *ValidateCodeRequest) (*ValidateCodeResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	resetCode, err := s.codes.GetLatest(ctx, req.Email, req.Code, domainUser.ResetPasswordRequestType)
	if err != nil {
		if errors.Is(err, domainUser.ErrResetCodeNotFound) {
			return nil, apperrors.ErrResetRequestNotFound
		}
		return nil, err
	}

	if !resetCode.EligibleAt(s.now(), s.window) {
		return nil, apperrors.ErrCodeInvalidOrExpired
	}

	if err := s.codes.Consume(ctx, resetCode.ID); err != nil {
		if errors.Is(err, domainUser.ErrResetCodeUsed) {
			// Lost a race against a concurrent validation.
			return nil, apperrors.ErrCodeInvalidOrExpired
		}
		return nil, fmt.Errorf("failed to consume reset code: %w", err)
	}

	u, err := s.users.GetByID(ctx, resetCode.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reset code owner: %w", err)
	}

	resetToken, err := s.tokens.MakeResetToken(u)
	if err != nil {
		return nil, fmt.Errorf("failed to issue reset token: %w", err)
	}

	logger.Info("Reset code validated",
		zap.String("user_id", u.ID.String()),
		zap.String("event", "reset_code_validated"),
	)

	return &ValidateCodeResponse{
		Uidb64: token.EncodeUserRef(u.ID),
		Token:  resetToken,
	}, nil
}

// SubmitNewPassword verifies the opaque reference and reset token and
// stores the new password. A tampered reference, an unknown user and a
// stale token are indistinguishable to the caller.
func (s *Service) SubmitNewPassword(ctx context.Context, uidb64, resetToken string, req *SubmitPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	id, err := token.DecodeUserRef(uidb64)
	if err != nil {
		return apperrors.ErrUserNotFound
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return apperrors.ErrUserNotFound
	}

	if !s.tokens.CheckResetToken(u, resetToken) {
		return apperrors.ErrUserNotFound
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, u.ID, hashed); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	logger.Info("Password reset completed",
		zap.String("user_id", u.ID.String()),
		zap.String("event", "password_reset"),
	)

	return nil
}
