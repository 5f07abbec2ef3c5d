package password

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"identity-service/internal/config"
	domainUser "identity-service/internal/domain/user"
	"identity-service/internal/token"
	apperrors "identity-service/pkg/errors"
	"identity-service/pkg/utils"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domainUser.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domainUser.User)}
}

func (r *fakeUserRepo) add(email, passwordHash string, phone *string) *domainUser.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &domainUser.User{
		ID:             uuid.New(),
		Email:          email,
		PasswordHashed: passwordHash,
		FullName:       "Jane Doe",
		PhoneNumber:    phone,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
	r.users[u.ID] = u
	clone := *u
	return &clone
}

func (r *fakeUserRepo) Create(_ context.Context, u *domainUser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domainUser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domainUser.ErrUserNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domainUser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, domainUser.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domainUser.ErrUserNotFound
	}
	u.PasswordHashed = passwordHash
	return nil
}

type fakeCodeRepo struct {
	mu    sync.Mutex
	users *fakeUserRepo
	codes []*domainUser.ResetCode
}

func newFakeCodeRepo(users *fakeUserRepo) *fakeCodeRepo {
	return &fakeCodeRepo{users: users}
}

func (r *fakeCodeRepo) Create(_ context.Context, code *domainUser.ResetCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	code.WasUsed = false
	clone := *code
	r.codes = append(r.codes, &clone)
	return nil
}

func (r *fakeCodeRepo) GetLatest(ctx context.Context, email, code, codeType string) (*domainUser.ResetCode, error) {
	owner, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, domainUser.ErrResetCodeNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.codes) - 1; i >= 0; i-- {
		c := r.codes[i]
		if c.UserID == owner.ID && c.Code == code && c.Type == codeType {
			clone := *c
			return &clone, nil
		}
	}
	return nil, domainUser.ErrResetCodeNotFound
}

func (r *fakeCodeRepo) Consume(_ context.Context, codeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.codes {
		if c.ID == codeID {
			if c.WasUsed {
				return domainUser.ErrResetCodeUsed
			}
			c.WasUsed = true
			return nil
		}
	}
	return domainUser.ErrResetCodeNotFound
}

// latestFor returns the stored row itself so tests can backdate it.
func (r *fakeCodeRepo) latestFor(userID uuid.UUID) *domainUser.ResetCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.codes) - 1; i >= 0; i-- {
		if r.codes[i].UserID == userID {
			return r.codes[i]
		}
	}
	return nil
}

type sentMessage struct {
	Recipient string
	Subject   string
	Message   string
}

type fakeSender struct {
	sent    chan sentMessage
	sendErr error
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(chan sentMessage, 16)}
}

func (s *fakeSender) ServiceType() string { return "EMAIL" }

func (s *fakeSender) Send(_ context.Context, recipient, subject, message string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent <- sentMessage{Recipient: recipient, Subject: subject, Message: message}
	return nil
}

func (s *fakeSender) Recipient(u *domainUser.User) (string, error) {
	return u.Email, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:                 "test-secret",
			AccessLifetimeMinutes:  5,
			RefreshLifetimeHours:   24,
			RotateRefreshTokens:    true,
			BlacklistAfterRotation: true,
		},
		ResetPassword: config.ResetPasswordConfig{
			CodeExpirationHours:  24,
			TokenLifetimeMinutes: 60,
		},
	}
}

type fixture struct {
	service *Service
	users   *fakeUserRepo
	codes   *fakeCodeRepo
	sender  *fakeSender
	engine  *token.Engine
	user    *domainUser.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	users := newFakeUserRepo()
	codes := newFakeCodeRepo(users)
	sender := newFakeSender()
	engine := token.NewEngine(testConfig(), nil)

	hashed, err := utils.HashPassword("old password")
	require.NoError(t, err)
	u := users.add("jane@example.com", hashed, nil)

	return &fixture{
		service: NewService(users, codes, engine, sender, testConfig()),
		users:   users,
		codes:   codes,
		sender:  sender,
		engine:  engine,
		user:    u,
	}
}

func (f *fixture) awaitDelivery(t *testing.T) sentMessage {
	t.Helper()
	select {
	case msg := <-f.sender.sent:
		return msg
	case <-time.After(time.Second):
		t.Fatal("reset code was never dispatched")
		return sentMessage{}
	}
}

func TestRequestCode_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "nobody@example.com",
	})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Empty(t, f.codes.codes)
}

func TestRequestCode_StoresAndDispatches(t *testing.T) {
	f := newFixture(t)

	err := f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "jane@example.com",
	})
	require.NoError(t, err)

	stored := f.codes.latestFor(f.user.ID)
	require.NotNil(t, stored)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), stored.Code)
	assert.Equal(t, domainUser.ResetPasswordRequestType, stored.Type)
	assert.False(t, stored.WasUsed)

	msg := f.awaitDelivery(t)
	assert.Equal(t, "jane@example.com", msg.Recipient)
	assert.Equal(t, "Password reset request", msg.Subject)
	assert.Contains(t, msg.Message, stored.Code)
}

func TestRequestCode_DeliveryFailureKeepsCodeValid(t *testing.T) {
	f := newFixture(t)
	f.sender.sendErr = errors.New("provider down")

	err := f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "jane@example.com",
	})
	require.NoError(t, err)

	stored := f.codes.latestFor(f.user.ID)
	require.NotNil(t, stored)

	// The code row was written before the send attempt; it is consumable
	// even though delivery failed.
	resp, err := f.service.ValidateCode(context.Background(), &ValidateCodeRequest{
		Email: "jane@example.com",
		Code:  stored.Code,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestValidateCode(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "jane@example.com",
	}))
	stored := f.codes.latestFor(f.user.ID)

	resp, err := f.service.ValidateCode(context.Background(), &ValidateCodeRequest{
		Email: "jane@example.com",
		Code:  stored.Code,
	})
	require.NoError(t, err)

	decoded, err := token.DecodeUserRef(resp.Uidb64)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, decoded)

	u, err := f.users.GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, f.engine.CheckResetToken(u, resp.Token))

	assert.True(t, stored.WasUsed)
}

func TestValidateCode_WrongCode(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "jane@example.com",
	}))

	_, err := f.service.ValidateCode(context.Background(), &ValidateCodeRequest{
		Email: "jane@example.com",
		Code:  "000000",
	})
	if f.codes.latestFor(f.user.ID).Code == "000000" {
		t.Skip("random code collided with the probe value")
	}
	assert.ErrorIs(t, err, apperrors.ErrResetRequestNotFound)

	_, err = f.service.ValidateCode(context.Background(), &ValidateCodeRequest{
		Email: "nobody@example.com",
		Code:  "123456",
	})
	assert.ErrorIs(t, err, apperrors.ErrResetRequestNotFound)
}

func TestValidateCode_Expired(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "jane@example.com",
	}))
	stored := f.codes.latestFor(f.user.ID)
	stored.CreatedAt = time.Now().Add(-25 * time.Hour)

	_, err := f.service.ValidateCode(context.Background(), &ValidateCodeRequest{
		Email: "jane@example.com",
		Code:  stored.Code,
	})
	assert.ErrorIs(t, err, apperrors.ErrCodeInvalidOrExpired)

	// Expiry is implicit; the row is not flipped to used.
	assert.False(t, stored.WasUsed)
}

func TestValidateCode_SingleUse(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "jane@example.com",
	}))
	stored := f.codes.latestFor(f.user.ID)

	req := &ValidateCodeRequest{Email: "jane@example.com", Code: stored.Code}

	_, err := f.service.ValidateCode(context.Background(), req)
	require.NoError(t, err)

	_, err = f.service.ValidateCode(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrCodeInvalidOrExpired)
}

func TestValidateCode_OlderCodeStaysValid(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "jane@example.com",
	}))
	first := f.codes.latestFor(f.user.ID)

	require.NoError(t, f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "jane@example.com",
	}))
	second := f.codes.latestFor(f.user.ID)
	if first.Code == second.Code {
		t.Skip("consecutive random codes collided")
	}

	// Requesting a new code does not invalidate the outstanding one.
	_, err := f.service.ValidateCode(context.Background(), &ValidateCodeRequest{
		Email: "jane@example.com",
		Code:  first.Code,
	})
	assert.NoError(t, err)
}

func TestValidateCode_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.ValidateCode(context.Background(), &ValidateCodeRequest{
		Email: "jane@example.com",
		Code:  "12345",
	})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSubmitNewPassword_FullFlow(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.RequestCode(context.Background(), &RequestCodeRequest{
		Email: "jane@example.com",
	}))
	stored := f.codes.latestFor(f.user.ID)

	resp, err := f.service.ValidateCode(context.Background(), &ValidateCodeRequest{
		Email: "jane@example.com",
		Code:  stored.Code,
	})
	require.NoError(t, err)

	err = f.service.SubmitNewPassword(context.Background(), resp.Uidb64, resp.Token, &SubmitPasswordRequest{
		Password: "new password",
	})
	require.NoError(t, err)

	u, err := f.users.GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword(u.PasswordHashed, "new password"))
	assert.False(t, utils.CheckPassword(u.PasswordHashed, "old password"))

	// The password change rotated the signing key, so the token is spent.
	err = f.service.SubmitNewPassword(context.Background(), resp.Uidb64, resp.Token, &SubmitPasswordRequest{
		Password: "another password",
	})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestSubmitNewPassword_BadInputs(t *testing.T) {
	f := newFixture(t)

	resetToken, err := f.engine.MakeResetToken(f.user)
	require.NoError(t, err)

	err = f.service.SubmitNewPassword(context.Background(), "%%%", resetToken, &SubmitPasswordRequest{
		Password: "new password",
	})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	err = f.service.SubmitNewPassword(context.Background(), token.EncodeUserRef(uuid.New()), resetToken, &SubmitPasswordRequest{
		Password: "new password",
	})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	err = f.service.SubmitNewPassword(context.Background(), token.EncodeUserRef(f.user.ID), "tampered", &SubmitPasswordRequest{
		Password: "new password",
	})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	// The stored password is untouched after all the failed attempts.
	u, err := f.users.GetByID(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword(u.PasswordHashed, "old password"))
}
