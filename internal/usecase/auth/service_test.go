package auth

import (
	"context"
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

func (r *fakeUserRepo) Create(_ context.Context, u *domainUser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return domainUser.ErrEmailTaken
		}
	}
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

func (r *fakeUserRepo) setActive(userID uuid.UUID, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID].IsActive = active
}

type memBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{entries: make(map[string]time.Time)}
}

func (m *memBlacklist) Add(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[jti] = expiresAt
	return nil
}

func (m *memBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[jti]
	return ok, nil
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

func newTestService() (*Service, *fakeUserRepo, *token.Engine) {
	repo := newFakeUserRepo()
	engine := token.NewEngine(testConfig(), newMemBlacklist())
	return NewService(repo, engine), repo, engine
}

func signUpRequest() *SignUpRequest {
	return &SignUpRequest{
		Email:    "jane@example.com",
		FullName: "Jane Doe",
		Password: "correct horse battery staple",
	}
}

func TestSignUp(t *testing.T) {
	service, repo, _ := newTestService()

	resp, err := service.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "jane@example.com", resp.Email)
	assert.Equal(t, "Jane Doe", resp.FullName)

	stored, err := repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsActive)
	assert.False(t, stored.IsStaff)
	assert.False(t, stored.IsSuperuser)
	assert.NotEqual(t, "correct horse battery staple", stored.PasswordHashed)
	assert.True(t, utils.CheckPassword(stored.PasswordHashed, "correct horse battery staple"))
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	req := signUpRequest()
	req.FullName = "Someone Else"
	_, err = service.SignUp(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestSignUp_InvalidInput(t *testing.T) {
	service, _, _ := newTestService()

	req := signUpRequest()
	req.Email = "not-an-email"
	_, err := service.SignUp(context.Background(), req)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestSignIn(t *testing.T) {
	service, _, engine := newTestService()

	_, err := service.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	tokens, err := service.SignIn(context.Background(), &SignInRequest{
		Email:    "jane@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	claims, err := engine.Verify(context.Background(), tokens.AccessToken, token.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.User.Email)
	assert.Equal(t, "Jane Doe", claims.User.FullName)

	_, err = engine.Verify(context.Background(), tokens.RefreshToken, token.TypeRefresh)
	assert.NoError(t, err)
}

func TestSignIn_UniformFailure(t *testing.T) {
	service, repo, _ := newTestService()

	resp, err := service.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)

	// Unknown email, wrong password and an inactive account must be
	// indistinguishable to the caller.
	_, unknownErr := service.SignIn(context.Background(), &SignInRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	_, wrongErr := service.SignIn(context.Background(), &SignInRequest{
		Email:    "jane@example.com",
		Password: "wrong",
	})

	repo.setActive(resp.ID, false)
	_, inactiveErr := service.SignIn(context.Background(), &SignInRequest{
		Email:    "jane@example.com",
		Password: "correct horse battery staple",
	})

	assert.ErrorIs(t, unknownErr, apperrors.ErrWrongCredentials)
	assert.Equal(t, unknownErr, wrongErr)
	assert.Equal(t, unknownErr, inactiveErr)
}

func TestSignIn_WhitespaceSignificant(t *testing.T) {
	service, _, _ := newTestService()

	req := signUpRequest()
	req.Password = "hunter2 "
	_, err := service.SignUp(context.Background(), req)
	require.NoError(t, err)

	_, err = service.SignIn(context.Background(), &SignInRequest{
		Email:    "jane@example.com",
		Password: "hunter2",
	})
	assert.ErrorIs(t, err, apperrors.ErrWrongCredentials)

	_, err = service.SignIn(context.Background(), &SignInRequest{
		Email:    "jane@example.com",
		Password: "hunter2 ",
	})
	assert.NoError(t, err)
}

func TestSignOut_RevokesRefreshToken(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)
	tokens, err := service.SignIn(context.Background(), &SignInRequest{
		Email:    "jane@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	require.NoError(t, service.SignOut(context.Background(), &SignOutRequest{
		RefreshToken: tokens.RefreshToken,
	}))

	// The revoked token can no longer be refreshed or signed out again.
	_, err = service.Refresh(context.Background(), &RefreshRequest{Refresh: tokens.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrTokenBlacklisted)

	err = service.SignOut(context.Background(), &SignOutRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestSignOut_RejectsAccessToken(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)
	tokens, err := service.SignIn(context.Background(), &SignInRequest{
		Email:    "jane@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	err = service.SignOut(context.Background(), &SignOutRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestRefresh_RotatesPair(t *testing.T) {
	service, _, engine := newTestService()

	_, err := service.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)
	tokens, err := service.SignIn(context.Background(), &SignInRequest{
		Email:    "jane@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	result, err := service.Refresh(context.Background(), &RefreshRequest{Refresh: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Access)
	assert.NotEmpty(t, result.Refresh)

	// The rotated-out token is dead, the replacement works.
	_, err = service.Refresh(context.Background(), &RefreshRequest{Refresh: tokens.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrTokenBlacklisted)

	_, err = engine.Verify(context.Background(), result.Refresh, token.TypeRefresh)
	assert.NoError(t, err)
}

func TestResolveUser(t *testing.T) {
	service, repo, engine := newTestService()

	resp, err := service.SignUp(context.Background(), signUpRequest())
	require.NoError(t, err)
	tokens, err := service.SignIn(context.Background(), &SignInRequest{
		Email:    "jane@example.com",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	claims, err := engine.Verify(context.Background(), tokens.AccessToken, token.TypeAccess)
	require.NoError(t, err)

	u, err := service.ResolveUser(context.Background(), claims)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, u.ID)

	// Deactivating the account invalidates otherwise valid tokens.
	repo.setActive(resp.ID, false)
	_, err = service.ResolveUser(context.Background(), claims)
	assert.ErrorIs(t, err, apperrors.ErrUserInactive)
}

func TestResolveUser_BadClaims(t *testing.T) {
	service, _, _ := newTestService()

	_, err := service.ResolveUser(context.Background(), &token.Claims{})
	assert.ErrorIs(t, err, apperrors.ErrNoUserClaim)

	_, err = service.ResolveUser(context.Background(), &token.Claims{
		User: token.UserClaims{ID: "not-a-uuid"},
	})
	assert.ErrorIs(t, err, apperrors.ErrNoUserClaim)

	_, err = service.ResolveUser(context.Background(), &token.Claims{
		User: token.UserClaims{ID: uuid.NewString()},
	})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestCreatePrivilegedUsers(t *testing.T) {
	service, repo, _ := newTestService()

	staffReq := signUpRequest()
	staffReq.Email = "staff@example.com"
	staff, err := service.CreateStaffUser(context.Background(), staffReq)
	require.NoError(t, err)

	superReq := signUpRequest()
	superReq.Email = "root@example.com"
	super, err := service.CreateSuperuser(context.Background(), superReq)
	require.NoError(t, err)

	storedStaff, err := repo.GetByID(context.Background(), staff.ID)
	require.NoError(t, err)
	assert.True(t, storedStaff.IsStaff)
	assert.False(t, storedStaff.IsSuperuser)

	storedSuper, err := repo.GetByID(context.Background(), super.ID)
	require.NoError(t, err)
	assert.True(t, storedSuper.IsStaff)
	assert.True(t, storedSuper.IsSuperuser)
}
