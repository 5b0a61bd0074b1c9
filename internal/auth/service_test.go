package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgAuth "github.com/dreamcandylab/candylab-backend/pkg/auth"
	"github.com/dreamcandylab/candylab-backend/pkg/auth/session"
	"github.com/dreamcandylab/candylab-backend/pkg/config"
	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	"github.com/dreamcandylab/candylab-backend/pkg/enums"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
	"github.com/dreamcandylab/candylab-backend/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "candylab",
	ExpirationMinutes: 30,
}

func TestServiceLoginMintsClaims(t *testing.T) {
	user := newTestUser(t, "shopper@example.com", "jelly-pass", enums.UserRoleUser)
	svc, sessions := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Shopper@Example.com ",
		Password: "jelly-pass",
	})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleUser, claims.Role)
	assert.Equal(t, "Jelly Fan", claims.DisplayName)
	assert.Equal(t, resp.RefreshToken, sessions.tokens[claims.ID])
	require.NotNil(t, resp.User)
	assert.NotNil(t, resp.User.LastLoginAt)
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	user := newTestUser(t, "shopper@example.com", "jelly-pass", enums.UserRoleUser)
	svc, _ := buildTestService(t, user)

	cases := map[string]LoginRequest{
		"wrong password": {Email: user.Email, Password: "nope-nope"},
		"unknown email":  {Email: "ghost@example.com", Password: "jelly-pass"},
		"blank email":    {Email: "  ", Password: "jelly-pass"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), req)
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
		})
	}
}

func TestServiceLoginRejectsInactiveUser(t *testing.T) {
	user := newTestUser(t, "gone@example.com", "jelly-pass", enums.UserRoleUser)
	user.IsActive = false
	svc, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "jelly-pass"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	user := newTestUser(t, "admin@example.com", "jelly-pass", enums.UserRoleUser)
	svc, sessions := buildTestService(t, user)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: "jelly-pass"})
	require.NoError(t, err)
	old, err := pkgAuth.ParseAccessToken(testJWT, login.AccessToken)
	require.NoError(t, err)

	// promotion is picked up on rotation
	user.Role = enums.UserRoleAdmin

	pair, err := svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.NoError(t, err)

	claims, err := pkgAuth.ParseAccessToken(testJWT, pair.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, old.ID, claims.ID)
	assert.Equal(t, enums.UserRoleAdmin, claims.Role)
	assert.NotContains(t, sessions.tokens, old.ID)
	assert.Equal(t, pair.RefreshToken, sessions.tokens[claims.ID])

	_, err = svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestServiceRefreshAcceptsExpiredAccessToken(t *testing.T) {
	user := newTestUser(t, "late@example.com", "jelly-pass", enums.UserRoleUser)
	svc, sessions := buildTestService(t, user)

	accessID := session.NewAccessID()
	expired, err := pkgAuth.MintAccessToken(testJWT, time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	require.NoError(t, err)
	sessions.tokens[accessID] = "refresh-1"

	pair, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: expired, RefreshToken: "refresh-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestServiceLogoutRevokes(t *testing.T) {
	user := newTestUser(t, "bye@example.com", "jelly-pass", enums.UserRoleUser)
	svc, sessions := buildTestService(t, user)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: user.Email, Password: "jelly-pass"})
	require.NoError(t, err)
	require.Len(t, sessions.tokens, 1)

	require.NoError(t, svc.Logout(ctx, login.AccessToken))
	assert.Empty(t, sessions.tokens)

	err = svc.Logout(ctx, "not-a-jwt")
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestServiceLoginRehashesWeakHash(t *testing.T) {
	weak, err := security.HashPassword("jelly-pass", config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1})
	require.NoError(t, err)
	user := newTestUser(t, "old@example.com", "jelly-pass", enums.UserRoleUser)
	user.PasswordHash = weak

	repo := &stubUserRepo{user: user}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: newStubSessionManager(),
		JWTConfig:      testJWT,
		PasswordConfig: config.PasswordConfig{ArgonMemoryKB: 16384, ArgonTime: 2},
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "jelly-pass"})
	require.NoError(t, err)
	assert.NotEqual(t, weak, repo.rehashed)
	assert.NotEmpty(t, repo.rehashed)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{SessionManager: newStubSessionManager()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{UserRepo: &stubUserRepo{}})
	assert.Error(t, err)
}

func buildTestService(t *testing.T, user *models.User) (Service, *stubSessionManager) {
	t.Helper()
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		SessionManager: sessions,
		JWTConfig:      testJWT,
	})
	require.NoError(t, err)
	return svc, sessions
}

func newTestUser(t *testing.T, email, password string, role enums.UserRole) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	require.NoError(t, err)
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Jelly Fan",
		Role:         role,
		IsActive:     true,
	}
}

type stubUserRepo struct {
	user     *models.User
	rehashed string
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (s *stubUserRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.rehashed = hash
	return nil
}

type stubSessionManager struct {
	tokens map[string]string
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{tokens: map[string]string{}}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + uuid.NewString()
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newID := session.NewAccessID()
	token, _ := s.Generate(ctx, newID)
	return newID, token, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.tokens, accessID)
	return nil
}
