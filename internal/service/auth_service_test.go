package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/ccrm-api/internal/models"
	"github.com/campusops/ccrm-api/internal/repository"
	appErrors "github.com/campusops/ccrm-api/pkg/errors"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	svc := NewAuthService(repository.NewUserRepository(), nil, nil, AuthConfig{
		AccessTokenSecret:  "test_secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "ccrm-test",
	})
	require.NoError(t, svc.SeedAdmin(context.Background(), "admin@ccrm.local", "admin123"))
	return svc
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc := newAuthService(t)

	result, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@ccrm.local",
		Password: "admin123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, models.RoleAdmin, result.User.Role)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@ccrm.local",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@ccrm.local",
		Password: "admin123",
	})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestRefreshRotatesToken(t *testing.T) {
	svc := newAuthService(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@ccrm.local",
		Password: "admin123",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the used token cannot be replayed
	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc := newAuthService(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@ccrm.local",
		Password: "admin123",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), login.User.ID, models.ChangePasswordRequest{
		OldPassword: "admin123",
		NewPassword: "stronger-secret",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "admin@ccrm.local",
		Password: "stronger-secret",
	})
	require.NoError(t, err)
}
