package auth

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/repo"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &TokenService{
		Repo:          repo.New(db),
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.SignAccessToken("alice@example.com", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, role, err := svc.ValidateAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
	assert.Equal(t, "admin", role)
}

func TestAccessToken_WrongSecretRejected(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.SignAccessToken("alice@example.com", "user")
	require.NoError(t, err)

	other := &TokenService{JWTSecret: []byte("different-secret")}
	_, _, err = other.ValidateAccess(token)
	assert.Error(t, err)
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := t.Context()

	token, err := svc.SignRefreshToken(ctx, "bob@example.com", "user")
	require.NoError(t, err)

	email, role, err := svc.ValidateRefresh(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", email)
	assert.Equal(t, "user", role)
}

func TestRefreshToken_RevokedRejected(t *testing.T) {
	svc := newTestTokenService(t)
	ctx := t.Context()

	token, err := svc.SignRefreshToken(ctx, "bob@example.com", "user")
	require.NoError(t, err)

	require.NoError(t, svc.Repo.RevokeRefreshTokens(ctx, "bob@example.com"))

	_, _, err = svc.ValidateRefresh(ctx, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revoked")
}

func TestValidateRefresh_RejectsAccessToken(t *testing.T) {
	svc := newTestTokenService(t)

	// An access token signed with the refresh secret still lacks the
	// refresh type claim.
	access := &TokenService{JWTSecret: svc.RefreshSecret}
	token, err := access.SignAccessToken("bob@example.com", "user")
	require.NoError(t, err)

	_, _, err = svc.ValidateRefresh(t.Context(), token)
	assert.Error(t, err)
}
