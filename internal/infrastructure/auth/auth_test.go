package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/erp/stocktransfer/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-that-is-long-enough",
		Issuer:                "erp-backend",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	svc := newTestService()
	tenantID, userID := uuid.New(), uuid.New()

	token, err := svc.IssueAccessToken(IssueInput{
		TenantID:    tenantID,
		UserID:      userID,
		Username:    "clerk",
		Permissions: []string{"transfer.view", "transfer.create"},
	})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, tenantID.String(), claims.TenantID)
	assert.Equal(t, "clerk", claims.Username)
	assert.True(t, claims.HasPermission("transfer.create"))
	assert.False(t, claims.HasPermission("transfer.delete"))
	assert.NotEmpty(t, claims.ID)
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.RemainingTTL().Seconds(), 5)

	biz, err := claims.BusinessContext(BusinessSettings{AccountingMethod: "fefo", EditDays: 7})
	require.NoError(t, err)
	assert.Equal(t, tenantID, biz.TenantID)
	assert.Equal(t, userID, biz.UserID)
	assert.Equal(t, "fefo", biz.AccountingMethod)
	assert.Equal(t, 7, biz.EditDays)
	assert.True(t, biz.Can("transfer.view"))
}

func TestJWTService_Rejections(t *testing.T) {
	svc := newTestService()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-entirely", Issuer: "erp-backend", AccessTokenExpiration: time.Minute})
		token, err := other.IssueAccessToken(IssueInput{TenantID: uuid.New(), UserID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := newTestService()
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.IssueAccessToken(IssueInput{TenantID: uuid.New(), UserID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-that-is-long-enough", Issuer: "someone-else", AccessTokenExpiration: time.Minute})
		token, err := other.IssueAccessToken(IssueInput{TenantID: uuid.New(), UserID: uuid.New()})
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing tenant", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "erp-backend",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
			UserID: uuid.NewString(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrMissingTenantID)
	})

	t.Run("unparseable ids", func(t *testing.T) {
		c := &Claims{TenantID: "nope", UserID: uuid.NewString()}
		_, err := c.BusinessContext(BusinessSettings{})
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}

func TestRedisRevocationList(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	list := NewRedisRevocationList(client)
	ctx := context.Background()

	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.Close()
	_, err = list.IsRevoked(ctx, "jti-1")
	assert.Error(t, err)
}

func TestInMemoryRevocationList(t *testing.T) {
	list := NewInMemoryRevocationList()
	ctx := context.Background()

	require.NoError(t, list.Revoke(ctx, "a", time.Hour))
	require.NoError(t, list.Revoke(ctx, "b", -time.Second))

	revoked, err := list.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = list.IsRevoked(ctx, "b")
	require.NoError(t, err)
	assert.False(t, revoked, "expired entries are dropped")

	revoked, err = list.IsRevoked(ctx, "c")
	require.NoError(t, err)
	assert.False(t, revoked)
}
