package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesoreria/backend/internal/domain/cashcut"
	"github.com/tesoreria/backend/internal/infrastructure/config"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret: testSecret,
		Issuer: "test-issuer",
	})
}

// signTestToken produces a token the way the identity service would
func signTestToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func testClaims() *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Issuer:    "test-issuer",
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
		UserID:    "user-1",
		Username:  "cajero1",
		Role:      "CAJERO",
		BranchID:  "norte",
		SessionID: "sess-42",
	}
}

func TestJWTService_ValidateToken(t *testing.T) {
	svc := newTestJWTService()

	t.Run("accepts valid token", func(t *testing.T) {
		token := signTestToken(t, testClaims(), testSecret)

		claims, err := svc.ValidateToken(token)

		require.NoError(t, err)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, "cajero1", claims.Username)
		assert.Equal(t, "CAJERO", claims.Role)
		assert.Equal(t, "norte", claims.BranchID)
	})

	t.Run("rejects wrong signature", func(t *testing.T) {
		token := signTestToken(t, testClaims(), "some-other-secret-key-32-chars!!")

		_, err := svc.ValidateToken(token)

		assert.Equal(t, ErrInvalidToken, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		claims := testClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		token := signTestToken(t, claims, testSecret)

		_, err := svc.ValidateToken(token)

		assert.Equal(t, ErrExpiredToken, err)
	})

	t.Run("rejects not yet valid token", func(t *testing.T) {
		claims := testClaims()
		claims.NotBefore = jwt.NewNumericDate(time.Now().Add(time.Hour))
		token := signTestToken(t, claims, testSecret)

		_, err := svc.ValidateToken(token)

		assert.Equal(t, ErrTokenNotYetValid, err)
	})

	t.Run("rejects missing user id", func(t *testing.T) {
		claims := testClaims()
		claims.UserID = ""
		token := signTestToken(t, claims, testSecret)

		_, err := svc.ValidateToken(token)

		assert.Equal(t, ErrMissingUserID, err)
	})

	t.Run("rejects missing role", func(t *testing.T) {
		claims := testClaims()
		claims.Role = ""
		token := signTestToken(t, claims, testSecret)

		_, err := svc.ValidateToken(token)

		assert.Equal(t, ErrMissingRole, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.Equal(t, ErrInvalidToken, err)
	})
}

func TestClaims_RoleContext(t *testing.T) {
	t.Run("maps known role", func(t *testing.T) {
		claims := testClaims()

		rc := claims.RoleContext()

		assert.Equal(t, cashcut.RoleCashier, rc.Role)
		assert.Equal(t, "norte", rc.BranchID)
	})

	t.Run("admin role", func(t *testing.T) {
		claims := testClaims()
		claims.Role = "ADMIN"
		claims.BranchID = ""

		rc := claims.RoleContext()

		assert.Equal(t, cashcut.RoleAdmin, rc.Role)
		assert.Empty(t, rc.BranchID)
	})

	t.Run("unknown role falls back to cashier", func(t *testing.T) {
		claims := testClaims()
		claims.Role = "SUPERUSER"

		rc := claims.RoleContext()

		assert.Equal(t, cashcut.RoleCashier, rc.Role)
	})
}

func TestClaims_EffectiveSessionID(t *testing.T) {
	t.Run("prefers explicit session", func(t *testing.T) {
		claims := testClaims()
		assert.Equal(t, "sess-42", claims.EffectiveSessionID())
	})

	t.Run("falls back to token id", func(t *testing.T) {
		claims := testClaims()
		claims.SessionID = ""
		assert.Equal(t, "jti-1", claims.EffectiveSessionID())
	})
}
