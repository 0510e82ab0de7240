package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour)
	in := Claims{UserID: "u1", EmployeeID: "e1", CompanyID: "c1", Role: user.RoleManager}

	token, exp, err := svc.GenerateAccessToken(in)
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	m, err := decoded.AsMap(context.Background())
	require.NoError(t, err)

	out, err := ParseClaims(m)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestParseClaims(t *testing.T) {
	_, err := ParseClaims(map[string]any{"type": "refresh", "user_id": "u1", "role": "owner"})
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = ParseClaims(map[string]any{"type": "access", "role": "owner"})
	assert.ErrorIs(t, err, ErrInvalidClaims)

	c, err := ParseClaims(map[string]any{"type": "access", "user_id": "u1", "role": "pending", "company_id": nil})
	require.NoError(t, err)
	assert.Empty(t, c.CompanyID)
	assert.Equal(t, user.RolePending, c.Role)
}
