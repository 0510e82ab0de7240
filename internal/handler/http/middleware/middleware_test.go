package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protected(svc jwt.Service, guards ...func(http.Handler) http.Handler) (http.Handler, *tenant.Context) {
	var seen tenant.Context
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = tenant.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	for i := len(guards) - 1; i >= 0; i-- {
		h = guards[i](h)
	}
	return jwtauth.Verifier(svc.JWTAuth())(AuthRequired(h)), &seen
}

func call(t *testing.T, h http.Handler, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/leave/applications", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func issue(t *testing.T, svc jwt.Service, c jwt.Claims) string {
	t.Helper()
	token, _, err := svc.GenerateAccessToken(c)
	require.NoError(t, err)
	return token
}

func TestAuthRequired_BindsTenant(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Hour)
	h, seen := protected(svc, RequireCompany)

	assert.Equal(t, http.StatusUnauthorized, call(t, h, ""))
	assert.Equal(t, http.StatusUnauthorized, call(t, h, "not-a-token"))

	other := jwt.NewJWTService("other-secret", time.Hour)
	assert.Equal(t, http.StatusUnauthorized, call(t, h, issue(t, other, jwt.Claims{UserID: "u1", CompanyID: "c1", Role: user.RoleEmployee})))

	token := issue(t, svc, jwt.Claims{UserID: "u1", EmployeeID: "e1", CompanyID: "c1", Role: user.RoleEmployee})
	require.Equal(t, http.StatusNoContent, call(t, h, token))
	assert.Equal(t, tenant.Context{CompanyID: "c1", UserID: "u1", EmployeeID: "e1", Role: user.RoleEmployee}, *seen)

	pending := issue(t, svc, jwt.Claims{UserID: "u2", Role: user.RolePending})
	assert.Equal(t, http.StatusForbidden, call(t, h, pending))
}

func TestRoleGuards(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Hour)
	employee := issue(t, svc, jwt.Claims{UserID: "u1", EmployeeID: "e1", CompanyID: "c1", Role: user.RoleEmployee})
	manager := issue(t, svc, jwt.Claims{UserID: "u2", EmployeeID: "e2", CompanyID: "c1", Role: user.RoleManager})
	owner := issue(t, svc, jwt.Claims{UserID: "u3", CompanyID: "c1", Role: user.RoleOwner})

	tests := []struct {
		name  string
		guard func(http.Handler) http.Handler
		token string
		want  int
	}{
		{"manager route, employee", RequireManager, employee, http.StatusForbidden},
		{"manager route, manager", RequireManager, manager, http.StatusNoContent},
		{"manager route, owner", RequireManager, owner, http.StatusNoContent},
		{"owner route, manager", RequireOwner, manager, http.StatusForbidden},
		{"owner route, owner", RequireOwner, owner, http.StatusNoContent},
		{"pay permission, manager", RequirePermission(user.PermissionPayrollPay), manager, http.StatusForbidden},
		{"pay permission, owner", RequirePermission(user.PermissionPayrollPay), owner, http.StatusNoContent},
		{"leave create, employee", RequirePermission(user.PermissionLeaveCreate), employee, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := protected(svc, RequireCompany, tt.guard)
			assert.Equal(t, tt.want, call(t, h, tt.token))
		})
	}
}
