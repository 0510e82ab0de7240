package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
)

// RequireOwner requires owner role
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.FromContext(r.Context())
		if !ok || tc.Role != user.RoleOwner {
			response.HandleError(w, user.ErrOwnerAccessRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireManager requires manager or owner role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.FromContext(r.Context())
		if !ok || !tc.IsManager() {
			response.HandleError(w, user.ErrManagerAccessRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := tenant.FromContext(r.Context())
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}
			if !tc.Can(permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, tc.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
