package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-lifecycle-go/internal/domain/tenant"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-lifecycle-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token and binds the
// token's identity to the request as a tenant.Context. It must run after
// jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Missing access token")
			return
		}

		c, err := jwt.ParseClaims(claims)
		if err != nil {
			response.Unauthorized(w, "Invalid access token")
			return
		}

		tc := tenant.Context{
			CompanyID:  c.CompanyID,
			UserID:     c.UserID,
			EmployeeID: c.EmployeeID,
			Role:       c.Role,
		}
		next.ServeHTTP(w, r.WithContext(tenant.WithContext(r.Context(), tc)))
	})
}

// RequireCompany rejects users that are not yet attached to a company.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tc, ok := tenant.FromContext(r.Context())
		if !ok {
			response.Unauthorized(w, "Unauthorized")
			return
		}
		if err := tc.Validate(); err != nil {
			response.HandleError(w, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
