package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// RequireRole allows the request when the token role is one of roles.
func RequireRole(roles ...jwt.Role) func(http.Handler) http.Handler {
	allowed := make(map[jwt.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, "Insufficient permissions")
				return
			}

			roleStr, _ := claims["role"].(string)
			if !allowed[jwt.Role(roleStr)] {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: role '%s' is not allowed", roleStr))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager allows payroll managers and admins.
func RequireManager(next http.Handler) http.Handler {
	return RequireRole(jwt.RolePayrollManager, jwt.RoleAdmin)(next)
}
