package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired rejects requests without a verified access token.
// It must run after jwtauth.Verifier.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		if token == nil {
			response.Unauthorized(w, "Missing bearer token")
			return
		}
		if !jwt.IsAccessToken(claims) {
			response.Unauthorized(w, "Invalid token type")
			return
		}
		if userID, _ := claims["user_id"].(string); userID == "" {
			response.Unauthorized(w, "Token has no user")
			return
		}

		next.ServeHTTP(w, r)
	})
}
