package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/User-2rxeg/Full-Hr-System-sub013/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// Payroll roles carried in the "role" claim.
const (
	RoleSpecialist = "specialist"
	RoleFinance    = "finance"
	RoleManager    = "manager"
)

// RequireRole allows only the listed roles through.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required one of [%s]", strings.Join(roles, ", ")))
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required one of [%s]", strings.Join(roles, ", ")))
				return
			}

			for _, allowed := range roles {
				if roleStr == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required one of [%s], but actor role is '%s'", strings.Join(roles, ", "), roleStr))
		})
	}
}
