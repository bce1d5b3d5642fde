package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/handler/http/response"
)

// RequireCompany rejects tokens whose claims do not name a tenant and a
// known role.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := user.ClaimsFromContext(r.Context()); err != nil {
			response.HandleError(w, err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
