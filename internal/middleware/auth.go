package middleware

import (
	"net/http"
	"strings"

	"github.com/tindahan/ledger-service/internal/auth"
	"github.com/tindahan/ledger-service/internal/handler"
)

// AdminAuth guards the back-office endpoints. Tokens are issued out of
// band by the dashboard's identity service.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithAdminID(r.Context(), claims.AdminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
