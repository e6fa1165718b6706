package middleware

import (
	"net/http"
	"strings"

	"github.com/ndewijer/finpilot-backend/internal/api/response"
	"github.com/ndewijer/finpilot-backend/internal/apperrors"
	"github.com/ndewijer/finpilot-backend/internal/session"
)

// RequireSession returns a middleware that accepts only requests carrying a
// valid "Authorization: Bearer <token>" header and puts the session on the context.
// Returns 401 Unauthorized otherwise.
//
// Example usage in router:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(middleware.RequireSession(sessions))
//	    r.Get("/holdings", holdingHandler.Holdings)
//	})
func RequireSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error(), "Missing session token")
				return
			}

			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error(), "Malformed Authorization header")
				return
			}

			sess, err := sessions.Verify(strings.TrimSpace(token))
			if err != nil {
				response.RespondError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error(), err.Error())
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}
