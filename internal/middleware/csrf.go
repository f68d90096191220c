package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gorilla/sessions"

	"southcoast-promotion/internal/utils"
)

// CSRFMiddleware validates a session-bound token on state-changing
// requests. The token is issued into the session on first use and
// exposed to clients via the X-CSRF-Token response header on GETs.
type CSRFMiddleware struct {
	store sessions.Store
}

// NewCSRFMiddleware creates a new CSRF middleware
func NewCSRFMiddleware(store sessions.Store) *CSRFMiddleware {
	return &CSRFMiddleware{store: store}
}

// Protect enforces the CSRF token on non-safe methods
func (m *CSRFMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, SessionName)
		if err != nil {
			http.Error(w, `{"error":"session error"}`, http.StatusInternalServerError)
			return
		}

		token, ok := session.Values["csrf_token"].(string)
		if !ok || token == "" {
			token, err = utils.GenerateSecureToken(32)
			if err != nil {
				http.Error(w, `{"error":"session error"}`, http.StatusInternalServerError)
				return
			}
			session.Values["csrf_token"] = token
			if err := session.Save(r, w); err != nil {
				http.Error(w, `{"error":"session error"}`, http.StatusInternalServerError)
				return
			}
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			w.Header().Set("X-CSRF-Token", token)
			next.ServeHTTP(w, r)
			return
		}

		requestToken := r.Header.Get("X-CSRF-Token")
		if requestToken == "" {
			requestToken = r.FormValue("csrf_token")
		}
		if subtle.ConstantTimeCompare([]byte(requestToken), []byte(token)) != 1 {
			http.Error(w, `{"error":"CSRF token mismatch"}`, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
