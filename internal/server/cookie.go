package server

import (
	"net/http"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the opaque session token.
const CookieName = "le_sid"

// ensureToken returns the request's session token, issuing a new cookie
// when the request has none.
func ensureToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	token := uuid.Must(uuid.NewV7()).String()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return token
}
