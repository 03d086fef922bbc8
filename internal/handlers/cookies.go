package handlers

import (
	"net/http"
	"time"

	"wallmag/internal/middleware"
)

const (
	ForgotCookieName    = "forgot_token"
	TwoFactorCookieName = "twofa_token"
	SessionCookieName   = middleware.SessionCookieName
)

// setTokenCookie: HttpOnly, Secure, SameSite=Lax, Path=/.
func setTokenCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
