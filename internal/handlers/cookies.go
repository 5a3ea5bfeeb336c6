package handlers

import (
	"net/http"
	"time"
)

const (
	CookieAuthToken    = "auth-token"
	CookieRefreshToken = "refresh-token"

	// The auth cookie outlives the 15-minute access token on purpose: the
	// client keeps presenting the stale token and refreshes on 401.
	AuthCookieTTL    = 15 * 24 * time.Hour
	RefreshCookieTTL = 7 * 24 * time.Hour
)

func CreateCookie(name, value, path string, expTime time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}
