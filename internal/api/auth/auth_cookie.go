package auth

import (
	"net/http"
	"time"
)

// CookieBaker writes and clears the session cookie. Attributes depend on
// the deployment mode: production requires Secure and SameSite=None for
// the cross-site frontend; development uses Lax so plain-HTTP localhost
// still works.
type CookieBaker struct {
	name       string
	ttl        time.Duration
	production bool
}

func NewCookieBaker(name string, ttl time.Duration, production bool) *CookieBaker {
	return &CookieBaker{name: name, ttl: ttl, production: production}
}

func (b *CookieBaker) sameSite() http.SameSite {
	if b.production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Set binds the signed token to an httpOnly cookie whose MaxAge matches
// the token TTL.
func (b *CookieBaker) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     b.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(b.ttl.Seconds()),
		HttpOnly: true,
		Secure:   b.production,
		SameSite: b.sameSite(),
	})
}

// Clear overwrites the cookie with an expired empty value using the same
// attributes, otherwise browsers keep the old one.
func (b *CookieBaker) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     b.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   b.production,
		SameSite: b.sameSite(),
	})
}

// Name returns the cookie name the auth gate should read.
func (b *CookieBaker) Name() string {
	return b.name
}
