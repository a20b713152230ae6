package delivery

import (
	"net/http"

	"recommend-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const CookieName = "token"

// CookiePolicy holds the attributes shared by issuing and clearing the
// session cookie.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

// NewCookiePolicy returns Secure+SameSite=None in production so the cookie
// crosses sites over HTTPS, and SameSite=Strict over plain HTTP otherwise.
func NewCookiePolicy(production bool) CookiePolicy {
	if production {
		return CookiePolicy{Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return CookiePolicy{Secure: false, SameSite: http.SameSiteStrictMode}
}

func (p CookiePolicy) SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(CookieName, token, int(usecase.SessionTTL.Seconds()), "/", "", p.Secure, true)
}

func (p CookiePolicy) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(CookieName, "", -1, "/", "", p.Secure, true)
}
