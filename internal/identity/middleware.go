package identity

import (
	"github.com/gin-gonic/gin"
)

const contextKey = "identity"

// Middleware verifies the session cookie and stashes the identity on the
// request context. With no restricted domain configured it passes every
// request through untouched.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Enabled() {
			c.Next()
			return
		}

		token, err := c.Cookie(s.cfg.SessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		id, err := s.VerifySession(token)
		if err != nil {
			// Expired or tampered cookie. Force a fresh sign-in.
			c.SetCookie(s.cfg.SessionCookieName, "", -1, "/", "", s.cfg.AuthCookieSecure, true)
			c.Next()
			return
		}
		c.Set(contextKey, id)
		c.Next()
	}
}

// FromContext returns the verified identity for this request, if any.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
