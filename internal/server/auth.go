package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/procurehq/intake/internal/identity"
)

const stateCookieName = "intake_oauth_state"

func (s *Server) AuthLogin(c *gin.Context) {
	if !s.identitySvc.Enabled() {
		c.JSON(http.StatusOK, gin.H{"status": "auth_disabled"})
		return
	}

	state, err := identity.NewState()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.SetCookie(stateCookieName, state, 600, "/", "", s.cfg.AuthCookieSecure, true)
	c.Redirect(http.StatusFound, s.identitySvc.AuthURL(state))
}

func (s *Server) AuthCallback(c *gin.Context) {
	if !s.identitySvc.Enabled() {
		c.JSON(http.StatusOK, gin.H{"status": "auth_disabled"})
		return
	}

	state, err := c.Cookie(stateCookieName)
	if err != nil || state == "" || state != c.Query("state") {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", "", s.cfg.AuthCookieSecure, true)

	code := c.Query("code")
	if code == "" {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := s.identitySvc.Authenticate(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	token, err := s.identitySvc.IssueSession(id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.SetCookie(s.cfg.SessionCookieName, token, 12*60*60, "/", "", s.cfg.AuthCookieSecure, true)
	c.Redirect(http.StatusFound, "/")
}

func (s *Server) AuthLogout(c *gin.Context) {
	c.SetCookie(s.cfg.SessionCookieName, "", -1, "/", "", s.cfg.AuthCookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}
