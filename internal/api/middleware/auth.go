package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webdesk/internal/domain/auth"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "session"

	sessionKey = "auth.session"
)

// SessionVerifier resolves a token to a live session.
type SessionVerifier interface {
	Verify(token string) (*auth.Session, error)
}

// Authenticate rejects requests without a valid session with 401. The
// session is stored on the gin context for handlers.
func Authenticate(v SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := Token(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		session, err := v.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}

// Token extracts the session token from the Authorization header or the
// session cookie.
func Token(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Session returns the session stored by Authenticate.
func Session(c *gin.Context) (*auth.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*auth.Session)
	return s, ok
}
