package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// CookieName holds the signed session token.
	CookieName = "meal_session"

	sessionKey = "sessionID"
)

// SessionMiddleware makes sure every request carries a session. A missing or
// invalid cookie is replaced with a freshly issued one.
func SessionMiddleware(tokens *Tokens, secure bool, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(CookieName); err == nil {
			if sid, err := tokens.Parse(raw); err == nil {
				c.Set(sessionKey, sid)
				c.Next()
				return
			}
		}

		sid := uuid.NewString()
		token, err := tokens.Issue(sid)
		if err != nil {
			logger.Error("failed to issue session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, token, int(TokenTTL.Seconds()), "/", "", secure, true)
		c.Set(sessionKey, sid)
		c.Next()
	}
}

// SessionID returns the session attached by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
