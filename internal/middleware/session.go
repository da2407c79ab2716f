package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/togetherwethrive/enquiry-api/config"
)

// SessionIDKey is the gin context key holding the request's session ID
const SessionIDKey = "session_id"

const sessionIDBytes = 16

// SessionMiddleware guarantees every request carries a session identity: an
// opaque random ID in an HttpOnly cookie. The anti-forgery token store is
// keyed by this ID, so there are no ambient session globals.
func SessionMiddleware(cfg config.SessionConfig) gin.HandlerFunc {
	maxAge := cfg.TTLHours * 3600
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(cfg.CookieName)
		if err != nil || sessionID == "" {
			sessionID, err = generateSessionID()
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"errors": []string{"Something went wrong. Please try again."},
				})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CookieName, sessionID, maxAge, "/", cfg.CookieDomain, cfg.CookieSecure, true)
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID returns the session ID established by SessionMiddleware
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

func generateSessionID() (string, error) {
	buf := make([]byte, sessionIDBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
