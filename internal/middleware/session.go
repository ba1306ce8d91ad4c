package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-console/internal/models"
	"github.com/noah-isme/timetable-console/internal/service"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
	"github.com/noah-isme/timetable-console/pkg/response"
)

const (
	// ContextSessionKey is the gin context key storing the console claims.
	ContextSessionKey = "consoleSession"
	// SessionCookie carries the signed console token.
	SessionCookie = "timetable_console"
)

// TokenParser verifies console session tokens.
type TokenParser interface {
	Parse(token string) (*models.ConsoleClaims, error)
}

// RequireSession protects page routes. Browsers without a valid console
// cookie are sent to loginPath.
func RequireSession(tokens TokenParser, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !attach(c, tokens) {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSessionJSON protects the JSON view routes.
func RequireSessionJSON(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(SessionCookie)
		if err != nil || raw == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "console session required"))
			c.Abort()
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		bind(c, claims)
		c.Next()
	}
}

// OptionalSession attaches claims when present but does not block.
func OptionalSession(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		attach(c, tokens)
		c.Next()
	}
}

// Claims returns the console claims bound by the session middleware.
func Claims(c *gin.Context) *models.ConsoleClaims {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.ConsoleClaims)
	if !ok {
		return nil
	}
	return claims
}

func attach(c *gin.Context, tokens TokenParser) bool {
	raw, err := c.Cookie(SessionCookie)
	if err != nil || raw == "" {
		return false
	}
	claims, err := tokens.Parse(raw)
	if err != nil {
		return false
	}
	bind(c, claims)
	return true
}

// bind exposes the claims to handlers and the session key to upstream calls
// made with the request context.
func bind(c *gin.Context, claims *models.ConsoleClaims) {
	c.Set(ContextSessionKey, claims)
	c.Request = c.Request.WithContext(service.WithSessionKey(c.Request.Context(), claims.Subject))
}
