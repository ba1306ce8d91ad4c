package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-console/internal/middleware"
	"github.com/noah-isme/timetable-console/internal/models"
)

func claimsFromContext(c *gin.Context) *models.ConsoleClaims {
	return middleware.Claims(c)
}

// sessionKey is the stored session the console cookie names.
func sessionKey(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

func username(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.Username
}
