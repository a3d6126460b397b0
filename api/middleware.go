package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bepeace/telemed/internal/auth"
)

// RequireDoctor guards the doctor dashboard routes with a bearer token.
func RequireDoctor(manager *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		email, err := manager.VerifyDoctorToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("doctor_email", email)
		c.Next()
	}
}
