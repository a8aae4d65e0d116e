package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwthandling "github.com/eduadmin/school-backend/pkg/jwt-handling"
)

const SESSION_COOKIE_NAME = "token"

func extractSessionToken(c *gin.Context) (string, error) {
	if cookie, err := c.Cookie(SESSION_COOKIE_NAME); err == nil && cookie != "" {
		return cookie, nil
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1], nil
		}
	}
	return "", errors.New("no session token found")
}

// GetAndValidateSessionToken extracts the session token from the cookie (or a
// bearer header), validates it and optionally restricts the allowed roles.
// The parsed claims are stored under "validatedToken".
func GetAndValidateSessionToken(tokenSignKey string, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractSessionToken(c)
		if err != nil {
			slog.Warn("no session token found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}

		parsedToken, ok, err := jwthandling.ValidateAccountUserToken(token, tokenSignKey)
		if err != nil || !ok {
			slog.Warn("session token validation failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid session"})
			return
		}

		if len(allowedRoles) > 0 {
			roleAllowed := false
			for _, role := range allowedRoles {
				if parsedToken.Role == role {
					roleAllowed = true
					break
				}
			}
			if !roleAllowed {
				slog.Warn("session role not allowed for endpoint", slog.String("role", parsedToken.Role), slog.String("accountID", parsedToken.Subject))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
				return
			}
		}

		c.Set("validatedToken", parsedToken)
	}
}
