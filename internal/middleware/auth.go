package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-scheduler/internal/auth"
	"github.com/BruksfildServices01/salon-scheduler/internal/httperr"
)

const (
	ContextUserID   = "userID"
	ContextSalonID  = "salonID"
	ContextUserRole = "userRole"
	ContextIdentity = "identity"
)

// Auth resolves the bearer token into an identity. The account is
// reloaded on every request, so deactivation and revocation apply at once.
func Auth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Respond(c, httperr.ErrUnauthorized("missing_authorization_header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			httperr.Respond(c, httperr.ErrUnauthorized("invalid_authorization_header"))
			return
		}

		id, err := svc.Resolve(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			httperr.Respond(c, err)
			return
		}

		c.Set(ContextUserID, id.UserID)
		c.Set(ContextSalonID, id.SalonID)
		c.Set(ContextUserRole, id.Role)
		c.Set(ContextIdentity, id)

		c.Next()
	}
}

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		httperr.Respond(c, httperr.ErrForbidden("forbidden_role"))
	}
}

// Identity returns the caller set by Auth.
func Identity(c *gin.Context) *auth.Identity {
	return c.MustGet(ContextIdentity).(*auth.Identity)
}
