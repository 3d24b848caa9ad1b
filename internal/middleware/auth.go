package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medisuite/hms-api/internal/accesscontrol"
	"github.com/medisuite/hms-api/internal/handler"
	"github.com/medisuite/hms-api/internal/service/auth"
)

const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "userRole"
)

// Authenticate validates the bearer token and stores the principal's
// identity and role on the request context.
func Authenticate(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("malformed authorization header"))
			return
		}

		claims, err := authSvc.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// RouteGuard denies requests whose role cannot access the request
// path. Unmatched routes are denied rather than allowed through.
func RouteGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		if !accesscontrol.CanAccessRoute(role, c.Request.URL.Path) {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("access denied"))
			return
		}
		c.Next()
	}
}

// RequireRole restricts a route group to the named roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := allowed[c.GetString(ContextRoleKey)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("access denied"))
			return
		}
		c.Next()
	}
}

// RequirePermission gates a single route on a named permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRoleKey)
		if !accesscontrol.HasPermission(role, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse("access denied"))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated principal's ID, or uuid.Nil when
// the request is unauthenticated.
func UserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return uuid.Nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
