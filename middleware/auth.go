package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"near-expiry-api/models"
	"near-expiry-api/pkg/jwtutil"
	"near-expiry-api/pkg/resp"
	"near-expiry-api/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// Authenticator verifies bearer tokens and reloads the caller
type Authenticator interface {
	ParseToken(token string) (*jwtutil.Claims, error)
	ActiveUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// AuthRequired validates the JWT, checks the account is still active and
// injects the caller into the context. The role comes from the database,
// not the token, so role or status changes apply immediately.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			resp.Abort(c, http.StatusUnauthorized, "No token provided. Authorization header must be in format: Bearer <token>")
			return
		}
		claims, err := auth.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		user, err := auth.ActiveUser(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrUnauthorized) {
				resp.Abort(c, http.StatusUnauthorized, err.Error())
				return
			}
			_ = c.Error(err)
			resp.Abort(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		c.Set(ctxUserID, user.ID)
		c.Set(ctxRole, user.Role)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ctxRole)
		if !ok {
			resp.Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		for _, r := range roles {
			if role.(models.UserRole) == r {
				c.Next()
				return
			}
		}
		resp.Abort(c, http.StatusForbidden, "Access denied. Required role(s): "+rolesString(roles))
	}
}

func rolesString(roles []models.UserRole) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// GetUserID extracts caller user ID from context
func GetUserID(c *gin.Context) uuid.UUID {
	val, _ := c.Get(ctxUserID)
	id, _ := val.(uuid.UUID)
	return id
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get(ctxRole)
	role, _ := val.(models.UserRole)
	return role
}
