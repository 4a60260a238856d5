package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/server/auth"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
)

const currentUserKey = "currentUser"

// authMiddleware parses the Bearer token, loads the account and stores it in
// the request context for handlers.
func (r *Router) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortWithError(c, common.ErrorUnauthorized)
			return
		}

		userID, err := auth.GetUserIDFromToken(token, r.jwtSecret)
		if err != nil {
			abortWithError(c, err)
			return
		}

		user, err := r.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			// A token for a deleted account is no longer valid.
			abortWithError(c, common.ErrorUnauthorized)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// adminMiddleware requires the authenticated account to be an administrator.
func (r *Router) adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsAdmin {
			abortWithError(c, common.ErrorForbidden)
			return
		}
		c.Next()
	}
}

// currentUser returns the account stored by authMiddleware, or nil.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// mustCurrentUser aborts with 401 when no account is attached to the request.
func mustCurrentUser(c *gin.Context) (*models.User, bool) {
	user := currentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrorUnauthorized.Error()})
		return nil, false
	}
	return user, true
}
