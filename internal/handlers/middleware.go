package handlers

import (
	"net/http"
	"strings"

	"car_market/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey  = "user"
	ctxTokenKey = "token"
)

// authMiddleware validates the bearer token and attaches the resolved user
// and the raw token to the request context. Revocation is checked before
// cryptographic validity inside the service.
func (h *Handler) authMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"status":  statusError,
			"message": "please log in to access this resource",
		})
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"status":  statusError,
			"message": "invalid Authorization header format",
		})
		return
	}

	user, err := h.services.Authenticate(c.Request.Context(), parts[1])
	if err != nil {
		h.respondError(c, err, "auth_failed")
		return
	}

	c.Set(ctxUserKey, user)
	c.Set(ctxTokenKey, parts[1])
	c.Next()
}

// currentUser returns the identity the middleware resolved for this request.
func currentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}
