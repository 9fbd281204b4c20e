package handlers

import (
	"car_market/internal/apperr"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// respondSuccess writes the standard success envelope.
func respondSuccess(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"status": statusSuccess, "data": data})
}

// respondListing includes the result count, matching the list/search shape.
func respondListing(c *gin.Context, code int, count int, data any) {
	c.JSON(code, gin.H{"status": statusSuccess, "results": count, "data": data})
}

// respondError translates the error taxonomy into an HTTP response.
// Unclassified errors come back as a generic 500; only those are logged at
// error level since the rest are expected client outcomes.
func (h *Handler) respondError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal && h.log != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(kind), gin.H{
		"status":  statusError,
		"message": apperr.Message(err),
	})
}
