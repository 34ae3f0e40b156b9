package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// Recovery converts panics into a 500 JSON envelope instead of a dropped
// connection.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	logger = logger.Named("http")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panic",
					logging.String("path", c.Request.URL.Path),
					logging.String("request_id", c.GetString("request_id")),
					logging.Any("panic", r))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   gin.H{"code": errors.CodeInternal.String(), "message": "internal server error"},
				})
			}
		}()
		c.Next()
	}
}
