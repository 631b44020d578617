package middleware

import (
	"metawall/response"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// Recovery turns a panic into the generic 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		response.Error(c, errors.Errorf("panic: %v", recovered))
	})
}
