// Package response writes the JSON envelopes shared by every endpoint.
package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const internalMessage = "系統錯誤，請洽系統管理員"

// AppError is an expected failure whose message is safe to show the client.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func New(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message)
}

func Success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

// Error aborts the request. AppErrors, wrapped or not, are returned as-is;
// anything else is logged and reported as a generic 500.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.Status, gin.H{
			"status":  "error",
			"message": appErr.Message,
		})
		return
	}

	log.WithError(err).WithFields(log.Fields{
		"requestId": c.GetString("requestId"),
		"userId":    c.GetString("userId"),
		"path":      c.FullPath(),
	}).Error("unhandled error")

	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"status":  "error",
		"message": internalMessage,
	})
}
