package common

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

const (
	RFC3339MilliZ = "2006-01-02T15:04:05.000Z07:00"
)

// RespDetail responds with a detail message, used for both errors and confirmations.
func RespDetail(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, ErrorResponse{Detail: msg})
}

// RespError responds with msg, followed by the cause text when err is set.
func RespError(c *gin.Context, statusCode int, msg string, err error) {
	errMsg := msg
	if err != nil {
		errMsg = msg + ": " + err.Error()
	}
	c.JSON(statusCode, ErrorResponse{Detail: errMsg})
}

// AbortDetail is RespDetail for middleware.
func AbortDetail(c *gin.Context, statusCode int, msg string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{Detail: msg})
}

func RespNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// FormatTime formats t in UTC as RFC3339 with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(RFC3339MilliZ)
}
