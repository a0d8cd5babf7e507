package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Response struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	// Reason carries a machine-readable denial code (e.g. "not_started",
	// "already_attempted") so clients can render condition-specific UX
	// instead of one generic error.
	Reason string `json:"reason,omitempty"`
}

func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Data:    data,
		Message: message,
	})
}

func Error(c *gin.Context, code int, err interface{}) {
	c.JSON(code, Response{
		Code:    -1,
		Message: errMessage(err),
	})
}

// Denied rejects a request with a distinguishing reason code.
func Denied(c *gin.Context, code int, reason string, err interface{}) {
	c.JSON(code, Response{
		Code:    -1,
		Message: errMessage(err),
		Reason:  reason,
	})
}

func errMessage(err interface{}) string {
	msg := ""
	switch e := err.(type) {
	case string:
		msg = e
	case error:
		msg = e.Error()
	default:
		msg = "Internal Server Error"
	}
	zap.S().Errorf("API Error: %s", msg)
	return msg
}
