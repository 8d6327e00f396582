package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody is the single error shape returned by the API.
type ErrorBody struct {
	Message         string    `json:"message"`
	DetailedMessage string    `json:"detailedMessage"`
	Timestamp       time.Time `json:"timestamp"`
}

func NewError(status int, detail string) ErrorBody {
	return ErrorBody{Message: message(status), DetailedMessage: detail, Timestamp: time.Now().UTC()}
}

// Fail translates err into its status and body and aborts the chain.
// Server-side failures are logged at error, client ones at info.
func Fail(c *gin.Context, l *zap.Logger, err error) {
	status := Status(err)
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	}
	if status >= 500 {
		l.Error("request failed", fields...)
	} else {
		l.Info("request rejected", fields...)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, NewError(status, err.Error()))
}

// Abort answers with status when no domain error is involved.
func Abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, NewError(status, detail))
}
