package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "online-library/internal/transport/http/response"
)

// PanicResponder answers a recovered panic with the standard error body.
// ginzap has already logged the stack by the time it runs.
func PanicResponder() gin.RecoveryFunc {
	return func(c *gin.Context, rec any) {
		resp.Abort(c, http.StatusInternalServerError, fmt.Sprint(rec))
	}
}
