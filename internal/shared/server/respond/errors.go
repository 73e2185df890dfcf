package respond

import (
	"github.com/gin-gonic/gin"

	"errorlens-backend/internal/shared/telemetry"
)

// ErrorResponse is the body written for non-analysis errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error logs the failure and aborts with {"error": message}.
func Error(c *gin.Context, status int, code, message string) {
	telemetry.Error("http.error", map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	})
	Abort(c, status, ErrorResponse{Error: message})
}
