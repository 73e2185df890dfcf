package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes payload with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes payload with 200.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Abort writes payload with the given status and stops the handler chain.
func Abort(c *gin.Context, status int, payload any) {
	c.AbortWithStatusJSON(status, payload)
}
