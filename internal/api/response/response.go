package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every REST endpoint answers with.
type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

// SuccessResponse returns a 200 JSON response wrapping extras.
func SuccessResponse(c *gin.Context, extras any) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    http.StatusOK,
		Extras:  extras,
	})
}

// ErrorResponse returns a JSON error response with the given status code.
func ErrorResponse(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Extras:  map[string]any{"message": message},
	})
}
