package utils

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
	})
}

// FieldErrorResponse reports a validation failure scoped to named fields.
func FieldErrorResponse(c *gin.Context, status int, message string, fields map[string]string) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
		Errors:  fields,
	})
}
