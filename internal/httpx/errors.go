package httpx

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed API response.
type ErrorBody struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// AbortError writes an ErrorBody with status and stops the handler chain.
func AbortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Success: false, Code: code, Message: message})
}

// WantsJSON reports whether the client sent a JSON body, which switches the
// auth endpoints from redirects to JSON answers.
func WantsJSON(c *gin.Context) bool {
	return c.ContentType() == gin.MIMEJSON
}
