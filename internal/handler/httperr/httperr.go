// Package httperr shapes the error body every endpoint returns and keeps
// the underlying error attached to the gin context for the logging
// middleware.
package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the wire form of a failed request. Detail carries
// endpoint-specific payloads such as missing reference ids or usage counts.
type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// AbortWithError writes the error body and records err as a public gin
// error so middleware can log the cause without re-deriving it.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("httperr: nil error")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
