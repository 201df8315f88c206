package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API reply.
type Response struct {
	Data any    `json:"data,omitempty"`
	Msg  string `json:"msg"`
	Code int    `json:"code"` // 0: success, -1: failure
}

// Success writes a 200 envelope carrying data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// Fail writes a failure envelope with the given HTTP status.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{
		Code: -1,
		Msg:  msg,
	})
}
