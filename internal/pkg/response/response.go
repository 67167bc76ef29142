// Package response writes the JSON envelope every schemapilot endpoint
// returns: {"code": 0, "data": ...} on success, {"code": <errcode>,
// "message": ...} on failure. Failures ship with HTTP 200; clients
// (including the generation UI) branch on code, never on HTTP status.
package response

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

// codeErr pairs an errcode constant with a user-facing message so
// proxyutil can serialize both into the failure envelope.
type codeErr struct {
	code uint32
	msg  string
}

func (e codeErr) Error() string {
	return e.msg
}

func (e codeErr) Code() uint32 {
	return e.code
}

func AsCodeErr(code uint32, msg string) error {
	return codeErr{code: code, msg: msg}
}

// Success wraps data, typically a model.GenerationResult or a file
// record list, in the success envelope.
func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

// Error emits the failure envelope for an errcode constant.
func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, 200, AsCodeErr(uint32(code), message))
}
