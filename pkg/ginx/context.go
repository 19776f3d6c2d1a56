package ginx

import (
	"github.com/gin-gonic/gin"
)

// contextKey is a type-safe key for values stashed in a gin.Context.
type contextKey struct{}

var responseFormatKey = contextKey{}

// SetResponseFormat forces a handler's response to "json" or "xml",
// overriding Accept-header sniffing for routes where the caller
// cannot rely on it.
func SetResponseFormat(ctx *gin.Context, format string) {
	ctx.Set(responseFormatKey, format)
}

// getResponseFormat returns the format set via SetResponseFormat, or
// "json" if none was set.
func getResponseFormat(ctx *gin.Context) string {
	format, exists := ctx.Get(responseFormatKey)
	if !exists {
		return "json"
	}
	if str, ok := format.(string); ok {
		return str
	}
	return "json"
}
