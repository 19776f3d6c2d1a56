package ginx

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goindi/indidriver/pkg/apierror"
)

// isXMLResponse reports whether the response should be rendered XML:
// an explicit SetResponseFormat wins, otherwise the request's Accept
// header decides.
func isXMLResponse(ctx *gin.Context) bool {
	if _, set := ctx.Get(responseFormatKey); set {
		return getResponseFormat(ctx) == "xml"
	}
	accept := ctx.GetHeader("Accept")
	return strings.Contains(accept, "application/xml") ||
		strings.Contains(accept, "text/xml")
}

// RenderResponse writes response as JSON or XML depending on the
// request's Accept header (or an explicit SetResponseFormat). nil
// renders as 204 No Content; a string is written as plain text;
// numbers and bools are wrapped in {"value": ...} so they still
// round-trip through both encodings.
func RenderResponse(ctx *gin.Context, response any) {
	if response == nil {
		ctx.Status(http.StatusNoContent)
		return
	}

	useXML := isXMLResponse(ctx)

	// 基本类型特殊处理
	switch v := response.(type) {
	case string:
		ctx.String(http.StatusOK, v)
		return
	case int, int8, int16, int32, int64:
		if useXML {
			ctx.XML(http.StatusOK, gin.H{"value": v})
		} else {
			ctx.JSON(http.StatusOK, gin.H{"value": v})
		}
		return
	case uint, uint8, uint16, uint32, uint64:
		if useXML {
			ctx.XML(http.StatusOK, gin.H{"value": v})
		} else {
			ctx.JSON(http.StatusOK, gin.H{"value": v})
		}
		return
	case float32, float64:
		if useXML {
			ctx.XML(http.StatusOK, gin.H{"value": v})
		} else {
			ctx.JSON(http.StatusOK, gin.H{"value": v})
		}
		return
	case bool:
		if useXML {
			ctx.XML(http.StatusOK, gin.H{"value": v})
		} else {
			ctx.JSON(http.StatusOK, gin.H{"value": v})
		}
		return
	}

	if useXML {
		ctx.XML(http.StatusOK, response)
	} else {
		ctx.JSON(http.StatusOK, response)
	}
}

// RenderError writes err as a dual-format error response. If err is
// an *apierror.Error or *apierror.ErrorResponse, its own HTTPStatus
// takes precedence over statusCode and the structured error catalog
// entry is serialized directly; otherwise a generic {"error": "..."}
// body is written at statusCode.
func RenderError(ctx *gin.Context, statusCode int, err error) {
	useXML := isXMLResponse(ctx)

	if apiErr, ok := err.(*apierror.Error); ok {
		if apiErr.HTTPStatus > 0 {
			statusCode = apiErr.HTTPStatus
		}
		errorResp := apierror.NewErrorResponse("", apiErr)
		if useXML {
			ctx.XML(statusCode, errorResp)
		} else {
			ctx.JSON(statusCode, errorResp)
		}
		return
	}

	if errorResp, ok := err.(*apierror.ErrorResponse); ok {
		if len(errorResp.Errors) > 0 && errorResp.Errors[0].HTTPStatus > 0 {
			statusCode = errorResp.Errors[0].HTTPStatus
		}
		if useXML {
			ctx.XML(statusCode, errorResp)
		} else {
			ctx.JSON(statusCode, errorResp)
		}
		return
	}

	errorMsg := gin.H{"error": err.Error()}
	if useXML {
		ctx.XML(statusCode, errorMsg)
	} else {
		ctx.JSON(statusCode, errorMsg)
	}
}
