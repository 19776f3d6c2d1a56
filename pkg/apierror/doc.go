// Package apierror provides AWS-style dual XML/JSON error types for
// the debug HTTP API's responses.
//
// Response shapes:
//
//	XML:
//	<Response>
//	    <Errors>
//	        <Error>
//	            <Code>UnknownProperty</Code>
//	            <Message>The requested property is not defined on this device.</Message>
//	        </Error>
//	    </Errors>
//	    <RequestID>ea966190-f9aa-478e-9ede-example</RequestID>
//	</Response>
//
//	JSON:
//	{
//	    "errors": [
//	        {
//	            "code": "UnknownProperty",
//	            "message": "The requested property is not defined on this device."
//	        }
//	    ],
//	    "requestID": "ea966190-f9aa-478e-9ede-example"
//	}
//
// Usage:
//
//	err := apierror.NewError("UnknownProperty", "no such property")
//	errorResp := apierror.NewErrorResponse("request-id", err)
//	c.XML(http.StatusNotFound, errorResp)
//	// or
//	c.JSON(http.StatusNotFound, errorResp)
//
// Predefined error variables (see server.go) cover the reasons a
// dispatch can fail: ErrUnknownProperty, ErrReadOnlyProperty,
// ErrPropertyTypeMismatch, ErrBadElementFormat,
// ErrProtocolVersionRejected, ErrUnauthorized, ErrUnknownDevice,
// ErrConfigIO, ErrInternal.
package apierror
