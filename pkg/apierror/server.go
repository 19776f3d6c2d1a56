package apierror

import "net/http"

// Predefined error catalog for the debug API, mirroring the wire
// protocol's own error taxonomy (indi.Kind) so an HTTP caller sees the
// same reasons a wire client would, just content-negotiated as XML or
// JSON instead of raw INDI elements.
var (
	// ErrUnknownProperty is returned when a requested (device, name)
	// pair was never Defined.
	ErrUnknownProperty = &Error{
		Code:       "UnknownProperty",
		Message:    "The requested property is not defined on this device.",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrReadOnlyProperty is returned when a write was attempted
	// against a property the driver declared ro.
	ErrReadOnlyProperty = &Error{
		Code:       "ReadOnlyProperty",
		Message:    "Cannot set a read-only property.",
		HTTPStatus: http.StatusForbidden,
	}

	// ErrPropertyTypeMismatch is returned when a newXxxVector targeted
	// a property defined with a different value family.
	ErrPropertyTypeMismatch = &Error{
		Code:       "PropertyTypeMismatch",
		Message:    "The property exists but is not of the requested type.",
		HTTPStatus: http.StatusConflict,
	}

	// ErrBadElementFormat is returned when a wire element could not be
	// parsed or a value failed validation (out of range, bad
	// sexagesimal notation, malformed base64, and so on).
	ErrBadElementFormat = &Error{
		Code:       "BadElementFormat",
		Message:    "The request body could not be parsed as a valid INDI element.",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrProtocolVersionRejected is returned when a client's
	// getProperties declared a protocol version newer than this driver
	// serves.
	ErrProtocolVersionRejected = &Error{
		Code:       "ProtocolVersionRejected",
		Message:    "The requested protocol version exceeds what this driver serves.",
		HTTPStatus: http.StatusUpgradeRequired,
	}

	// ErrUnauthorized is returned when the caller lacks permission to
	// perform the requested operation.
	ErrUnauthorized = &Error{
		Code:       "Unauthorized",
		Message:    "The caller is not authorized to perform this operation.",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrUnknownDevice is returned by the debug API when a path names a
	// device the host has no record of.
	ErrUnknownDevice = &Error{
		Code:       "UnknownDevice",
		Message:    "No device with this name is registered on this host.",
		HTTPStatus: http.StatusNotFound,
	}

	// ErrConfigIO is returned when a ConfigStore operation fails for a
	// reason beyond the caller's control (disk I/O, permissions).
	ErrConfigIO = &Error{
		Code:       "ConfigIO",
		Message:    "The device configuration file could not be read or written.",
		HTTPStatus: http.StatusInternalServerError,
	}

	// ErrInternal is the catch-all for unclassified server-side
	// failures.
	ErrInternal = &Error{
		Code:       "InternalError",
		Message:    "An internal error has occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
