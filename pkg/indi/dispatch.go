package indi

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// versionExceedsSupported compares protocol version strings
// numerically (as the original's atof-based check does), falling back
// to treating an unparsable version as exceeding support so dispatch
// fails closed rather than silently accepting garbage.
func versionExceedsSupported(version string) bool {
	requested, err := strconv.ParseFloat(version, 64)
	if err != nil {
		return true
	}
	supported, err := strconv.ParseFloat(SupportedProtocolVersion, 64)
	if err != nil {
		return false
	}
	return requested > supported
}

// Element is a minimal generic parse tree for incoming wire elements.
// The dispatcher only ever needs a tag name, its attributes, and its
// immediate child elements (oneText/oneNumber/oneSwitch/oneBLOB), so
// this avoids hand-rolling a full DOM: encoding/xml populates it via
// its generic any/[]Element decoding hooks.
type Element struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Chardata string    `xml:",chardata"`
	Children []Element `xml:",any"`
}

// Attr returns the named attribute's value, or "" if absent.
func (e Element) Attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// ParseElement decodes a single top-level wire element from raw XML
// bytes.
func ParseElement(data []byte) (Element, error) {
	var el Element
	if err := xml.Unmarshal(data, &el); err != nil {
		return Element{}, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return el, nil
}

// Outcome classifies how Dispatch resolved one incoming element.
type Outcome int

const (
	OutcomeHandled Outcome = iota
	OutcomeClientError
	OutcomeUnknownTag
)

// DispatchResult is what Dispatch returns for every incoming element,
// whether or not it succeeded, so the host can log/audit uniformly.
type DispatchResult struct {
	Outcome Outcome
	Tag     string
	Device  string
	Property string
	Err     error
}

// Handlers are the driver-supplied callbacks a Dispatcher invokes once
// an incoming element has been authorized and decoded. They are the
// seam between the reusable protocol runtime and a concrete driver's
// device logic — nothing in this package knows how to actually move a
// telescope or open a shutter.
type Handlers struct {
	// Redefine re-emits def* for (device, name) in response to a
	// getProperties that names both an already-registered device and
	// property, without consulting a stored registry pointer (see
	// RegistryEntry's doc comment on why the registry holds no
	// back-reference).
	Redefine func(device, name string) error

	// BroadcastProperties re-emits def* for every property of device (or
	// of every device, if device is ""), in response to a getProperties
	// that does not pinpoint a single already-registered property —
	// the common client-startup discovery request.
	BroadcastProperties func(device string) error

	// UpdateSwitch/UpdateNumber/UpdateText/UpdateBLOB are invoked after
	// the dispatcher has confirmed the named property is registered,
	// writable, and of matching type, and has decoded the member
	// name/value pairs. The driver applies them (typically via the
	// PropertyUpdaters in update.go) and is responsible for emitting
	// any resulting setXxxVector itself.
	UpdateSwitch func(device, name string, names []string, states []SwitchState) error
	UpdateNumber func(device, name string, names []string, values []float64) error
	UpdateText   func(device, name string, names []string, values []string) error
	UpdateBLOB   func(device, name string, names []string, formats []string, sizes []int, payloads [][]byte) error

	// Snoop, if set, is invoked for every set*/def*/message/delProperty
	// element regardless of device, letting a driver observe other
	// drivers' traffic the way the original's dispatch() snoop list
	// does.
	Snoop func(tag string, el Element)

	// Fatal is invoked when an incoming getProperties declares a
	// protocol version the driver will not serve. The original C exits
	// the process outright (exit(1)); hosts may choose to do the same,
	// or to close only the offending connection.
	Fatal func(reason string)

	// Message delivers a per-driver IDMessage-style warning for a
	// dropped member (malformed number/switch pcdata) that does not
	// abort the rest of the vector. May be nil, in which case the
	// warning is simply not surfaced anywhere.
	Message func(device, text string)
}

func warn(h Handlers, device, format string, args ...any) {
	if h.Message == nil {
		return
	}
	h.Message(device, fmt.Sprintf(format, args...))
}

// SupportedProtocolVersion is the highest INDI protocol version this
// runtime understands, mirroring the original's INDIV ceiling check in
// dispatch().
const SupportedProtocolVersion = "1.7"

// Dispatch routes one incoming top-level element against reg and
// invokes the matching Handlers callback. It never panics on
// malformed input. An unrecognized tag is reported as
// OutcomeUnknownTag; every other failure is reported as
// OutcomeClientError, carrying a *DispatchError for authorization,
// version and BLOB-decode failures, or the callback's own error
// unchanged when a Handlers callback fails.
func Dispatch(el Element, device string, reg *Registry, h Handlers) DispatchResult {
	tag := el.XMLName.Local
	res := DispatchResult{Tag: tag, Device: device}

	switch tag {
	case "getProperties":
		return dispatchGetProperties(el, device, reg, h, res)
	case "newSwitchVector":
		return dispatchNewSwitch(el, device, reg, h, res)
	case "newNumberVector":
		return dispatchNewNumber(el, device, reg, h, res)
	case "newTextVector":
		return dispatchNewText(el, device, reg, h, res)
	case "newBLOBVector":
		return dispatchNewBLOB(el, device, reg, h, res)
	case "setSwitchVector", "setNumberVector", "setTextVector", "setLightVector",
		"setBLOBVector", "defSwitchVector", "defNumberVector", "defTextVector",
		"defLightVector", "defBLOBVector", "message", "delProperty":
		if h.Snoop != nil {
			h.Snoop(tag, el)
		}
		res.Outcome = OutcomeHandled
		return res
	default:
		res.Outcome = OutcomeUnknownTag
		res.Err = fmt.Errorf("%w: unrecognized tag %q", ErrBadFormat, tag)
		return res
	}
}

func dispatchGetProperties(el Element, device string, reg *Registry, h Handlers, res DispatchResult) DispatchResult {
	version := el.Attr("version")
	if version == "" || versionExceedsSupported(version) {
		reason := fmt.Sprintf("client requested protocol version %s, device serves up to %s", version, SupportedProtocolVersion)
		if version == "" {
			reason = fmt.Sprintf("getProperties carries no version attribute, device serves up to %s", SupportedProtocolVersion)
		}
		if h.Fatal != nil {
			h.Fatal(reason)
		}
		res.Outcome = OutcomeClientError
		res.Err = fmtErr(KindProtocolVersion, device, "", "%s", reason)
		return res
	}

	name := el.Attr("name")
	res.Property = name

	if device != "" && name != "" {
		if _, found := reg.Lookup(device, name); found {
			if h.Redefine == nil {
				res.Outcome = OutcomeHandled
				return res
			}
			if err := h.Redefine(device, name); err != nil {
				res.Outcome = OutcomeClientError
				res.Err = err
				return res
			}
			res.Outcome = OutcomeHandled
			return res
		}
	}

	if h.BroadcastProperties == nil {
		res.Outcome = OutcomeHandled
		return res
	}
	if err := h.BroadcastProperties(device); err != nil {
		res.Outcome = OutcomeClientError
		res.Err = err
		return res
	}
	res.Outcome = OutcomeHandled
	return res
}

func checkWritable(reg *Registry, device, name string, wantType Type) *DispatchError {
	entry, found := reg.Lookup(device, name)
	if !found {
		return fmtErr(KindUnknownProperty, device, name, "Property %s is not defined in %s.", name, device)
	}
	if entry.Type != wantType {
		return fmtErr(KindTypeMismatch, device, name, "property %s is type %s, not %s", name, entry.Type, wantType)
	}
	if entry.Permission == PermRO {
		return fmtErr(KindReadOnly, device, name, "Cannot set read-only property %s", name)
	}
	return nil
}

func dispatchNewSwitch(el Element, device string, reg *Registry, h Handlers, res DispatchResult) DispatchResult {
	name := el.Attr("name")
	res.Property = name
	if derr := checkWritable(reg, device, name, TypeSwitch); derr != nil {
		res.Outcome = OutcomeClientError
		res.Err = derr
		return res
	}
	var names []string
	var states []SwitchState
	for _, c := range el.Children {
		if c.XMLName.Local != "oneSwitch" {
			continue
		}
		state, err := ParseSwitchState(c.Chardata)
		if err != nil {
			warn(h, device, "%s.%s.%s: %v, skipping member", device, name, c.Attr("name"), err)
			continue
		}
		names = append(names, c.Attr("name"))
		states = append(states, state)
	}
	if len(names) == 0 {
		warn(h, device, "%s.%s: no valid switch members, ignoring request", device, name)
		res.Outcome = OutcomeHandled
		return res
	}
	if h.UpdateSwitch != nil {
		if err := h.UpdateSwitch(device, name, names, states); err != nil {
			res.Outcome = OutcomeClientError
			res.Err = err
			return res
		}
	}
	res.Outcome = OutcomeHandled
	return res
}

func dispatchNewNumber(el Element, device string, reg *Registry, h Handlers, res DispatchResult) DispatchResult {
	name := el.Attr("name")
	res.Property = name
	if derr := checkWritable(reg, device, name, TypeNumber); derr != nil {
		res.Outcome = OutcomeClientError
		res.Err = derr
		return res
	}
	var names []string
	var values []float64
	for _, c := range el.Children {
		if c.XMLName.Local != "oneNumber" {
			continue
		}
		v, err := ParseSexagesimalOrDecimal(c.Chardata)
		if err != nil {
			warn(h, device, "%s.%s.%s: %v, skipping member", device, name, c.Attr("name"), err)
			continue
		}
		names = append(names, c.Attr("name"))
		values = append(values, v)
	}
	if len(names) == 0 {
		warn(h, device, "%s.%s: no valid number members, ignoring request", device, name)
		res.Outcome = OutcomeHandled
		return res
	}
	if h.UpdateNumber != nil {
		if err := h.UpdateNumber(device, name, names, values); err != nil {
			res.Outcome = OutcomeClientError
			res.Err = err
			return res
		}
	}
	res.Outcome = OutcomeHandled
	return res
}

func dispatchNewText(el Element, device string, reg *Registry, h Handlers, res DispatchResult) DispatchResult {
	name := el.Attr("name")
	res.Property = name
	if derr := checkWritable(reg, device, name, TypeText); derr != nil {
		res.Outcome = OutcomeClientError
		res.Err = derr
		return res
	}
	var names, values []string
	for _, c := range el.Children {
		if c.XMLName.Local != "oneText" {
			continue
		}
		names = append(names, c.Attr("name"))
		values = append(values, c.Chardata)
	}
	if h.UpdateText != nil {
		if err := h.UpdateText(device, name, names, values); err != nil {
			res.Outcome = OutcomeClientError
			res.Err = err
			return res
		}
	}
	res.Outcome = OutcomeHandled
	return res
}

func dispatchNewBLOB(el Element, device string, reg *Registry, h Handlers, res DispatchResult) DispatchResult {
	name := el.Attr("name")
	res.Property = name
	if derr := checkWritable(reg, device, name, TypeBLOB); derr != nil {
		res.Outcome = OutcomeClientError
		res.Err = derr
		return res
	}
	var names, formats []string
	var sizes []int
	var payloads [][]byte
	for _, c := range el.Children {
		if c.XMLName.Local != "oneBLOB" {
			continue
		}
		payload, err := DecodeBLOB(c.Chardata)
		if err != nil {
			res.Outcome = OutcomeClientError
			res.Err = newDispatchError(KindBadFormat, device, name, err)
			return res
		}
		names = append(names, c.Attr("name"))
		formats = append(formats, c.Attr("format"))
		sizes = append(sizes, len(payload))
		payloads = append(payloads, payload)
	}
	if h.UpdateBLOB != nil {
		if err := h.UpdateBLOB(device, name, names, formats, sizes, payloads); err != nil {
			res.Outcome = OutcomeClientError
			res.Err = err
			return res
		}
	}
	res.Outcome = OutcomeHandled
	return res
}
