package indi

import (
	"encoding/xml"
	"io"
	"time"
)

// timestampFn is overridable in tests; production code leaves it as
// time.Now, formatted per the protocol's UTC "extended ISO 8601"
// convention.
var timestampFn = func() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.0")
}

func writeElement(w io.Writer, v any) error {
	enc := xml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write([]byte("\n"))
	return err
}

func permString(p Permission) string { return p.String() }
func stateString(s PropertyState) string { return s.String() }
func switchString(s SwitchState) string { return s.String() }
func ruleString(r SwitchRule) string { return r.String() }

// EmitDefText sends a defTextVector and registers the property in reg
// so later dispatch can authorize updates against it. Re-emitting a
// definition (e.g. in response to getProperties) is idempotent.
func EmitDefText(w io.Writer, reg *Registry, v *TextVector, msg string) error {
	if err := reg.RegisterUnique(RegistryEntry{Device: v.Device, Name: v.Name, Permission: v.Permission, Type: TypeText}); err != nil {
		return err
	}
	elems := make([]defText, len(v.Members))
	for i, m := range v.Members {
		elems[i] = defText{Name: m.Name, Label: m.Label, Value: m.Value}
	}
	return writeElement(w, defTextVector{
		Device: v.Device, Name: v.Name, Label: v.Label, Group: v.Group,
		State: stateString(v.State), Perm: permString(v.Permission),
		Timeout: v.Timeout, Timestamp: timestampFn(), Message: msg,
		DefTexts: elems,
	})
}

// EmitDefNumber sends a defNumberVector; see EmitDefText.
func EmitDefNumber(w io.Writer, reg *Registry, v *NumberVector, msg string) error {
	if err := reg.RegisterUnique(RegistryEntry{Device: v.Device, Name: v.Name, Permission: v.Permission, Type: TypeNumber}); err != nil {
		return err
	}
	elems := make([]defNumber, len(v.Members))
	for i, m := range v.Members {
		elems[i] = defNumber{
			Name: m.Name, Label: m.Label, Format: m.Format,
			Min: m.Min, Max: m.Max, Step: m.Step,
			Value: FormatSexagesimal(m.Format, m.Value),
		}
	}
	return writeElement(w, defNumberVector{
		Device: v.Device, Name: v.Name, Label: v.Label, Group: v.Group,
		State: stateString(v.State), Perm: permString(v.Permission),
		Timeout: v.Timeout, Timestamp: timestampFn(), Message: msg,
		DefNumbers: elems,
	})
}

// EmitDefSwitch sends a defSwitchVector; see EmitDefText.
func EmitDefSwitch(w io.Writer, reg *Registry, v *SwitchVector, msg string) error {
	if err := reg.RegisterUnique(RegistryEntry{Device: v.Device, Name: v.Name, Permission: v.Permission, Type: TypeSwitch}); err != nil {
		return err
	}
	elems := make([]defSwitch, len(v.Members))
	for i, m := range v.Members {
		elems[i] = defSwitch{Name: m.Name, Label: m.Label, Value: switchString(m.State)}
	}
	return writeElement(w, defSwitchVector{
		Device: v.Device, Name: v.Name, Label: v.Label, Group: v.Group,
		State: stateString(v.State), Perm: permString(v.Permission), Rule: ruleString(v.Rule),
		Timeout: v.Timeout, Timestamp: timestampFn(), Message: msg,
		DefSwitches: elems,
	})
}

// EmitDefLight sends a defLightVector. Lights are display-only and
// are never registered: the dispatcher never accepts a newLightVector
// from a client, so there is nothing for the registry to authorize.
func EmitDefLight(w io.Writer, v *LightVector, msg string) error {
	elems := make([]defLight, len(v.Members))
	for i, m := range v.Members {
		elems[i] = defLight{Name: m.Name, Label: m.Label, Value: stateString(m.State)}
	}
	return writeElement(w, defLightVector{
		Device: v.Device, Name: v.Name, Label: v.Label, Group: v.Group,
		State: stateString(v.State), Timestamp: timestampFn(), Message: msg,
		DefLights: elems,
	})
}

// EmitDefBLOB sends a defBLOBVector. BLOB values are never included
// in a def, only advertised by name, matching the original's
// IDDefBLOBVA which omits any payload.
func EmitDefBLOB(w io.Writer, reg *Registry, v *BLOBVector, msg string) error {
	if err := reg.RegisterUnique(RegistryEntry{Device: v.Device, Name: v.Name, Permission: v.Permission, Type: TypeBLOB}); err != nil {
		return err
	}
	elems := make([]defBLOB, len(v.Members))
	for i, m := range v.Members {
		elems[i] = defBLOB{Name: m.Name, Label: m.Label}
	}
	return writeElement(w, defBLOBVector{
		Device: v.Device, Name: v.Name, Label: v.Label, Group: v.Group,
		State: stateString(v.State), Perm: permString(v.Permission),
		Timeout: v.Timeout, Timestamp: timestampFn(), Message: msg,
		DefBLOBs: elems,
	})
}

// EmitSetText sends a setTextVector value update.
func EmitSetText(w io.Writer, v *TextVector, msg string) error {
	elems := make([]oneText, len(v.Members))
	for i, m := range v.Members {
		elems[i] = oneText{Name: m.Name, Value: m.Value}
	}
	return writeElement(w, setTextVector{
		Device: v.Device, Name: v.Name, State: stateString(v.State),
		Timeout: v.Timeout, Timestamp: timestampFn(), Message: msg, OneTexts: elems,
	})
}

// EmitSetNumber sends a setNumberVector value update.
func EmitSetNumber(w io.Writer, v *NumberVector, msg string) error {
	elems := make([]oneNumber, len(v.Members))
	for i, m := range v.Members {
		elems[i] = oneNumber{Name: m.Name, Value: FormatSexagesimal(m.Format, m.Value)}
	}
	return writeElement(w, setNumberVector{
		Device: v.Device, Name: v.Name, State: stateString(v.State),
		Timeout: v.Timeout, Timestamp: timestampFn(), Message: msg, OneNumbers: elems,
	})
}

// EmitSetSwitch sends a setSwitchVector value update.
func EmitSetSwitch(w io.Writer, v *SwitchVector, msg string) error {
	elems := make([]oneSwitch, len(v.Members))
	for i, m := range v.Members {
		elems[i] = oneSwitch{Name: m.Name, Value: switchString(m.State)}
	}
	return writeElement(w, setSwitchVector{
		Device: v.Device, Name: v.Name, State: stateString(v.State),
		Timeout: v.Timeout, Timestamp: timestampFn(), Message: msg, OneSwitches: elems,
	})
}

// EmitSetLight sends a setLightVector value update.
func EmitSetLight(w io.Writer, v *LightVector, msg string) error {
	elems := make([]oneLight, len(v.Members))
	for i, m := range v.Members {
		elems[i] = oneLight{Name: m.Name, Value: stateString(m.State)}
	}
	return writeElement(w, setLightVector{
		Device: v.Device, Name: v.Name, State: stateString(v.State),
		Timestamp: timestampFn(), Message: msg, OneLights: elems,
	})
}

// EmitSetBLOB sends a setBLOBVector carrying one or more payloads.
// Flow control (the ping/pong back-pressure dance) is the caller's
// responsibility via BlobFlowControl; this function only serializes.
func EmitSetBLOB(w io.Writer, v *BLOBVector, msg string) error {
	elems := make([]oneBLOB, len(v.Members))
	for i, m := range v.Members {
		encoded := EncodeBLOB(m.Bytes)
		elems[i] = oneBLOB{Name: m.Name, Size: m.Size, Format: m.Format, Enclen: len(encoded), Value: encoded}
	}
	return writeElement(w, setBLOBVector{
		Device: v.Device, Name: v.Name, State: stateString(v.State),
		Timeout: v.Timeout, Timestamp: timestampFn(), Message: msg, OneBLOBs: elems,
	})
}

// EmitDelProperty sends a delProperty and forgets the property (or,
// if name is empty, the whole device) from reg.
func EmitDelProperty(w io.Writer, reg *Registry, device, name, msg string) error {
	reg.Forget(device, name)
	return writeElement(w, delProperty{Device: device, Name: name, Timestamp: timestampFn(), Message: msg})
}

// EmitMessage sends a bare informational message, device-scoped if
// device is non-empty or broadcast otherwise.
func EmitMessage(w io.Writer, device, msg string) error {
	return writeElement(w, message{Device: device, Timestamp: timestampFn(), Message: msg})
}

// SnoopDevice tells indiserver this driver wants to observe another
// device's property traffic, by writing a getProperties targeting it.
// An empty device is silently ignored, matching IDSnoopDevice.
func SnoopDevice(w io.Writer, device, property string) error {
	if device == "" {
		return nil
	}
	return writeElement(w, getProperties{
		Version: SupportedProtocolVersion,
		Device:  device,
		Name:    property,
	})
}

// SnoopBLOBs tells indiserver whether BLOBs from a snooped device
// should be delivered alongside (Also), instead of (Only), or never
// (Never) its other property traffic. Silently ignored if device is
// empty, matching IDSnoopBLOBs.
func SnoopBLOBs(w io.Writer, device, property string, handling BLOBHandling) error {
	if device == "" {
		return nil
	}
	return writeElement(w, enableBLOB{
		Device: device,
		Name:   property,
		Value:  handling.String(),
	})
}
