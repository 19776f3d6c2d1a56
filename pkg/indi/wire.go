package indi

import (
	"encoding/xml"
	"fmt"
)

// oneText/oneNumber/oneSwitch/oneLight/oneBLOB are the wire element
// shapes for a single vector member, tagged for encoding/xml the same
// way teacher's pkg/libvirt/proto.go tags its DomainXML fields.
type oneText struct {
	XMLName xml.Name `xml:"oneText"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:",chardata"`
}

type oneNumber struct {
	XMLName xml.Name `xml:"oneNumber"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:",chardata"`
}

type oneSwitch struct {
	XMLName xml.Name `xml:"oneSwitch"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:",chardata"`
}

type oneLight struct {
	XMLName xml.Name `xml:"oneLight"`
	Name    string   `xml:"name,attr"`
	Value   string   `xml:",chardata"`
}

type oneBLOB struct {
	XMLName xml.Name `xml:"oneBLOB"`
	Name    string   `xml:"name,attr"`
	Size    int      `xml:"size,attr"`
	Format  string   `xml:"format,attr"`
	Enclen  int      `xml:"enclen,attr,omitempty"`
	Value   string   `xml:",chardata"`
}

// defTextVector etc. are the vector-level wire wrappers used for
// defXxxVector emissions, which advertise label/group/permission and
// carry the full member set.
type defTextVector struct {
	XMLName    xml.Name  `xml:"defTextVector"`
	Device     string    `xml:"device,attr"`
	Name       string    `xml:"name,attr"`
	Label      string    `xml:"label,attr,omitempty"`
	Group      string    `xml:"group,attr,omitempty"`
	State      string    `xml:"state,attr"`
	Perm       string    `xml:"perm,attr"`
	Timeout    float64   `xml:"timeout,attr,omitempty"`
	Timestamp  string    `xml:"timestamp,attr,omitempty"`
	Message    string    `xml:"message,attr,omitempty"`
	DefTexts   []defText `xml:"defText"`
}

type defText struct {
	XMLName xml.Name `xml:"defText"`
	Name    string   `xml:"name,attr"`
	Label   string   `xml:"label,attr,omitempty"`
	Value   string   `xml:",chardata"`
}

type defNumberVector struct {
	XMLName     xml.Name    `xml:"defNumberVector"`
	Device      string      `xml:"device,attr"`
	Name        string      `xml:"name,attr"`
	Label       string      `xml:"label,attr,omitempty"`
	Group       string      `xml:"group,attr,omitempty"`
	State       string      `xml:"state,attr"`
	Perm        string      `xml:"perm,attr"`
	Timeout     float64     `xml:"timeout,attr,omitempty"`
	Timestamp   string      `xml:"timestamp,attr,omitempty"`
	Message     string      `xml:"message,attr,omitempty"`
	DefNumbers  []defNumber `xml:"defNumber"`
}

type defNumber struct {
	XMLName xml.Name `xml:"defNumber"`
	Name    string   `xml:"name,attr"`
	Label   string   `xml:"label,attr,omitempty"`
	Format  string   `xml:"format,attr"`
	Min     float64  `xml:"min,attr"`
	Max     float64  `xml:"max,attr"`
	Step    float64  `xml:"step,attr"`
	Value   string   `xml:",chardata"`
}

type defSwitchVector struct {
	XMLName     xml.Name    `xml:"defSwitchVector"`
	Device      string      `xml:"device,attr"`
	Name        string      `xml:"name,attr"`
	Label       string      `xml:"label,attr,omitempty"`
	Group       string      `xml:"group,attr,omitempty"`
	State       string      `xml:"state,attr"`
	Perm        string      `xml:"perm,attr"`
	Rule        string      `xml:"rule,attr"`
	Timeout     float64     `xml:"timeout,attr,omitempty"`
	Timestamp   string      `xml:"timestamp,attr,omitempty"`
	Message     string      `xml:"message,attr,omitempty"`
	DefSwitches []defSwitch `xml:"defSwitch"`
}

type defSwitch struct {
	XMLName xml.Name `xml:"defSwitch"`
	Name    string   `xml:"name,attr"`
	Label   string   `xml:"label,attr,omitempty"`
	Value   string   `xml:",chardata"`
}

type defLightVector struct {
	XMLName    xml.Name   `xml:"defLightVector"`
	Device     string     `xml:"device,attr"`
	Name       string     `xml:"name,attr"`
	Label      string     `xml:"label,attr,omitempty"`
	Group      string     `xml:"group,attr,omitempty"`
	State      string     `xml:"state,attr"`
	Timestamp  string     `xml:"timestamp,attr,omitempty"`
	Message    string     `xml:"message,attr,omitempty"`
	DefLights  []defLight `xml:"defLight"`
}

type defLight struct {
	XMLName xml.Name `xml:"defLight"`
	Name    string   `xml:"name,attr"`
	Label   string   `xml:"label,attr,omitempty"`
	Value   string   `xml:",chardata"`
}

type defBLOBVector struct {
	XMLName    xml.Name   `xml:"defBLOBVector"`
	Device     string     `xml:"device,attr"`
	Name       string     `xml:"name,attr"`
	Label      string     `xml:"label,attr,omitempty"`
	Group      string     `xml:"group,attr,omitempty"`
	State      string     `xml:"state,attr"`
	Perm       string     `xml:"perm,attr"`
	Timeout    float64    `xml:"timeout,attr,omitempty"`
	Timestamp  string     `xml:"timestamp,attr,omitempty"`
	Message    string     `xml:"message,attr,omitempty"`
	DefBLOBs   []defBLOB  `xml:"defBLOB"`
}

type defBLOB struct {
	XMLName xml.Name `xml:"defBLOB"`
	Name    string   `xml:"name,attr"`
	Label   string   `xml:"label,attr,omitempty"`
}

// setTextVector etc. are the set-side counterparts, which never carry
// label/group/permission since those are immutable after Define.
type setTextVector struct {
	XMLName   xml.Name  `xml:"setTextVector"`
	Device    string    `xml:"device,attr"`
	Name      string    `xml:"name,attr"`
	State     string    `xml:"state,attr"`
	Timeout   float64   `xml:"timeout,attr,omitempty"`
	Timestamp string    `xml:"timestamp,attr,omitempty"`
	Message   string    `xml:"message,attr,omitempty"`
	OneTexts  []oneText `xml:"oneText"`
}

type setNumberVector struct {
	XMLName    xml.Name    `xml:"setNumberVector"`
	Device     string      `xml:"device,attr"`
	Name       string      `xml:"name,attr"`
	State      string      `xml:"state,attr"`
	Timeout    float64     `xml:"timeout,attr,omitempty"`
	Timestamp  string      `xml:"timestamp,attr,omitempty"`
	Message    string      `xml:"message,attr,omitempty"`
	OneNumbers []oneNumber `xml:"oneNumber"`
}

type setSwitchVector struct {
	XMLName    xml.Name    `xml:"setSwitchVector"`
	Device     string      `xml:"device,attr"`
	Name       string      `xml:"name,attr"`
	State      string      `xml:"state,attr"`
	Timeout    float64     `xml:"timeout,attr,omitempty"`
	Timestamp  string      `xml:"timestamp,attr,omitempty"`
	Message    string      `xml:"message,attr,omitempty"`
	OneSwitches []oneSwitch `xml:"oneSwitch"`
}

type setLightVector struct {
	XMLName   xml.Name   `xml:"setLightVector"`
	Device    string     `xml:"device,attr"`
	Name      string     `xml:"name,attr"`
	State     string     `xml:"state,attr"`
	Timestamp string     `xml:"timestamp,attr,omitempty"`
	Message   string     `xml:"message,attr,omitempty"`
	OneLights []oneLight `xml:"oneLight"`
}

type setBLOBVector struct {
	XMLName   xml.Name  `xml:"setBLOBVector"`
	Device    string    `xml:"device,attr"`
	Name      string    `xml:"name,attr"`
	State     string    `xml:"state,attr"`
	Timeout   float64   `xml:"timeout,attr,omitempty"`
	Timestamp string    `xml:"timestamp,attr,omitempty"`
	Message   string    `xml:"message,attr,omitempty"`
	OneBLOBs  []oneBLOB `xml:"oneBLOB"`
}

type delProperty struct {
	XMLName   xml.Name `xml:"delProperty"`
	Device    string   `xml:"device,attr"`
	Name      string   `xml:"name,attr,omitempty"`
	Timestamp string   `xml:"timestamp,attr,omitempty"`
	Message   string   `xml:"message,attr,omitempty"`
}

type message struct {
	XMLName   xml.Name `xml:"message"`
	Device    string   `xml:"device,attr,omitempty"`
	Timestamp string   `xml:"timestamp,attr,omitempty"`
	Message   string   `xml:"message,attr"`
}

type enableBLOB struct {
	XMLName xml.Name `xml:"enableBLOB"`
	Device  string   `xml:"device,attr"`
	Name    string   `xml:"name,attr,omitempty"`
	Value   string   `xml:",chardata"`
}

type getProperties struct {
	XMLName Name    `xml:"getProperties"`
	Version string  `xml:"version,attr"`
	Device  string  `xml:"device,attr,omitempty"`
	Name    string  `xml:"name,attr,omitempty"`
}

// Name is an alias kept for readability at call sites that build a
// getProperties element; xml.Name already satisfies the XMLName field
// contract.
type Name = xml.Name

// fmtErr builds a DispatchError whose underlying error wraps the
// package sentinel matching kind (if any), so callers can always branch
// with errors.Is(err, indi.ErrUnknownProperty) etc. regardless of which
// call site produced the error.
func fmtErr(kind Kind, device, property string, format string, args ...any) *DispatchError {
	msg := fmt.Sprintf(format, args...)
	var err error
	if sentinel := sentinelFor(kind); sentinel != nil {
		err = fmt.Errorf("%w: %s", sentinel, msg)
	} else {
		err = fmt.Errorf("%s", msg)
	}
	return newDispatchError(kind, device, property, err)
}
