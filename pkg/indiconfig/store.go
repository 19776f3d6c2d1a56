// Package indiconfig implements file-backed persistence of property
// values in the wire XML format, matching the original indidriver.c
// IUGetConfigFP/IUReadConfig/IUSaveConfig family: a device's settings
// live in an XML file under ~/.indi (or a location overridden by the
// INDICONFIG environment variable or an explicit path), and are
// replayed into the driver's own newXxxVector handling on startup.
package indiconfig

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goindi/indidriver/pkg/indi"
)

// configDirMode is rwxr-x---, the permission on <HOME>/.indi the
// protocol requires: the owning user gets full access, the group can
// read and traverse it, and everyone else gets nothing.
const configDirMode fs.FileMode = 0o750

// Location resolves where a device's config file lives. Precedence,
// highest first: an explicit path passed by the caller, the INDICONFIG
// environment variable, then "<HOME>/.indi/<device>_config.xml" with
// spaces in the device name replaced by underscores.
func Location(device, explicitPath string) (string, error) {
	if explicitPath != "" {
		return explicitPath, nil
	}
	if envPath := os.Getenv("INDICONFIG"); envPath != "" {
		return envPath, nil
	}

	home, err := homeDir()
	if err != nil {
		return "", fmt.Errorf("resolving config location: %w", err)
	}
	name := strings.ReplaceAll(device, " ", "_")
	return filepath.Join(home, ".indi", name+"_config.xml"), nil
}

func homeDir() (string, error) {
	if h := os.Getenv("HOME"); h != "" {
		return h, nil
	}
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.HomeDir, nil
}

// ownershipGuard refuses to operate against a config directory owned
// by root when the current process is not root itself, matching the
// original's explicit check and remediation message — a driver
// launched via sudo once must not silently keep writing into a
// root-owned ~/.indi forever after.
func ownershipGuard(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	owner, err := fileOwnerUID(info)
	if err != nil || owner < 0 {
		return nil
	}
	if owner == 0 && os.Geteuid() != 0 {
		return fmt.Errorf("%w: config directory %s is owned by root; run: sudo chown -R $USER:$USER %s",
			ErrOwnedByRoot, dir, dir)
	}
	return nil
}

// vectorDoc is the root element a config file persists: a flat list
// of the device's writable vectors, each carrying only member values
// (not labels/min/max/step, which are driver-intrinsic and never
// round-tripped through config).
type vectorDoc struct {
	XMLName       xml.Name        `xml:"INDIDriver"`
	NumberVectors []numberVectorXML `xml:"newNumberVector"`
	TextVectors   []textVectorXML   `xml:"newTextVector"`
	SwitchVectors []switchVectorXML `xml:"newSwitchVector"`
}

type numberVectorXML struct {
	Device  string          `xml:"device,attr"`
	Name    string          `xml:"name,attr"`
	Numbers []oneNumberXML  `xml:"oneNumber"`
}
type oneNumberXML struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}
type textVectorXML struct {
	Device string      `xml:"device,attr"`
	Name   string      `xml:"name,attr"`
	Texts  []oneTextXML `xml:"oneText"`
}
type oneTextXML struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}
type switchVectorXML struct {
	Device   string         `xml:"device,attr"`
	Name     string         `xml:"name,attr"`
	Switches []oneSwitchXML `xml:"oneSwitch"`
}
type oneSwitchXML struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Store is a mutex-guarded handle onto one device's config file. A
// driver creates one Store per device (mirroring the original's
// per-device filename) and uses it both to persist the current state
// on demand and to replay saved state back in via LoadAndApply.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open resolves the config file location for device (honoring
// explicitPath/INDICONFIG/home precedence) and returns a Store bound
// to it. The file need not exist yet.
func Open(device, explicitPath string) (*Store, error) {
	path, err := Location(device, explicitPath)
	if err != nil {
		return nil, err
	}
	if err := ownershipGuard(filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

// Path returns the resolved config file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (vectorDoc, error) {
	var doc vectorDoc
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("reading config %s: %w", s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("%w: parsing config %s: %v", indi.ErrBadFormat, s.path, err)
	}
	return doc, nil
}

func (s *Store) save(doc vectorDoc) error {
	if err := os.MkdirAll(filepath.Dir(s.path), configDirMode); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(s.path, append(out, '\n'), 0o644)
}

// Applier is a driver-supplied sink LoadAndApplySimple feeds saved
// values into directly, bypassing the protocol dispatcher; kept for
// drivers that don't want the full registry-authorization round trip
// (e.g. replaying config before any property has been Defined yet).
type Applier struct {
	Number func(device, name string, members, values []string) error
	Text   func(device, name string, members, values []string) error
	Switch func(device, name string, members, values []string) error
}

// LoadAndApplySimple reads the config file (a no-op, not an error, if
// it does not exist yet) and replays every saved vector through
// applier without going through the protocol dispatcher. Prefer
// LoadAndApply, which mirrors IUReadConfig's actual behavior of
// calling dispatch() for each saved element; this variant exists for
// bootstrap cases where properties aren't registered yet at load time.
func (s *Store) LoadAndApplySimple(applier Applier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	for _, nv := range doc.NumberVectors {
		if applier.Number == nil {
			continue
		}
		members, values := splitNumbers(nv.Numbers)
		if err := applier.Number(nv.Device, nv.Name, members, values); err != nil {
			return err
		}
	}
	for _, tv := range doc.TextVectors {
		if applier.Text == nil {
			continue
		}
		members, values := splitTexts(tv.Texts)
		if err := applier.Text(tv.Device, tv.Name, members, values); err != nil {
			return err
		}
	}
	for _, sv := range doc.SwitchVectors {
		if applier.Switch == nil {
			continue
		}
		members, values := splitSwitches(sv.Switches)
		if err := applier.Switch(sv.Device, sv.Name, members, values); err != nil {
			return err
		}
	}
	return nil
}

// DispatchFunc is the driver's live protocol dispatcher, the same one
// that handles wire traffic; LoadAndApply feeds each saved element
// through it so config replay is authorized (registered, writable)
// exactly like an incoming newXxxVector, matching the original
// IUReadConfig's call into dispatch().
type DispatchFunc func(device string, el indi.Element) indi.DispatchResult

// LoadAndApply reads the config file (a no-op, not an error, if it
// does not exist yet), filters its saved vectors to device, optionally
// a single property (stopping after the first match), and feeds each
// through dispatch. An [INFO] message is sent via message (if non-nil)
// at the start and end unless silent; both are sent only when the file
// holds at least one vector for device.
func (s *Store) LoadAndApply(device string, property *string, silent bool, message func(device, text string), dispatch DispatchFunc) error {
	s.mu.Lock()
	doc, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	elements := deviceElements(doc, device)
	if len(elements) > 0 && !silent && message != nil {
		message(device, "[INFO] Loading device configuration...")
	}

	for _, el := range elements {
		if property != nil && el.Attr("name") != *property {
			continue
		}
		dispatch(device, el)
		if property != nil {
			break
		}
	}

	if len(elements) > 0 && !silent && message != nil {
		message(device, "[INFO] Device configuration applied.")
	}
	return nil
}

// deviceElements flattens doc's saved vectors belonging to device into
// generic indi.Element values shaped exactly like the wire new*Vector
// elements the Dispatcher already knows how to route.
func deviceElements(doc vectorDoc, device string) []indi.Element {
	var out []indi.Element
	for _, nv := range doc.NumberVectors {
		if nv.Device != device {
			continue
		}
		out = append(out, numberVectorElement(nv))
	}
	for _, tv := range doc.TextVectors {
		if tv.Device != device {
			continue
		}
		out = append(out, textVectorElement(tv))
	}
	for _, sv := range doc.SwitchVectors {
		if sv.Device != device {
			continue
		}
		out = append(out, switchVectorElement(sv))
	}
	return out
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func numberVectorElement(nv numberVectorXML) indi.Element {
	el := indi.Element{
		XMLName: xml.Name{Local: "newNumberVector"},
		Attrs:   []xml.Attr{attr("device", nv.Device), attr("name", nv.Name)},
	}
	for _, n := range nv.Numbers {
		el.Children = append(el.Children, indi.Element{
			XMLName:  xml.Name{Local: "oneNumber"},
			Attrs:    []xml.Attr{attr("name", n.Name)},
			Chardata: n.Value,
		})
	}
	return el
}

func textVectorElement(tv textVectorXML) indi.Element {
	el := indi.Element{
		XMLName: xml.Name{Local: "newTextVector"},
		Attrs:   []xml.Attr{attr("device", tv.Device), attr("name", tv.Name)},
	}
	for _, t := range tv.Texts {
		el.Children = append(el.Children, indi.Element{
			XMLName:  xml.Name{Local: "oneText"},
			Attrs:    []xml.Attr{attr("name", t.Name)},
			Chardata: t.Value,
		})
	}
	return el
}

func switchVectorElement(sv switchVectorXML) indi.Element {
	el := indi.Element{
		XMLName: xml.Name{Local: "newSwitchVector"},
		Attrs:   []xml.Attr{attr("device", sv.Device), attr("name", sv.Name)},
	}
	for _, sw := range sv.Switches {
		el.Children = append(el.Children, indi.Element{
			XMLName:  xml.Name{Local: "oneSwitch"},
			Attrs:    []xml.Attr{attr("name", sw.Name)},
			Chardata: sw.Value,
		})
	}
	return el
}

// SaveAsDefault persists the current state of the given vectors,
// replacing the file's prior contents wholesale: the saved file always
// reflects only what was passed, not a merge with anything previously
// on disk. It does not copy the file to a ".default" sibling.
func (s *Store) SaveAsDefault(numbers []*indi.NumberVector, texts []*indi.TextVector, switches []*indi.SwitchVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc vectorDoc
	for _, v := range numbers {
		nv := numberVectorXML{Device: v.Device, Name: v.Name}
		for _, m := range v.Members {
			nv.Numbers = append(nv.Numbers, oneNumberXML{Name: m.Name, Value: indi.FormatSexagesimal(m.Format, m.Value)})
		}
		doc.NumberVectors = append(doc.NumberVectors, nv)
	}
	for _, v := range texts {
		tv := textVectorXML{Device: v.Device, Name: v.Name}
		for _, m := range v.Members {
			tv.Texts = append(tv.Texts, oneTextXML{Name: m.Name, Value: m.Value})
		}
		doc.TextVectors = append(doc.TextVectors, tv)
	}
	for _, v := range switches {
		sv := switchVectorXML{Device: v.Device, Name: v.Name}
		for _, m := range v.Members {
			sv.Switches = append(sv.Switches, oneSwitchXML{Name: m.Name, Value: m.State.String()})
		}
		doc.SwitchVectors = append(doc.SwitchVectors, sv)
	}
	return s.save(doc)
}

// Purge deletes the config file entirely, matching IUPurgeConfig. It
// is not an error for the file to already be absent.
func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("purging config %s: %w", s.path, err)
	}
	return nil
}

// GetNumber returns the single saved value for a named number member,
// matching IUGetConfigNumber.
func (s *Store) GetNumber(device, property, member string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	for _, nv := range doc.NumberVectors {
		if nv.Device != device || nv.Name != property {
			continue
		}
		for _, n := range nv.Numbers {
			if n.Name == member {
				return indi.ParseSexagesimalOrDecimal(n.Value)
			}
		}
	}
	return 0, fmt.Errorf("%w: %s.%s.%s not present in config", ErrNotFound, device, property, member)
}

// GetText returns the single saved value for a named text member,
// matching IUGetConfigText.
func (s *Store) GetText(device, property, member string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return "", err
	}
	for _, tv := range doc.TextVectors {
		if tv.Device != device || tv.Name != property {
			continue
		}
		for _, tt := range tv.Texts {
			if tt.Name == member {
				return tt.Value, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s.%s.%s not present in config", ErrNotFound, device, property, member)
}

// GetOnSwitchIndex returns the 0-based index of the On member within
// a saved switch vector, matching IUGetConfigOnSwitchIndex.
func (s *Store) GetOnSwitchIndex(device, property string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return -1, err
	}
	for _, sv := range doc.SwitchVectors {
		if sv.Device != device || sv.Name != property {
			continue
		}
		for i, sw := range sv.Switches {
			if sw.Value == "On" {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: %s.%s has no saved On switch", ErrNotFound, device, property)
}

// GetOnSwitchName returns the member name of the On switch within a
// saved switch vector, matching IUGetConfigOnSwitchName.
func (s *Store) GetOnSwitchName(device, property string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return "", err
	}
	for _, sv := range doc.SwitchVectors {
		if sv.Device != device || sv.Name != property {
			continue
		}
		for _, sw := range sv.Switches {
			if sw.Value == "On" {
				return sw.Name, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s.%s has no saved On switch", ErrNotFound, device, property)
}

func splitNumbers(ns []oneNumberXML) (names, values []string) {
	for _, n := range ns {
		names = append(names, n.Name)
		values = append(values, n.Value)
	}
	return
}
func splitTexts(ts []oneTextXML) (names, values []string) {
	for _, tt := range ts {
		names = append(names, tt.Name)
		values = append(values, tt.Value)
	}
	return
}
func splitSwitches(ss []oneSwitchXML) (names, values []string) {
	for _, sw := range ss {
		names = append(names, sw.Name)
		values = append(values, sw.Value)
	}
	return
}
