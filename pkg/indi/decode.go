package indi

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// ParseSexagesimalOrDecimal parses an INDI number value, which the
// protocol allows to be sent either as a plain decimal ("12.345") or
// as sexagesimal "D:M:S" / "D:M.m" notation, with colons or single
// spaces between the fields, as produced by the original f_scansexa.
// strconv.ParseFloat is locale independent in Go, so unlike the C
// original there is no need to push/pop a C-locale around the parse.
func ParseSexagesimalOrDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty numeric value", ErrBadFormat)
	}

	if !strings.ContainsAny(s, ": ") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrBadFormat, s, err)
		}
		return v, nil
	}

	neg := false
	rest := s
	if strings.HasPrefix(rest, "-") {
		neg = true
		rest = rest[1:]
	} else if strings.HasPrefix(rest, "+") {
		rest = rest[1:]
	}

	parts := strings.Split(strings.ReplaceAll(rest, " ", ":"), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q: expected D:M[:S]", ErrBadFormat, s)
	}

	deg, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: bad degrees: %v", ErrBadFormat, s, err)
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: bad minutes: %v", ErrBadFormat, s, err)
	}
	var seconds float64
	if len(parts) == 3 {
		seconds, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: bad seconds: %v", ErrBadFormat, s, err)
		}
	}

	v := deg + minutes/60 + seconds/3600
	if neg {
		v = -v
	}
	return v, nil
}

// FormatSexagesimal renders a number per an INDI numberFormat spec
// such as "%10.6m" (sexagesimal) or a plain printf verb like "%6.2f".
// Only the 'm' sexagesimal suffix gets special handling; anything else
// is passed straight to fmt.Sprintf, matching the original's
// numberFormat()/dtos()/f_format split.
func FormatSexagesimal(format string, value float64) string {
	if !strings.HasSuffix(format, "m") {
		return fmt.Sprintf(format, value)
	}

	neg := value < 0
	if neg {
		value = -value
	}
	deg := int(value)
	fracMin := (value - float64(deg)) * 60
	min := int(fracMin)
	sec := (fracMin - float64(min)) * 60

	sign := ""
	if neg {
		sign = "-"
	}
	// Carry into the minutes when the seconds would print as 60.0 at
	// one decimal place, avoiding "12:59:60.0"-style overflow.
	if sec >= 59.95 {
		sec = 0
		min++
		if min >= 60 {
			min = 0
			deg++
		}
	}
	return fmt.Sprintf("%s%d:%02d:%04.1f", sign, deg, min, sec)
}

// decodedBLOBBufferSize mirrors the original's enclen-based allocation
// size for a base64-encoded BLOB payload: 3 decoded bytes per 4
// encoded characters, rounded up.
func decodedBLOBBufferSize(enclen int) int {
	return (3*enclen + 3) / 4
}

// DecodeBLOB base64-decodes an incoming oneBLOB element body. The
// stdlib base64 codec is the intended external collaborator for this
// step; INDI's wire encoding is plain (unpadded-tolerant) standard
// base64.
func DecodeBLOB(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	buf := make([]byte, 0, decodedBLOBBufferSize(len(encoded)))
	dst := make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, err := base64.StdEncoding.Decode(dst, []byte(encoded))
	if err != nil {
		// Fall back to RawStdEncoding for payloads sent without padding,
		// which some INDI clients emit.
		dst2 := make([]byte, base64.RawStdEncoding.DecodedLen(len(encoded)))
		n2, err2 := base64.RawStdEncoding.Decode(dst2, []byte(encoded))
		if err2 != nil {
			return nil, fmt.Errorf("%w: bad BLOB base64: %v", ErrBadFormat, err)
		}
		return append(buf, dst2[:n2]...), nil
	}
	return append(buf, dst[:n]...), nil
}

// EncodeBLOB base64-encodes a BLOB payload for transmission.
func EncodeBLOB(raw []byte) string {
	return base64.StdEncoding.EncodeToString(raw)
}

// ParseSwitchState decodes an "On"/"Off" wire token: any value that
// begins with "On" is On, and only the exact "Off" is Off.
func ParseSwitchState(s string) (SwitchState, error) {
	t := strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(t, "On"):
		return On, nil
	case t == "Off":
		return Off, nil
	default:
		return Off, fmt.Errorf("%w: %q: expected On or Off", ErrBadFormat, s)
	}
}

// ParsePropertyState decodes an Idle/Ok/Busy/Alert wire token.
func ParsePropertyState(s string) (PropertyState, error) {
	switch strings.TrimSpace(s) {
	case "Idle":
		return StateIdle, nil
	case "Ok":
		return StateOk, nil
	case "Busy":
		return StateBusy, nil
	case "Alert":
		return StateAlert, nil
	default:
		return StateIdle, fmt.Errorf("%w: %q: expected Idle, Ok, Busy or Alert", ErrBadFormat, s)
	}
}

// ParsePermission decodes an ro/wo/rw wire token.
func ParsePermission(s string) (Permission, error) {
	switch strings.TrimSpace(s) {
	case "ro":
		return PermRO, nil
	case "wo":
		return PermWO, nil
	case "rw":
		return PermRW, nil
	default:
		return PermRO, fmt.Errorf("%w: %q: expected ro, wo or rw", ErrBadFormat, s)
	}
}

// ParseSwitchRule decodes a switch vector's rule attribute.
func ParseSwitchRule(s string) (SwitchRule, error) {
	switch strings.TrimSpace(s) {
	case "OneOfMany":
		return RuleOneOfMany, nil
	case "AtMostOneOfMany":
		return RuleAtMostOne, nil
	case "AnyOfMany", "":
		return RuleAnyOfMany, nil
	default:
		return RuleAnyOfMany, fmt.Errorf("%w: %q: unknown switch rule", ErrBadFormat, s)
	}
}
