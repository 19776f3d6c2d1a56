package indi

import "fmt"

// UpdateText applies new values to the named members of a text
// vector. Unknown member names are rejected and the vector is left
// untouched — there is no partial application, matching the
// original's IUUpdateText which validates every name before writing
// any value.
func UpdateText(v *TextVector, names, values []string) error {
	if len(names) != len(values) {
		return fmt.Errorf("%w: %d names but %d values", ErrBadFormat, len(names), len(values))
	}
	targets := make([]*TextMember, len(names))
	for i, name := range names {
		m := v.FindText(name)
		if m == nil {
			v.State = StateIdle
			return fmtErr(KindUnknownProperty, v.Device, v.Name, "no such text member %q", name)
		}
		targets[i] = m
	}
	for i, m := range targets {
		m.Value = values[i]
	}
	return nil
}

// UpdateNumber applies new values to the named members of a number
// vector, validating every value is within [Min, Max] before applying
// any of them.
func UpdateNumber(v *NumberVector, names []string, values []float64) error {
	if len(names) != len(values) {
		return fmt.Errorf("%w: %d names but %d values", ErrBadFormat, len(names), len(values))
	}
	targets := make([]*NumberMember, len(names))
	for i, name := range names {
		m := v.FindNumber(name)
		if m == nil {
			v.State = StateIdle
			return fmtErr(KindUnknownProperty, v.Device, v.Name, "no such number member %q", name)
		}
		if values[i] < m.Min || values[i] > m.Max {
			v.State = StateAlert
			return fmtErr(KindBadFormat, v.Device, v.Name,
				"value %g for %q out of range [%g, %g]", values[i], name, m.Min, m.Max)
		}
		targets[i] = m
	}
	for i, m := range targets {
		m.Value = values[i]
	}
	return nil
}

// UpdateSwitch applies an On/Off state to the named members of a
// switch vector, enforcing the vector's Rule. Only RuleOneOfMany
// resets every other member to Off and requires exactly one member end
// up On; RuleAtMostOne and RuleAnyOfMany allow arbitrary combinations
// and are applied as given, matching the original IUUpdateSwitch, which
// only special-cases ISR_1OFMANY.
func UpdateSwitch(v *SwitchVector, names []string, states []SwitchState) error {
	if len(names) != len(states) {
		return fmt.Errorf("%w: %d names but %d states", ErrBadFormat, len(names), len(states))
	}
	targets := make([]*SwitchMember, len(names))
	for i, name := range names {
		m := v.FindSwitch(name)
		if m == nil {
			v.State = StateIdle
			return fmtErr(KindUnknownProperty, v.Device, v.Name, "no such switch member %q", name)
		}
		targets[i] = m
	}

	if v.Rule == RuleOneOfMany {
		onCount := 0
		for _, s := range states {
			if s == On {
				onCount++
			}
		}
		if onCount != 1 {
			v.State = StateIdle
			return fmtErr(KindBadFormat, v.Device, v.Name,
				"OneOfMany switch vector requires exactly one member On, got %d", onCount)
		}
		v.ResetSwitches()
	}

	for i, m := range targets {
		m.State = states[i]
	}
	return nil
}

// UpdateBLOB applies a decoded payload to the named member of a BLOB
// vector.
func UpdateBLOB(v *BLOBVector, names []string, formats []string, sizes []int, payloads [][]byte) error {
	if len(names) != len(payloads) || len(names) != len(formats) || len(names) != len(sizes) {
		return fmt.Errorf("%w: mismatched BLOB element counts", ErrBadFormat)
	}
	targets := make([]*BLOBMember, len(names))
	for i, name := range names {
		m := v.FindBLOB(name)
		if m == nil {
			v.State = StateIdle
			return fmtErr(KindUnknownProperty, v.Device, v.Name, "no such BLOB member %q", name)
		}
		targets[i] = m
	}
	for i, m := range targets {
		m.Bytes = payloads[i]
		m.Format = formats[i]
		m.Size = sizes[i]
		m.BlobSize = len(payloads[i])
	}
	return nil
}
