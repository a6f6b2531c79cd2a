package domain

import (
	"encoding/json"
	"fmt"
)

// SpecKey is one entry of the closed attribute vocabulary. Only keys the
// attribute extractor produces are valid; anything else is dropped at the
// boundary.
type SpecKey string

const (
	SpecSize             SpecKey = "size"
	SpecResolution       SpecKey = "resolution"
	SpecRefreshRate      SpecKey = "refresh_rate"
	SpecPanelType        SpecKey = "panel_type"
	SpecCurved           SpecKey = "curved"
	SpecGaming           SpecKey = "gaming"
	SpecHDR              SpecKey = "hdr"
	SpecFreeSync         SpecKey = "freesync"
	SpecGSync            SpecKey = "gsync"
	SpecUSBC             SpecKey = "usb_c"
	SpecHDMI             SpecKey = "hdmi"
	SpecDisplayPort      SpecKey = "displayport"
	SpecSpeakers         SpecKey = "speakers"
	SpecHeightAdjustable SpecKey = "height_adjustable"
)

var knownSpecKeys = map[SpecKey]bool{
	SpecSize: true, SpecResolution: true, SpecRefreshRate: true,
	SpecPanelType: true, SpecCurved: true, SpecGaming: true, SpecHDR: true,
	SpecFreeSync: true, SpecGSync: true, SpecUSBC: true, SpecHDMI: true,
	SpecDisplayPort: true, SpecSpeakers: true, SpecHeightAdjustable: true,
}

// SpecKind discriminates the scalar stored in a SpecValue.
type SpecKind int

const (
	KindString SpecKind = iota
	KindNumber
	KindBool
)

// SpecValue is a scalar spec entry: string, number or bool. No nesting. The
// struct is comparable, so spec equality is plain ==.
type SpecValue struct {
	Kind SpecKind
	Str  string
	Num  float64
	Bool bool
}

// StringSpec wraps a string scalar.
func StringSpec(s string) SpecValue { return SpecValue{Kind: KindString, Str: s} }

// NumberSpec wraps a numeric scalar.
func NumberSpec(f float64) SpecValue { return SpecValue{Kind: KindNumber, Num: f} }

// BoolSpec wraps a boolean scalar.
func BoolSpec(b bool) SpecValue { return SpecValue{Kind: KindBool, Bool: b} }

// MarshalJSON emits the bare scalar, so specs round-trip as plain JSON
// objects ({"size": 27, "curved": true}).
func (v SpecValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.Str)
	}
}

// UnmarshalJSON accepts any JSON scalar and rejects arrays and objects.
func (v *SpecValue) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolSpec(b)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = NumberSpec(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringSpec(s)
		return nil
	}
	return fmt.Errorf("spec value must be a scalar, got %s", string(data))
}

// Specs maps the closed attribute vocabulary to scalar values. Boolean
// feature flags are present only when true; absence means unknown/no.
type Specs map[SpecKey]SpecValue

// UnmarshalJSON decodes a JSON object, silently dropping unknown keys and
// non-scalar values rather than failing the whole payload.
func (s *Specs) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Specs, len(raw))
	for k, rv := range raw {
		key := SpecKey(k)
		if !knownSpecKeys[key] {
			continue
		}
		var v SpecValue
		if err := v.UnmarshalJSON(rv); err != nil {
			continue
		}
		out[key] = v
	}
	*s = out
	return nil
}

// Clone returns an independent copy.
func (s Specs) Clone() Specs {
	if s == nil {
		return nil
	}
	out := make(Specs, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
