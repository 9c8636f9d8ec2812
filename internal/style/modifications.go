// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package style compiles component-scoped style modifications into CSS.
// Everything here is pure: no I/O, no globals that change at runtime.
package style

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"strings"
)

// Theme names a predefined bundle of declarations.
type Theme string

const (
	ThemeNeon    Theme = "neon"
	ThemeMinimal Theme = "minimal"
	ThemeBold    Theme = "bold"
	ThemeDark    Theme = "dark"
	ThemeLight   Theme = "light"
	ThemeCustom  Theme = "custom"
)

// Themes lists every theme with a defined meaning, in display order.
var Themes = []Theme{ThemeNeon, ThemeMinimal, ThemeBold, ThemeDark, ThemeLight, ThemeCustom}

// Known reports whether t is one of the predefined themes.
func (t Theme) Known() bool {
	return slices.Contains(Themes, t)
}

// UnmarshalJSON accepts any JSON value. Strings are lowercased and trimmed;
// anything else decodes to the empty theme.
func (t *Theme) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = ""
		return nil
	}
	*t = Theme(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

// Length is a CSS length or size value such as "16px" or "1.5rem".
//
// Model output is loosely typed, so decoding is lenient: a bare number is
// taken as pixels, and an object or array collapses to its last non-empty
// value in document order.
type Length string

// UnmarshalJSON implements the lenient decoding described on Length.
func (l *Length) UnmarshalJSON(b []byte) error {
	*l = Length(lenientString(b))
	return nil
}

func lenientString(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '{', '[':
		return lastNested(b)
	case 't', 'f', 'n':
		return ""
	default:
		n, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return ""
		}
		if n == 0 {
			return "0"
		}
		return strconv.FormatFloat(n, 'f', -1, 64) + "px"
	}
}

// lastNested walks an object or array and returns the last scalar value
// that decodes to a non-empty string.
func lastNested(b []byte) string {
	dec := json.NewDecoder(bytes.NewReader(b))
	open, err := dec.Token()
	if err != nil {
		return ""
	}
	isObject := open == json.Delim('{')

	var last string
	for dec.More() {
		if isObject {
			if _, err := dec.Token(); err != nil {
				return last
			}
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return last
		}
		if v := lenientString(raw); v != "" {
			last = v
		}
	}
	return last
}

// Palette groups colour modifications. Keys outside the fixed set are kept
// in Custom and compile to custom properties.
type Palette struct {
	Background string
	Text       string
	Border     string
	Custom     map[string]string
}

func (p *Palette) fields() []namedField {
	return []namedField{
		{"background", &p.Background},
		{"text", &p.Text},
		{"border", &p.Border},
	}
}

// UnmarshalJSON decodes the fixed keys and captures the rest into Custom.
func (p *Palette) UnmarshalJSON(b []byte) error {
	custom, err := decodeGroup(b, p.fields())
	p.Custom = custom
	return err
}

// MarshalJSON flattens the fixed keys and Custom into one object.
func (p Palette) MarshalJSON() ([]byte, error) {
	return encodeGroup(p.fields(), p.Custom)
}

// Spacing groups box-model spacing modifications.
type Spacing struct {
	Padding string
	Margin  string
	Gap     string
	Custom  map[string]string
}

func (s *Spacing) fields() []namedField {
	return []namedField{
		{"padding", &s.Padding},
		{"margin", &s.Margin},
		{"gap", &s.Gap},
	}
}

// UnmarshalJSON decodes the fixed keys and captures the rest into Custom.
func (s *Spacing) UnmarshalJSON(b []byte) error {
	custom, err := decodeGroup(b, s.fields())
	s.Custom = custom
	return err
}

// MarshalJSON flattens the fixed keys and Custom into one object.
func (s Spacing) MarshalJSON() ([]byte, error) {
	return encodeGroup(s.fields(), s.Custom)
}

// Layout groups sizing and flow modifications.
type Layout struct {
	Width         string
	Height        string
	Display       string
	FlexDirection string
	Custom        map[string]string
}

func (l *Layout) fields() []namedField {
	return []namedField{
		{"width", &l.Width},
		{"height", &l.Height},
		{"display", &l.Display},
		{"flexDirection", &l.FlexDirection},
	}
}

// UnmarshalJSON decodes the fixed keys and captures the rest into Custom.
func (l *Layout) UnmarshalJSON(b []byte) error {
	custom, err := decodeGroup(b, l.fields())
	l.Custom = custom
	return err
}

// MarshalJSON flattens the fixed keys and Custom into one object.
func (l Layout) MarshalJSON() ([]byte, error) {
	return encodeGroup(l.fields(), l.Custom)
}

// Modifications is the structured payload of a single style rule. Every
// field is optional.
type Modifications struct {
	Colors       *Palette `json:"colors,omitempty"`
	Spacing      *Spacing `json:"spacing,omitempty"`
	Layout       *Layout  `json:"layout,omitempty"`
	FontSize     Length   `json:"fontSize,omitempty"`
	BorderRadius Length   `json:"borderRadius,omitempty"`
	Theme        Theme    `json:"theme,omitempty"`
}

// IsZero reports whether m carries no modification at all.
func (m Modifications) IsZero() bool {
	return m.Colors == nil && m.Spacing == nil && m.Layout == nil &&
		m.FontSize == "" && m.BorderRadius == "" && m.Theme == ""
}

type namedField struct {
	key string
	dst *string
}

func decodeGroup(b []byte, fields []namedField) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		// A scalar where an object was expected carries nothing usable.
		if bytes.HasPrefix(bytes.TrimSpace(b), []byte("{")) {
			return nil, err
		}
		return nil, nil
	}

	var custom map[string]string
	for key, value := range raw {
		v := lenientString(value)
		if i := slices.IndexFunc(fields, func(f namedField) bool { return f.key == key }); i >= 0 {
			*fields[i].dst = v
			continue
		}
		if v == "" {
			continue
		}
		if custom == nil {
			custom = make(map[string]string)
		}
		custom[key] = v
	}
	return custom, nil
}

func encodeGroup(fields []namedField, custom map[string]string) ([]byte, error) {
	out := make(map[string]string, len(fields)+len(custom))
	for k, v := range custom {
		out[k] = v
	}
	for _, f := range fields {
		if *f.dst != "" {
			out[f.key] = *f.dst
		}
	}
	return json.Marshal(out)
}
