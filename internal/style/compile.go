// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package style

import (
	"maps"
	"slices"
	"strings"
)

// GeneralComponent is the catch-all component used when a rule cannot be
// attributed to a specific part of the UI.
const GeneralComponent = "general"

// Components is the vocabulary of UI parts the client tags with
// data-component. Names outside it are still compiled; they simply match
// nothing until the client starts using them.
var Components = []string{
	"deal-card",
	"customer-card",
	"ticket-card",
	"activity-card",
	"sidebar",
	"dashboard",
	"form-input",
}

// IsKnownComponent reports whether name is in Components or is the general
// component.
func IsKnownComponent(name string) bool {
	return name == GeneralComponent || slices.Contains(Components, name)
}

// PreviewAnimation is the keyframes name attached to preview blocks.
const PreviewAnimation = "ai-preview-pulse"

const previewKeyframes = "@keyframes " + PreviewAnimation +
	" { 0%, 100% { opacity: 1; } 50% { opacity: 0.8; } }\n"

// Declaration is a single CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// String renders the declaration with the !important flag, without the
// trailing semicolon.
func (d Declaration) String() string {
	return d.Property + ": " + d.Value + " !important"
}

var themeBundles = map[Theme][]Declaration{
	ThemeNeon: {
		{"box-shadow", "0 0 20px currentColor"},
		{"border", "2px solid currentColor"},
	},
	ThemeMinimal: {
		{"box-shadow", "none"},
		{"border", "1px solid #e5e5e5"},
	},
	ThemeBold: {
		{"font-weight", "700"},
		{"border-width", "3px"},
	},
	ThemeDark: {
		{"color-scheme", "dark"},
		{"box-shadow", "0 1px 3px rgba(0, 0, 0, 0.6)"},
	},
	ThemeLight: {
		{"color-scheme", "light"},
		{"box-shadow", "0 1px 3px rgba(0, 0, 0, 0.08)"},
	},
}

// ThemeDeclarations returns the fixed bundle for t. Custom and unknown
// themes expand to nothing.
func ThemeDeclarations(t Theme) []Declaration {
	return slices.Clone(themeBundles[t])
}

// Declarations maps m to CSS declarations in a fixed order: colours,
// spacing, layout, font size, border radius, then the theme bundle.
// Group keys outside the fixed set become custom properties in key order.
// Values that sanitize to nothing are dropped.
func Declarations(m Modifications) []Declaration {
	var out []Declaration
	add := func(prop, value string) {
		if v := sanitizeValue(value); v != "" {
			out = append(out, Declaration{prop, v})
		}
	}
	addCustom := func(custom map[string]string) {
		for _, key := range slices.Sorted(maps.Keys(custom)) {
			if name := sanitizeKey(key); name != "" {
				add("--"+name, custom[key])
			}
		}
	}

	if c := m.Colors; c != nil {
		add("background-color", c.Background)
		add("color", c.Text)
		add("border-color", c.Border)
		addCustom(c.Custom)
	}
	if s := m.Spacing; s != nil {
		add("padding", s.Padding)
		add("margin", s.Margin)
		add("gap", s.Gap)
		addCustom(s.Custom)
	}
	if l := m.Layout; l != nil {
		add("width", l.Width)
		add("height", l.Height)
		add("display", l.Display)
		add("flex-direction", l.FlexDirection)
		addCustom(l.Custom)
	}
	add("font-size", string(m.FontSize))
	add("border-radius", string(m.BorderRadius))
	out = append(out, ThemeDeclarations(m.Theme)...)
	return out
}

// Compile renders one block per component, in component-name order. A
// block is emitted even when it carries no declarations, so every
// component's selector is present in the output.
func Compile(rules map[string]Modifications) string {
	var b strings.Builder
	for _, name := range slices.Sorted(maps.Keys(rules)) {
		writeBlock(&b, name, Declarations(rules[name]))
	}
	return b.String()
}

// CompileRule renders a single component block.
func CompileRule(component string, m Modifications) string {
	var b strings.Builder
	writeBlock(&b, component, Declarations(m))
	return b.String()
}

// CompilePreview renders a single component block with the preview pulse
// animation attached, followed by its keyframes.
func CompilePreview(component string, m Modifications) string {
	decls := append(Declarations(m), Declaration{"animation", PreviewAnimation + " 2s infinite"})

	var b strings.Builder
	writeBlock(&b, component, decls)
	b.WriteString(previewKeyframes)
	return b.String()
}

func writeBlock(b *strings.Builder, component string, decls []Declaration) {
	b.WriteString(Selector(component))
	b.WriteString(" {")
	for _, d := range decls {
		b.WriteByte(' ')
		b.WriteString(d.String())
		b.WriteByte(';')
	}
	b.WriteString(" }\n")
}
