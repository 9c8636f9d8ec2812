// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package style

import "maps"

// Rule is a component-scoped set of modifications.
type Rule struct {
	Component     string
	Modifications Modifications
}

// Merge overlays over onto base at leaf level: a field set in over replaces
// the same field in base, fields over leaves empty keep base's value.
// Neither argument is modified.
func Merge(base, over Modifications) Modifications {
	out := Modifications{
		Colors:       mergePalette(base.Colors, over.Colors),
		Spacing:      mergeSpacing(base.Spacing, over.Spacing),
		Layout:       mergeLayout(base.Layout, over.Layout),
		FontSize:     pick(base.FontSize, over.FontSize),
		BorderRadius: pick(base.BorderRadius, over.BorderRadius),
		Theme:        pick(base.Theme, over.Theme),
	}
	return out
}

// MergeAll folds rules in order into one Modifications per component. A
// later rule wins wherever it overlaps an earlier one.
func MergeAll(rules []Rule) map[string]Modifications {
	out := make(map[string]Modifications, len(rules))
	for _, r := range rules {
		out[r.Component] = Merge(out[r.Component], r.Modifications)
	}
	return out
}

func pick[T ~string](base, over T) T {
	if over != "" {
		return over
	}
	return base
}

func mergeCustom(base, over map[string]string) map[string]string {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(over))
	maps.Copy(out, base)
	for k, v := range over {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func mergePalette(base, over *Palette) *Palette {
	if base == nil && over == nil {
		return nil
	}
	var a, b Palette
	if base != nil {
		a = *base
	}
	if over != nil {
		b = *over
	}
	return &Palette{
		Background: pick(a.Background, b.Background),
		Text:       pick(a.Text, b.Text),
		Border:     pick(a.Border, b.Border),
		Custom:     mergeCustom(a.Custom, b.Custom),
	}
}

func mergeSpacing(base, over *Spacing) *Spacing {
	if base == nil && over == nil {
		return nil
	}
	var a, b Spacing
	if base != nil {
		a = *base
	}
	if over != nil {
		b = *over
	}
	return &Spacing{
		Padding: pick(a.Padding, b.Padding),
		Margin:  pick(a.Margin, b.Margin),
		Gap:     pick(a.Gap, b.Gap),
		Custom:  mergeCustom(a.Custom, b.Custom),
	}
}

func mergeLayout(base, over *Layout) *Layout {
	if base == nil && over == nil {
		return nil
	}
	var a, b Layout
	if base != nil {
		a = *base
	}
	if over != nil {
		b = *over
	}
	return &Layout{
		Width:         pick(a.Width, b.Width),
		Height:        pick(a.Height, b.Height),
		Display:       pick(a.Display, b.Display),
		FlexDirection: pick(a.FlexDirection, b.FlexDirection),
		Custom:        mergeCustom(a.Custom, b.Custom),
	}
}
