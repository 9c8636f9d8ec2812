// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package wizard

import (
	"encoding/json"
	"regexp"
	"strings"

	"pulsecrm/internal/style"
)

// Stage records which step of ParseReply produced a Reply.
type Stage int

const (
	// StageStrict means the whole reply was a JSON object.
	StageStrict Stage = iota + 1
	// StageExtracted means a JSON object was found inside surrounding text.
	StageExtracted
	// StageDegraded means no usable JSON was found.
	StageDegraded
)

func (s Stage) String() string {
	switch s {
	case StageStrict:
		return "strict"
	case StageExtracted:
		return "extracted"
	case StageDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// DegradedDescription is the description given to a reply with no usable
// JSON.
const DegradedDescription = "Custom styling applied"

// Reply is a provider reply read into a candidate rule.
type Reply struct {
	Component     string
	Modifications style.Modifications
	Description   string
	Preview       string
	Stage         Stage
}

// Degraded reports whether the reply carried no usable JSON.
func (r Reply) Degraded() bool { return r.Stage == StageDegraded }

// replyDoc is the object the provider is asked to return.
type replyDoc struct {
	Component     string              `json:"component"`
	ComponentName string              `json:"componentName,omitempty"`
	Modifications style.Modifications `json:"modifications"`
	Description   string              `json:"description"`
	Preview       string              `json:"preview"`
}

var objectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ParseReply reads a provider reply. It first decodes the whole reply as
// JSON, then the outermost braces found in it, and otherwise returns a
// degraded reply that carries the raw text as its preview. It never fails.
func ParseReply(text string) Reply {
	trimmed := strings.TrimSpace(text)

	if doc, ok := decodeReply(trimmed); ok {
		return doc.reply(StageStrict)
	}
	if m := objectPattern.FindString(trimmed); m != "" {
		if doc, ok := decodeReply(m); ok {
			return doc.reply(StageExtracted)
		}
	}

	return Reply{
		Component:     style.GeneralComponent,
		Modifications: style.Modifications{Theme: style.ThemeCustom},
		Description:   DegradedDescription,
		Preview:       text,
		Stage:         StageDegraded,
	}
}

func decodeReply(s string) (replyDoc, bool) {
	var doc replyDoc
	if !strings.HasPrefix(s, "{") {
		return doc, false
	}
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return doc, false
	}
	return doc, true
}

func (d replyDoc) reply(stage Stage) Reply {
	component := strings.TrimSpace(d.Component)
	if component == "" {
		component = strings.TrimSpace(d.ComponentName)
	}
	if component == "" {
		component = style.GeneralComponent
	}
	return Reply{
		Component:     component,
		Modifications: d.Modifications,
		Description:   strings.TrimSpace(d.Description),
		Preview:       strings.TrimSpace(d.Preview),
		Stage:         stage,
	}
}
