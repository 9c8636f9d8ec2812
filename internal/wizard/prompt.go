package wizard

import (
	"encoding/json"
	"fmt"
	"strings"

	"pulsecrm/internal/ai"
	"pulsecrm/internal/models"
	"pulsecrm/internal/style"
)

// Generation parameters sent with every wizard request.
const (
	replyMaxTokens   = 400
	replyTemperature = 0.8
)

// systemPrompt is the fixed instruction given to the provider. It names the
// reply schema and the component and theme vocabulary.
var systemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	themes := make([]string, len(style.Themes))
	for i, t := range style.Themes {
		themes[i] = string(t)
	}

	var b strings.Builder
	b.WriteString("You are a UI customization AI for a CRM. Convert natural language requests into design modifications for one UI component.\n\n")
	b.WriteString("Return only a JSON object with these fields:\n")
	b.WriteString(`- "component": the component to style` + "\n")
	b.WriteString(`- "description": a short summary of the change` + "\n")
	b.WriteString(`- "preview": one sentence describing what the user will see` + "\n")
	b.WriteString(`- "modifications": an object with any of "colors" {background, text, border}, "spacing" {padding, margin, gap}, "layout" {width, height, display, flexDirection}, "fontSize", "borderRadius" and "theme"` + "\n\n")
	fmt.Fprintf(&b, "Available components: %s.\n", strings.Join(style.Components, ", "))
	fmt.Fprintf(&b, "Available themes: %s.\n", strings.Join(themes, ", "))
	b.WriteString("Use CSS values such as \"#1e293b\", \"12px\" or \"1.5rem\". Never include CSS selectors, braces or semicolons in values.")
	return b.String()
}

// userPrompt wraps the user's request.
func userPrompt(request string) string {
	return fmt.Sprintf("Create a UI customization for: %q\n\nReturn a JSON object with the customization details.", request)
}

// buildRequest assembles the provider request: the system instruction, the
// recent turns of the session and the new request.
func buildRequest(history []models.ChatTurn, request string) ai.Request {
	temp := replyTemperature
	msgs := make([]ai.Message, 0, len(history)+2)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: systemPrompt})

	for _, t := range history {
		switch t.Role {
		case models.RoleUser:
			msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: t.Content})
		case models.RoleAssistant:
			msgs = append(msgs, ai.Message{Role: ai.RoleAssistant, Content: assistantContext(t)})
		}
	}

	msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: userPrompt(request)})
	return ai.Request{
		Messages:    msgs,
		Format:      ai.FormatJSON,
		MaxTokens:   replyMaxTokens,
		Temperature: &temp,
	}
}

// assistantContext replays an assistant turn as the JSON it was built from
// so follow-up requests can refine it.
func assistantContext(t models.ChatTurn) string {
	if t.Payload == nil {
		return t.Content
	}
	b, err := json.Marshal(replyDoc{
		Component:     t.Payload.Component,
		Modifications: t.Payload.Modifications,
		Description:   t.Payload.Description,
		Preview:       t.Payload.Preview,
	})
	if err != nil {
		return t.Content
	}
	return string(b)
}
