// internal/notify/templates.go
package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Notification template identifiers.
const (
	TemplateStatusChange     = "status_change"
	TemplateDocumentsMissing = "documents_missing"
	TemplateDecisionApproved = "decision_approved"
	TemplateDecisionRejected = "decision_rejected"
	TemplateDecisionWaitlist = "decision_waitlist"
)

// templateSchema constrains the registry file: a map of template id to
// subject/body pairs. A malformed registry fails startup, not dispatch.
const templateSchema = `{
	"type": "object",
	"minProperties": 1,
	"additionalProperties": {
		"type": "object",
		"required": ["subject", "body"],
		"properties": {
			"subject": {"type": "string", "minLength": 1},
			"body": {"type": "string", "minLength": 1}
		},
		"additionalProperties": false
	}
}`

// Template is one renderable notification.
type Template struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// TemplateRegistry holds the notification templates loaded at startup.
type TemplateRegistry struct {
	templates map[string]Template
}

// LoadTemplates reads and validates the template registry file.
func LoadTemplates(path string) (*TemplateRegistry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template registry: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(templateSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validate template registry: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("invalid template registry: %s", strings.Join(problems, "; "))
	}

	var templates map[string]Template
	if err := json.Unmarshal(raw, &templates); err != nil {
		return nil, fmt.Errorf("parse template registry: %w", err)
	}

	return &TemplateRegistry{templates: templates}, nil
}

// Get returns the template for the given id.
func (r *TemplateRegistry) Get(id string) (Template, bool) {
	tmpl, ok := r.templates[id]
	return tmpl, ok
}

// renderTemplate substitutes {{placeholder}} occurrences from the data
// map and strips any placeholder left unresolved.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
