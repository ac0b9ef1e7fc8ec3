// Package render turns an explanation document into the HTML fragment kept in
// history and into terminal output.
package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Definition is one decoded term.
type Definition struct {
	Entity     string `json:"entity"`
	Definition string `json:"definition"`
}

// Explanation is the document returned by the explanation service.
type Explanation struct {
	Explanation string       `json:"explanation"`
	Definitions []Definition `json:"definitions,omitempty"`
}

// ErrNoExplanation is returned by Parse for a document without explanation text.
var ErrNoExplanation = errors.New("response has no explanation")

// Parse decodes raw. Invalid JSON and an empty explanation are errors.
func Parse(raw string) (*Explanation, error) {
	var e Explanation
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, err
	}
	if e.Explanation == "" {
		return nil, ErrNoExplanation
	}
	return &e, nil
}

var policy = bluemonday.UGCPolicy()

var fragment = template.Must(template.New("explanation").Parse(
	`<div class="explanation">{{.Explanation}}</div>` +
		`{{if .Definitions}}<div class="definitions"><h3>Definitions:</h3><ul>` +
		`{{range .Definitions}}<li><strong>{{.Entity}}</strong>: {{.Definition}}</li>{{end}}` +
		`</ul></div>{{end}}`))

// HTML renders e. The definitions block is present only when e has
// definitions.
func HTML(e *Explanation) (string, error) {
	var buf bytes.Buffer
	err := fragment.Execute(&buf, struct {
		Explanation template.HTML
		Definitions []Definition
	}{
		Explanation: template.HTML(policy.Sanitize(e.Explanation)),
		Definitions: e.Definitions,
	})
	if err != nil {
		return "", fmt.Errorf("render explanation: %w", err)
	}
	return buf.String(), nil
}

// ErrorText is what the failure outcome shows for msg.
func ErrorText(msg string) string {
	return "Something went wrong. Error: " + msg
}

// ErrorHTML is ErrorText escaped for markup.
func ErrorHTML(msg string) string {
	return Escape(ErrorText(msg))
}

// Escape returns plain text s as markup.
func Escape(s string) string {
	return template.HTMLEscapeString(s)
}

// Markdown renders e for the terminal.
func Markdown(e *Explanation) string {
	var sb strings.Builder
	sb.WriteString(e.Explanation)
	sb.WriteString("\n")
	if len(e.Definitions) > 0 {
		sb.WriteString("\n### Definitions\n\n")
		for _, d := range e.Definitions {
			fmt.Fprintf(&sb, "- **%s**: %s\n", d.Entity, d.Definition)
		}
	}
	return sb.String()
}
