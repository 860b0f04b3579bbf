// Package personalize renders the outreach subject and body from plain
// text/template templates and appends the compliance footer. No generated
// text is involved.
package personalize

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	_ "embed"
)

//go:embed template.txt
var defaultBodyTemplate string

const defaultSubjectTemplate = "Interest in {{.JobTitle}} at {{.CompanyName}}"

// Context carries everything the templates can reference.
type Context struct {
	RecruiterName    string
	CompanyName      string
	JobTitle         string
	Location         string
	CandidateName    string
	CandidateEmail   string
	CandidateProfile string
}

// Renderer renders one subject/body pair per record.
type Renderer struct {
	subject *template.Template
	body    *template.Template
	footer  string
}

// New parses the subject and body templates, falling back to the built-in
// ones when empty. footerText, when set, is appended to every body.
func New(subjectTmpl, bodyTmpl, footerText string) (*Renderer, error) {
	if strings.TrimSpace(subjectTmpl) == "" {
		subjectTmpl = defaultSubjectTemplate
	}
	if strings.TrimSpace(bodyTmpl) == "" {
		bodyTmpl = defaultBodyTemplate
	}

	subject, err := template.New("subject").Option("missingkey=error").Parse(subjectTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing subject template: %w", err)
	}

	body, err := template.New("body").Option("missingkey=error").Parse(bodyTmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing body template: %w", err)
	}

	return &Renderer{
		subject: subject,
		body:    body,
		footer:  strings.TrimSpace(footerText),
	}, nil
}

// NewFromFile reads the body template from a file. An empty path uses the
// built-in template.
func NewFromFile(subjectTmpl, bodyFile, footerText string) (*Renderer, error) {
	bodyTmpl := ""
	if bodyFile != "" {
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return nil, fmt.Errorf("reading body template %q: %w", bodyFile, err)
		}
		bodyTmpl = string(data)
	}

	return New(subjectTmpl, bodyTmpl, footerText)
}

// Render produces the subject and body for one context.
func (r *Renderer) Render(ctx *Context) (string, string, error) {
	var subject strings.Builder
	if err := r.subject.Execute(&subject, ctx); err != nil {
		return "", "", fmt.Errorf("rendering subject: %w", err)
	}

	var body strings.Builder
	if err := r.body.Execute(&body, ctx); err != nil {
		return "", "", fmt.Errorf("rendering body: %w", err)
	}

	rendered := body.String()
	if r.footer != "" {
		rendered = fmt.Sprintf("%s\n\n---\n%s", strings.TrimRight(rendered, "\n"), r.footer)
	}

	return strings.TrimSpace(subject.String()), rendered, nil
}
