package message

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptTemplate is the shape of a user-supplied template file.
type PromptTemplate struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Template    string `yaml:"template"`
}

// TemplateData carries the slots a prompt template may reference.
type TemplateData struct {
	Role          string
	Files         string
	Diff          string
	RecentCommits string
	Intent        string
}

var builtinTemplates = map[string]string{
	"default": `You are a professional {{.Role}}. Generate a commit message that follows the Conventional Commits specification for the following Git changes.

Recent commits (for style reference):
{{.RecentCommits}}

Changed Files:
{{.Files}}

Changed Content:
{{.Diff}}

Respond with a "type(scope): description" summary line of at most 72 characters, picking the most appropriate type from: feat, fix, docs, style, refactor, perf, test, chore.
Optionally follow the summary with a blank line and short bullet points describing the changes.
Return only the commit message, with no explanation and no code fences.`,

	"detailed": `As a seasoned {{.Role}}, carefully analyze the following Git changes and generate a commit message that follows the Conventional Commits specification.

Recent commits (for style reference):
{{.RecentCommits}}

Changed Files:
{{.Files}}

Changed Content:
{{.Diff}}

Provide a commit message in the format "type(scope): description", where:
1. The type must be the most appropriate of: feat (new feature), fix (bug fix), docs (documentation), style (formatting), refactor (neither fix nor feature), perf (performance), test (tests), chore (build or tooling).
2. The scope (optional) names the component or module that changed.
3. The description is an imperative sentence of at most 72 characters.

After the summary, add a blank line and one bullet point per significant change.
Return only the commit message itself.`,
}

// GetPromptTemplate resolves a template by builtin name or file path. A file
// may be a YAML document with a template field or raw template text.
func GetPromptTemplate(name string) (string, error) {
	if tmpl, ok := builtinTemplates[name]; ok {
		return tmpl, nil
	}

	if _, err := os.Stat(name); err == nil {
		content, err := os.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("failed to read template file %s: %w", name, err)
		}
		var tpl PromptTemplate
		if err := yaml.Unmarshal(content, &tpl); err == nil && tpl.Template != "" {
			return tpl.Template, nil
		}
		return string(content), nil
	}

	return "", fmt.Errorf("unknown prompt template: %s", name)
}

// RenderTemplate executes templateContent against data.
func RenderTemplate(templateContent string, data TemplateData) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template: %w", err)
	}
	return buf.String(), nil
}

// BuiltinTemplateNames lists the bundled template names.
func BuiltinTemplateNames() []string {
	return []string{"default", "detailed"}
}
