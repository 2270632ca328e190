package message

import (
	"context"
	"fmt"
	"strings"

	"github.com/sungit/sungit/internal/config"
)

const systemPrompt = "You are a Git expert. Generate concise, conventional commit messages."

// Completer is the text-generation collaborator: prompt in, text out. The
// same contract the chat path uses, with a different prompt template.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt, model string) (string, error)
}

// Request carries everything the prompt may mention.
type Request struct {
	Diff          string
	ChangedFiles  []string
	RecentCommits []string
	Intent        string
}

// Generator builds a bounded prompt from staged changes and parses the
// collaborator's response into a CommitMessage.
type Generator struct {
	llm Completer
	cfg *config.Config
}

func NewGenerator(llm Completer, cfg *config.Config) *Generator {
	return &Generator{llm: llm, cfg: cfg}
}

// Generate produces one CommitMessage for the request. Any collaborator
// failure is reported as ErrGenerationUnavailable so the caller can fall
// back to a manual prompt.
func (g *Generator) Generate(ctx context.Context, req Request) (CommitMessage, error) {
	prompt := g.BuildPrompt(req)

	raw, err := g.llm.Complete(ctx, systemPrompt, prompt, g.cfg.Model)
	if err != nil {
		return CommitMessage{}, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	msg := ParseResponse(raw)
	if msg.IsZero() {
		return CommitMessage{}, fmt.Errorf("%w: empty response", ErrGenerationUnavailable)
	}
	return msg, nil
}

// BuildPrompt renders the configured template with the diff capped at the
// configured line budget. Identical requests produce identical prompts.
func (g *Generator) BuildPrompt(req Request) string {
	maxLines := g.cfg.MaxDiffLines
	if maxLines <= 0 {
		maxLines = config.DefaultMaxDiffLines
	}

	recent := "none"
	if len(req.RecentCommits) > 0 {
		bullets := make([]string, len(req.RecentCommits))
		for i, c := range req.RecentCommits {
			bullets[i] = "- " + c
		}
		recent = strings.Join(bullets, "\n")
	}

	data := TemplateData{
		Role:          g.cfg.Role,
		Files:         strings.Join(req.ChangedFiles, "\n"),
		Diff:          TruncateDiff(req.Diff, maxLines),
		RecentCommits: recent,
		Intent:        req.Intent,
	}

	templateName := g.cfg.PromptTemplate
	if templateName == "" {
		templateName = config.DefaultPromptTemplate
	}
	templateContent, err := GetPromptTemplate(templateName)
	if err != nil {
		templateContent = builtinTemplates["default"]
	}

	prompt, err := RenderTemplate(templateContent, data)
	if err != nil {
		prompt = builtinFallbackPrompt(data)
	}

	if req.Intent != "" {
		prompt += "\n\nUser intent:\n" + req.Intent
	}
	return prompt
}

// builtinFallbackPrompt is used when a custom template fails to render.
func builtinFallbackPrompt(data TemplateData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, summarize the following git changes as a Conventional Commits message.\n\n", data.Role)
	fmt.Fprintf(&sb, "Files:\n%s\n\n", data.Files)
	fmt.Fprintf(&sb, "Diff:\n%s\n\n", data.Diff)
	sb.WriteString(`Use the "type(scope): description" syntax with a summary line under 72 characters.`)
	return sb.String()
}
