// Package describe drafts pull request descriptions from a change set.
package describe

import (
	"context"
	"log/slog"
	"strings"

	"thoreinstein.com/autopr/pkg/ai"
	prerrors "thoreinstein.com/autopr/pkg/errors"
	"thoreinstein.com/autopr/pkg/git"
	"thoreinstein.com/autopr/pkg/issue"
)

// BuildPrompt renders the generation prompt. The diff is embedded literally
// and subjects are joined with newlines in the order given.
func BuildPrompt(cs git.ChangeSet, linked *issue.Issue) string {
	var b strings.Builder

	b.WriteString("Generate a pull request description based on the following information:\n")
	b.WriteString("Diff: ")
	b.WriteString(cs.Diff)
	b.WriteString("\nCommit messages: ")
	b.WriteString(strings.Join(cs.CommitSubjects, "\n"))
	b.WriteString("\nLinked issue: ")
	b.WriteString(issue.Format(linked))
	b.WriteString("\nPlease summarize the changes, their purpose, and any potential impact.")

	return b.String()
}

// Generator turns a change set into a description with one provider call.
type Generator struct {
	provider ai.Provider
	logger   *slog.Logger
}

// NewGenerator creates a Generator backed by provider.
func NewGenerator(provider ai.Provider, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{provider: provider, logger: logger}
}

// Generate returns the provider's completion unmodified. A blank completion is
// a GenerationError.
func (g *Generator) Generate(ctx context.Context, cs git.ChangeSet, linked *issue.Issue) (string, error) {
	prompt := BuildPrompt(cs, linked)

	g.logger.Debug("generating description",
		"provider", g.provider.Name(),
		"diff_bytes", len(cs.Diff),
		"commits", len(cs.CommitSubjects))

	text, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", prerrors.NewGenerationError(g.provider.Name(), "Complete", "completion contained no usable content")
	}

	return text, nil
}
