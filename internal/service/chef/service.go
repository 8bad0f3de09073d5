package chef

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
)

// EmptySelectionMessage is returned instead of a recipe when no ingredient was chosen.
const EmptySelectionMessage = "Please select at least one ingredient."

// lineBreak replaces newlines in generated text for display in the web page.
const lineBreak = "<br>"

// TextGenerator turns a prompt into generated text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Advisor suggests recipes from pantry ingredients.
type Advisor struct {
	generator TextGenerator
	logger    *zap.Logger
}

// NewAdvisor wires a recipe advisor.
func NewAdvisor(generator TextGenerator, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{generator: generator, logger: logger}
}

// Suggest asks the generator for a recipe using only the given ingredients.
func (a *Advisor) Suggest(ctx context.Context, ingredients []string) (string, error) {
	selected := dedupe(ingredients)
	if len(selected) == 0 {
		return EmptySelectionMessage, nil
	}

	text, err := a.generator.Generate(ctx, BuildPrompt(selected))
	if err != nil {
		a.logger.Error("recipe generation failed", zap.Strings("ingredients", selected), zap.Error(err))
		return "", models.NewUpstreamError("Error generating recipe", err)
	}

	a.logger.Debug("recipe generated", zap.Strings("ingredients", selected), zap.Int("length", len(text)))
	return strings.ReplaceAll(text, "\n", lineBreak), nil
}

// BuildPrompt renders the recipe request for the given ingredients.
func BuildPrompt(ingredients []string) string {
	return fmt.Sprintf(
		"Give me a simple recipe name and instructions using only these ingredients: %s. "+
			"Format the response as: Recipe Name: [Name] \n\n Instructions: [Instructions]",
		strings.Join(ingredients, ", "),
	)
}

// dedupe trims names, drops blanks and keeps the first spelling of each
// case-insensitive duplicate.
func dedupe(ingredients []string) []string {
	seen := make(map[string]struct{}, len(ingredients))
	out := make([]string, 0, len(ingredients))
	for _, raw := range ingredients {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
