package agents

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/domain_prompt.txt
var domainSystemPrompt string

//go:embed template/socratic_prompt.txt
var socraticSystemPrompt string

//go:embed template/cognitive_prompt.txt
var cognitiveSystemPrompt string

// renderSystem renders an embedded system prompt via the Eino prompt
// component (Go template), which both formats it and emits prompt callbacks.
func renderSystem(ctx context.Context, raw string, vars map[string]any) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(raw),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("agent prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("agent prompt render: empty result")
	}
	return msgs[0].Content, nil
}
