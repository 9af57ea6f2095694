package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type usageGenerator struct {
	prompt     int
	completion int
}

func (g *usageGenerator) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	out := schema.AssistantMessage("reply", nil)
	out.ResponseMeta = &schema.ResponseMeta{
		Usage: &schema.TokenUsage{
			PromptTokens:     g.prompt,
			CompletionTokens: g.completion,
			TotalTokens:      g.prompt + g.completion,
		},
	}
	return out, nil
}

func TestMeteredGeneratorAccumulatesAndDrains(t *testing.T) {
	ctx := context.Background()
	m := NewMeteredGenerator(&usageGenerator{prompt: 1_000_000, completion: 1_000_000}, "gemini-2.5-flash")

	_, err := m.Generate(ctx, nil)
	require.NoError(t, err)
	_, err = m.Generate(ctx, nil)
	require.NoError(t, err)

	// 2 calls x (0.30 input + 2.50 output) per 1M tokens each
	assert.InDelta(t, 5.60, m.Drain(), 0.0001)
	assert.Zero(t, m.Drain())
}

func TestMeteredGeneratorUnknownModelCostsNothing(t *testing.T) {
	ctx := context.Background()
	m := NewMeteredGenerator(&usageGenerator{prompt: 500, completion: 500}, "some-unknown-model")

	_, err := m.Generate(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, m.Drain())
}
