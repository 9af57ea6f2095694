package nodes

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey    string
	BaseURL   string
	Generator *model.GeneratorModelConfig
	Question  *model.QuestionModelConfig
}

// ChatModels holds the two chat models the engine uses: the generator for
// agent drafts and synthesis compression, and a cheaper question model for
// Socratic question variants.
type ChatModels struct {
	Generator *MeteredGenerator
	Question  *MeteredGenerator
}

// NewChatModels creates both chat models with the given configuration
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	generator, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Generator.Model,
		Temperature: &config.Generator.Temperature,
		MaxTokens:   &config.Generator.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating generator model")
		return nil, fmt.Errorf("error creating generator model: %w", err)
	}

	question, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.Question.Model,
		Temperature: &config.Question.Temperature,
		MaxTokens:   &config.Question.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating question model")
		return nil, fmt.Errorf("error creating question model: %w", err)
	}

	return &ChatModels{
		Generator: NewMeteredGenerator(generator, config.Generator.Model),
		Question:  NewMeteredGenerator(question, config.Question.Model),
	}, nil
}

// MeteredGenerator wraps a TextGenerator with per-call usage-cost accounting.
// Agents call the generator directly rather than through chat-model nodes, so
// the meter is where their token usage gets captured.
type MeteredGenerator struct {
	inner     model.TextGenerator
	modelName string

	mu       sync.Mutex
	totalUSD float64
}

func NewMeteredGenerator(inner model.TextGenerator, modelName string) *MeteredGenerator {
	return &MeteredGenerator{inner: inner, modelName: modelName}
}

func (m *MeteredGenerator) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	out, err := m.inner.Generate(ctx, input, opts...)
	if err != nil {
		return out, err
	}
	if model.CostEnabled() && out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		pricing := model.ResolvePricing(m.modelName)
		inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
		m.mu.Lock()
		m.totalUSD += totalC
		m.mu.Unlock()

		logx.Debug().
			Str("model", m.modelName).
			Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
			Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", totalC).
			Msg("LLM usage")
	}
	return out, nil
}

// Drain returns the cost accumulated since the last call and resets the meter.
func (m *MeteredGenerator) Drain() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := m.totalUSD
	m.totalUSD = 0
	return v
}

var _ model.TextGenerator = (*MeteredGenerator)(nil)
