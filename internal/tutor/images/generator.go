package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/genai"

	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
)

// phasePromptStyles steer the illustration toward the representational mode
// of each phase.
var phasePromptStyles = map[model.Phase]string{
	model.PhaseIdeation:        "loose conceptual sketch, charcoal on trace paper",
	model.PhaseVisualization:   "architectural massing study, white card model photograph",
	model.PhaseMaterialization: "detailed exterior render showing materials and structure",
}

// Config configures the Gemini-backed phase illustrator.
type Config struct {
	APIKey string `envconfig:"GEMINI_API_KEY"`
	Model  string `envconfig:"IMAGE_MODEL" default:"gemini-2.5-flash-image"`
	OutDir string `envconfig:"IMAGE_OUT_DIR" default:"artifacts"`
}

// Generator renders a celebratory illustration when a session crosses into a
// new phase. It is called fire-and-forget: errors are logged by the caller
// and never block a turn.
type Generator struct {
	client *genai.Client
	model  string
	outDir string
}

func NewGenerator(ctx context.Context, cfg Config) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return &Generator{client: client, model: cfg.Model, outDir: cfg.OutDir}, nil
}

func (g *Generator) GeneratePhaseImage(ctx context.Context, phase model.Phase, brief string) error {
	prompt := fmt.Sprintf("An architectural illustration for this design brief: %s. Style: %s.",
		brief, phasePromptStyles[phase])

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return fmt.Errorf("generate phase image: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			if err := os.MkdirAll(g.outDir, 0o755); err != nil {
				return fmt.Errorf("create image dir: %w", err)
			}
			name := fmt.Sprintf("%s-%d.png", phase, time.Now().Unix())
			path := filepath.Join(g.outDir, name)
			if err := os.WriteFile(path, part.InlineData.Data, 0o644); err != nil {
				return fmt.Errorf("write phase image: %w", err)
			}
			logx.Info().Str("phase", string(phase)).Str("path", path).Msg("phase illustration saved")
			return nil
		}
	}
	return fmt.Errorf("no image data in response")
}

// Noop discards image requests; used when no image model is configured.
type Noop struct{}

func (Noop) GeneratePhaseImage(ctx context.Context, phase model.Phase, brief string) error {
	logx.Debug().Str("phase", string(phase)).Msg("image generation disabled; skipping")
	return nil
}

var (
	_ model.ImageGenerator = (*Generator)(nil)
	_ model.ImageGenerator = Noop{}
)
