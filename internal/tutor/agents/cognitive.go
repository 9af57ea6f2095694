package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
	"github.com/cloudwego/eino/schema"
)

// Challenge families the coach can pose.
const (
	challengeConstraint    = "constraint"
	challengePerspective   = "perspective"
	challengeAlternative   = "alternative"
	challengeMetacognitive = "metacognitive"
)

// fallbackChallenges are deterministic and get the building type substituted
// in, so a generator outage still yields a contextualized challenge.
var fallbackChallenges = map[string]string{
	challengeConstraint:    "Suppose the budget for your %s was cut in half tomorrow. Which part of your concept survives, and which part was never essential?",
	challengePerspective:   "Walk through your %s as a first-time visitor who has never seen a drawing of it. What do they notice that you have stopped seeing?",
	challengeAlternative:   "Sketch, in words, one genuinely different organization for your %s that still meets the brief. What does the comparison teach you?",
	challengeMetacognitive: "Before going further with your %s, retrace how you arrived at your current position. Which step rested on evidence, and which on habit?",
}

// CognitiveEnhancementAgent challenges the student's thinking pattern. It
// picks a challenge family from the classification, drafts via the generator,
// and falls back to a deterministic challenge on failure.
type CognitiveEnhancementAgent struct {
	generator model.TextGenerator
	budget    int
}

func NewCognitiveEnhancementAgent(generator model.TextGenerator, budget model.BudgetConfig) *CognitiveEnhancementAgent {
	return &CognitiveEnhancementAgent{generator: generator, budget: budget.CognitiveWords}
}

func (a *CognitiveEnhancementAgent) Name() model.AgentName {
	return model.AgentCognitive
}

func (a *CognitiveEnhancementAgent) Process(ctx context.Context, in Context) model.AgentResult {
	family, pattern := chooseChallenge(in.Classification, in.Routing)
	buildingType := BuildingType(in.State)

	text, err := a.draft(ctx, in, family, pattern, buildingType)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logx.Warn().Err(err).Str("family", family).Msg("cognitive draft failed; using fallback challenge")
		}
		text = fmt.Sprintf(fallbackChallenges[family], buildingType)
	}

	result := model.AgentResult{
		Agent:         model.AgentCognitive,
		OK:            true,
		ResponseText:  strings.TrimSpace(text),
		ResponseType:  "cognitive_challenge",
		ChallengeType: family,
		Metadata:      map[string]any{"pattern": pattern},
	}
	if in.Classification != nil && in.Classification.OffloadingDetected() {
		result.CognitiveFlags = []string{string(in.Classification.OffloadingType)}
	}
	return result
}

// chooseChallenge maps the detected thinking pattern to a challenge family.
// Overconfidence gets an alternative or perspective shift; answer-seeking and
// dependency get metacognitive reflection; otherwise vary by constraint.
func chooseChallenge(cls *model.Classification, routing *model.RoutingDecision) (family, pattern string) {
	if cls == nil {
		return challengeConstraint, "unknown"
	}
	switch cls.OffloadingType {
	case model.OffloadingPrematureAnswer:
		return challengeMetacognitive, string(cls.OffloadingType)
	case model.OffloadingRepetitiveDependency:
		return challengeMetacognitive, string(cls.OffloadingType)
	case model.OffloadingSuperficialConfidence:
		return challengeAlternative, string(cls.OffloadingType)
	}
	if cls.ShowsOverconfidence {
		if cls.UnderstandingLevel == model.LevelLow {
			return challengeAlternative, "overconfidence with shallow understanding"
		}
		return challengePerspective, "overconfidence"
	}
	if routing != nil && routing.Route == model.RouteCognitiveChallenge {
		return challengePerspective, "needs a perspective shift"
	}
	return challengeConstraint, "routine exploration"
}

func (a *CognitiveEnhancementAgent) draft(ctx context.Context, in Context, family, pattern, buildingType string) (string, error) {
	if a.generator == nil {
		return "", nil
	}
	sysPrompt, err := renderSystem(ctx, cognitiveSystemPrompt, map[string]any{
		"BuildingType": buildingType,
		"Family":       family,
		"Pattern":      pattern,
		"Budget":       a.budget,
	})
	if err != nil {
		return "", err
	}
	out, err := a.generator.Generate(ctx, []*schema.Message{
		schema.SystemMessage(sysPrompt),
		schema.UserMessage(recentTranscript(in.State, 6) + "\nStudent message: " + in.UserText),
	})
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", nil
	}
	return out.Content, nil
}

var _ Agent = (*CognitiveEnhancementAgent)(nil)
