package agents

import (
	"context"
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
	"github.com/cloudwego/eino/schema"
)

// stepIntents describe what each Socratic stage is trying to surface.
var stepIntents = map[model.SocraticStep]string{
	model.StepInitialContextReasoning:   "ground the student in site, context and intent",
	model.StepKnowledgeSynthesisTrigger: "connect what they know to what they are designing",
	model.StepSocraticQuestioning:       "probe the structure of their current reasoning",
	model.StepMetacognitivePrompt:       "turn their attention to how they are thinking",
	model.StepContextualExploration:     "vary the context and watch the concept respond",
	model.StepDeeperInquiry:             "press on the unresolved tension",
	model.StepSynthesisCheck:            "ask for a coherent synthesis",
	model.StepReadinessAssessment:       "have them judge their own readiness",
}

// fallbackQuestions keep the tutor asking when the generator is unavailable.
var fallbackQuestions = map[model.Phase]string{
	model.PhaseIdeation:        "What drew you to this direction, and what might you be overlooking about the site or the people who will use it?",
	model.PhaseVisualization:   "If you drew a section through the most important space, what would it reveal that your plan cannot?",
	model.PhaseMaterialization: "Which material decision carries the most risk for your concept, and how would you test it?",
}

// SocraticTutorAgent produces one to two open questions aimed at the current
// Socratic step. It degrades to a deterministic question rather than failing,
// so the dialogue never stalls on a generator outage.
type SocraticTutorAgent struct {
	generator model.TextGenerator
	budget    int
}

func NewSocraticTutorAgent(generator model.TextGenerator, budget model.BudgetConfig) *SocraticTutorAgent {
	return &SocraticTutorAgent{generator: generator, budget: budget.SocraticWords}
}

func (a *SocraticTutorAgent) Name() model.AgentName {
	return model.AgentSocratic
}

func (a *SocraticTutorAgent) Process(ctx context.Context, in Context) model.AgentResult {
	phase := model.PhaseIdeation
	step := model.StepInitialContextReasoning
	if in.State != nil {
		phase = in.State.CurrentPhase
		if pp, ok := in.State.PhaseProgress[phase]; ok && pp != nil {
			step = pp.CurrentStep
		}
	}

	domainText := ""
	if domain, ok := in.UpstreamResult(model.AgentDomain); ok {
		domainText = domain.ResponseText
	}

	text, err := a.draft(ctx, in, phase, step, domainText)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logx.Warn().Err(err).Str("step", string(step)).Msg("socratic draft failed; using fallback question")
		}
		return model.AgentResult{
			Agent:        model.AgentSocratic,
			OK:           true,
			ResponseText: fallbackQuestions[phase],
			ResponseType: "socratic_question",
			Metadata:     map[string]any{"deterministic_fallback": true, "step": string(step)},
		}
	}

	return model.AgentResult{
		Agent:        model.AgentSocratic,
		OK:           true,
		ResponseText: strings.TrimSpace(text),
		ResponseType: "socratic_question",
		Metadata:     map[string]any{"step": string(step), "word_count": wordCount(text)},
	}
}

func (a *SocraticTutorAgent) draft(ctx context.Context, in Context, phase model.Phase, step model.SocraticStep, domainText string) (string, error) {
	if a.generator == nil {
		return "", nil
	}
	sysPrompt, err := renderSystem(ctx, socraticSystemPrompt, map[string]any{
		"BuildingType": BuildingType(in.State),
		"Phase":        string(phase),
		"Step":         string(step),
		"StepIntent":   stepIntents[step],
		"Budget":       a.budget,
		"DomainText":   domainText,
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

var _ Agent = (*SocraticTutorAgent)(nil)
