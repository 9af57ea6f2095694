package synth

import (
	"context"
	"strconv"
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
	"github.com/cloudwego/eino/schema"
)

// fallbackReply is emitted when no agent produced usable text.
const fallbackReply = "I couldn't work through that one properly. Tell me a bit more about what you're trying to do with your design, and we'll take it from there. What part matters most to you right now?"

// agentsUsedCap bounds the agents_used metadata list.
const agentsUsedCap = 3

// Synthesizer orders agent results canonically, shapes the reply per the
// response-type contract, enforces word budgets and assembles turn metadata.
type Synthesizer struct {
	generator model.TextGenerator
	budgets   model.BudgetConfig
}

func NewSynthesizer(generator model.TextGenerator, budgets model.BudgetConfig) *Synthesizer {
	return &Synthesizer{generator: generator, budgets: budgets}
}

// Input carries everything one synthesis pass consumes.
type Input struct {
	Routing        *model.RoutingDecision
	Classification *model.Classification
	Results        []model.AgentResult
	State          *model.ConversationState
	UserText       string
}

// Synthesize produces the turn's reply text and metadata. The phase engine's
// augmentation (grade, completion, transitions) is merged in afterwards by
// the orchestrator.
func (s *Synthesizer) Synthesize(ctx context.Context, in Input) (string, *model.TurnMetadata) {
	route := model.RouteBalancedGuidance
	if in.Routing != nil {
		route = in.Routing.Route
	}
	respType := NormalizeResponseType(route)

	byName := map[model.AgentName]model.AgentResult{}
	for _, r := range in.Results {
		byName[r.Agent] = r
	}

	userTurns := 0
	if in.State != nil {
		userTurns = len(in.State.UserMessages())
	}

	sequence := AgentSequence(in.Routing, userTurns)
	var agentsUsed []model.AgentName
	var sources []model.Source
	rawType := ""
	anyText := false
	for _, name := range sequence {
		r, ok := byName[name]
		if !ok || !r.OK {
			continue
		}
		if len(agentsUsed) < agentsUsedCap {
			agentsUsed = append(agentsUsed, name)
		}
		if strings.TrimSpace(r.ResponseText) != "" {
			anyText = true
			if rawType == "" {
				rawType = r.ResponseType
			}
		}
		sources = append(sources, r.Sources...)
	}

	var text string
	if !anyText {
		respType = model.ResponseFallback
		text = fallbackReply
	} else {
		shaped := shapeInput{
			routing:   in.Routing,
			results:   byName,
			userTurns: userTurns,
			sources:   sources,
		}
		text = shape(respType, shaped)
		text = s.enforceBudget(ctx, respType, text)
		text = assertShape(respType, text, userTurns, in.Routing)
	}
	text = strings.TrimSpace(text)

	var phaseAnalysis *model.PhaseAnalysis
	if r, ok := byName[model.AgentAnalysis]; ok && r.PhaseAnalysis != nil {
		phaseAnalysis = r.PhaseAnalysis
	}

	meta := &model.TurnMetadata{
		ResponseType:    respType,
		RawResponseType: rawType,
		RoutingPath:     route,
		AgentsUsed:      agentsUsed,
		PhaseAnalysis:   phaseAnalysis,
		Classification:  in.Classification,
		Sources:         sources,
		Quality:         QualityOf(text),
	}
	if !anyText {
		meta.FallbackReason = failureReasons(in.Results)
	}
	return text, meta
}

// budgetFor returns the word ceiling governing a shaped reply of this type.
func (s *Synthesizer) budgetFor(respType model.ResponseType) int {
	switch respType {
	case model.ResponseKnowledgeSupport:
		return s.budgets.DomainWords
	case model.ResponseCognitiveIntervention:
		return s.budgets.CognitiveWords
	case model.ResponseSynthesis:
		return s.budgets.DomainWords
	default:
		return s.budgets.SocraticWords
	}
}

// enforceBudget issues at most one compression call when the shaped text is
// over its word budget. Compression failure passes the original through.
func (s *Synthesizer) enforceBudget(ctx context.Context, respType model.ResponseType, text string) string {
	budget := s.budgetFor(respType)
	if budget <= 0 || wordCount(text) <= budget || s.generator == nil {
		return text
	}
	out, err := s.generator.Generate(ctx, []*schema.Message{
		schema.SystemMessage("You compress tutoring replies. Rewrite the given reply to at most " +
			strconv.Itoa(budget) + " words. Keep the structure (headers, bullets, links) intact. " +
			"End on a complete sentence, no ellipses, at most one thoughtful question."),
		schema.UserMessage(text),
	})
	if err != nil || out == nil || strings.TrimSpace(out.Content) == "" {
		if err != nil {
			logx.Warn().Err(err).Int("budget", budget).Msg("budget compression failed; passing through")
		}
		return text
	}
	return strings.TrimSpace(out.Content)
}

// QualityOf computes the surface checks recorded on turn metadata. Callers
// that alter the reply after synthesis recompute it on the final text.
func QualityOf(text string) model.QualityMeta {
	return model.QualityMeta{
		EndsWithQuestion:   strings.HasSuffix(text, "?"),
		HasBullets:         hasBullets(text),
		HasSynthesisHeader: strings.Contains(text, synthesisHeader),
		CharLength:         len(text),
	}
}

// failureReasons joins the not-OK agent reasons for the fallback metadata.
func failureReasons(results []model.AgentResult) string {
	var parts []string
	for _, r := range results {
		if !r.OK && r.Reason != "" {
			parts = append(parts, string(r.Agent)+": "+r.Reason)
		}
	}
	if len(parts) == 0 {
		return "no agent output"
	}
	return strings.Join(parts, "; ")
}
