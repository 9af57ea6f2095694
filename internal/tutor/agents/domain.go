package agents

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/atelier-mentor/server/internal/tutor/knowledge"
	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
	"github.com/cloudwego/eino/schema"
)

// phaseFocus summarizes what domain knowledge matters most per phase.
var phaseFocus = map[model.Phase]string{
	model.PhaseIdeation:        "site analysis, program, concept development, precedents",
	model.PhaseVisualization:   "spatial organization, representation, circulation, light",
	model.PhaseMaterialization: "materials, structure, envelope, codes and constructability",
}

// DomainExpertAgent explains architectural knowledge relevant to the query
// and supplies ranked sources. Its LLM draft and the web search run
// concurrently; search failure degrades to a draft without sources.
type DomainExpertAgent struct {
	generator model.TextGenerator
	search    knowledge.Source
	budget    int
}

func NewDomainExpertAgent(generator model.TextGenerator, search knowledge.Source, budget model.BudgetConfig) *DomainExpertAgent {
	return &DomainExpertAgent{generator: generator, search: search, budget: budget.DomainWords}
}

func (a *DomainExpertAgent) Name() model.AgentName {
	return model.AgentDomain
}

func (a *DomainExpertAgent) Process(ctx context.Context, in Context) model.AgentResult {
	if a.generator == nil {
		return model.Failed(model.AgentDomain, "no generator configured")
	}

	buildingType := BuildingType(in.State)
	phase := model.PhaseIdeation
	if in.State != nil {
		phase = in.State.CurrentPhase
	}

	var gaps []string
	for _, r := range in.Upstream {
		if r.Agent == model.AgentAnalysis {
			gaps = r.CognitiveFlags
		}
	}

	sysPrompt, err := renderSystem(ctx, domainSystemPrompt, map[string]any{
		"BuildingType": buildingType,
		"Phase":        string(phase),
		"PhaseFocus":   phaseFocus[phase],
		"Budget":       a.budget,
		"Gaps":         strings.Join(gaps, "; "),
	})
	if err != nil {
		return model.Failed(model.AgentDomain, "prompt render: "+err.Error())
	}

	var draft *schema.Message
	var sources []model.Source

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, genErr := a.generator.Generate(gctx, []*schema.Message{
			schema.SystemMessage(sysPrompt),
			schema.UserMessage(recentTranscript(in.State, 6) + "\nStudent query: " + in.UserText),
		})
		if genErr != nil {
			return genErr
		}
		draft = out
		return nil
	})
	if a.search != nil && wantsSources(in.Classification) {
		g.Go(func() error {
			found, searchErr := a.search.Search(gctx, in.UserText+" "+buildingType+" architecture", 3)
			if searchErr != nil {
				// tolerated: the draft stands without sources
				logx.Warn().Err(searchErr).Msg("domain expert search degraded")
				return nil
			}
			sources = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.Failed(model.AgentDomain, "generate: "+err.Error())
	}
	if draft == nil || strings.TrimSpace(draft.Content) == "" {
		return model.Failed(model.AgentDomain, "empty generator output")
	}

	return model.AgentResult{
		Agent:        model.AgentDomain,
		OK:           true,
		ResponseText: strings.TrimSpace(draft.Content),
		ResponseType: "knowledge",
		Sources:      sources,
		Metadata: map[string]any{
			"building_type": buildingType,
			"word_count":    wordCount(draft.Content),
		},
	}
}

// wantsSources limits web search to turns where precedents or standards help.
func wantsSources(cls *model.Classification) bool {
	if cls == nil {
		return false
	}
	return cls.IsExampleRequest || cls.IsTechnicalQuestion ||
		cls.InteractionType == model.InteractionKnowledgeSeeking
}

var _ Agent = (*DomainExpertAgent)(nil)
