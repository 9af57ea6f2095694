package agents

import (
	"context"
	"sort"
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

// phaseIndicators map text signals to the phase they suggest.
var phaseIndicators = map[model.Phase][]string{
	model.PhaseIdeation:        {"concept", "idea", "brainstorm", "program", "site", "vision", "intent"},
	model.PhaseVisualization:   {"plan", "section", "sketch", "drawing", "model", "massing", "diagram", "render"},
	model.PhaseMaterialization: {"material", "structure", "detail", "construction", "concrete", "timber", "steel", "code"},
}

// gapFlags name phase-appropriate gaps keyed by missing rubric concepts.
var gapFlags = map[model.Phase]map[string]string{
	model.PhaseIdeation: {
		"site_context":       "site and context not yet examined",
		"program_definition": "program still undefined",
		"design_concept":     "no articulated design concept",
	},
	model.PhaseVisualization: {
		"spatial_organization": "spatial organization untested",
		"circulation_scheme":   "circulation not yet worked through",
		"sectional_thinking":   "no sectional exploration",
	},
	model.PhaseMaterialization: {
		"material_palette":     "material palette undecided",
		"structural_system":    "structural system unexamined",
		"envelope_performance": "envelope performance unaddressed",
	},
}

// AnalysisAgent derives phase analysis and cognitive gap flags for downstream
// agents. It is deterministic and never calls the generator; its output is
// consumed as context, never returned verbatim.
type AnalysisAgent struct{}

func NewAnalysisAgent() *AnalysisAgent {
	return &AnalysisAgent{}
}

func (a *AnalysisAgent) Name() model.AgentName {
	return model.AgentAnalysis
}

func (a *AnalysisAgent) Process(ctx context.Context, in Context) model.AgentResult {
	text := strings.ToLower(in.UserText)

	detected := model.PhaseIdeation
	bestHits := 0
	var indicators []string
	if in.State != nil {
		detected = in.State.CurrentPhase
	}
	// phase order makes tie-breaks deterministic: the earlier phase wins
	for _, phase := range model.PhaseOrder {
		hits := 0
		var found []string
		for _, kw := range phaseIndicators[phase] {
			if strings.Contains(text, kw) {
				hits++
				found = append(found, kw)
			}
		}
		if hits > bestHits {
			bestHits = hits
			detected = phase
			indicators = found
		}
	}

	confidence := 0.4
	if bestHits >= 2 {
		confidence = 0.8
	} else if bestHits == 1 {
		confidence = 0.6
	}

	var flags []string
	if in.State != nil {
		phaseState := in.State.ChecklistState[in.State.CurrentPhase]
		items := gapFlags[in.State.CurrentPhase]
		ids := make([]string, 0, len(items))
		for itemID := range items {
			ids = append(ids, itemID)
		}
		sort.Strings(ids)
		for _, itemID := range ids {
			if st, ok := phaseState[itemID]; !ok || st.Status != model.ChecklistCompleted {
				flags = append(flags, items[itemID])
			}
		}
	}

	result := model.AgentResult{
		Agent:        model.AgentAnalysis,
		OK:           true,
		ResponseType: "analysis",
		PhaseAnalysis: &model.PhaseAnalysis{
			DetectedPhase: detected,
			Confidence:    confidence,
			Indicators:    indicators,
		},
		CognitiveFlags: flags,
		Metadata:       map[string]any{},
	}

	if len(in.Attachments) > 0 {
		result.Metadata["visual_analysis"] = map[string]any{
			"artifact_count": len(in.Attachments),
			"note":           "visual artifacts attached this turn",
		}
	}

	return result
}

var _ Agent = (*AnalysisAgent)(nil)
