package progress

import (
	"strings"
	"time"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

// checklistItem is one keyword-triggered rubric concept for a phase.
type checklistItem struct {
	ID       string
	Required bool
	Keywords []string
}

// phaseChecklists define the rubric concepts per phase. Required items feed
// the concepts component of completion.
var phaseChecklists = map[model.Phase][]checklistItem{
	model.PhaseIdeation: {
		{ID: "site_context", Required: true, Keywords: []string{"site", "context", "surrounding", "neighborhood"}},
		{ID: "program_definition", Required: true, Keywords: []string{"program", "function", "use", "activity"}},
		{ID: "design_concept", Required: true, Keywords: []string{"concept", "idea", "parti", "intent"}},
		{ID: "user_needs", Required: false, Keywords: []string{"user", "community", "people", "visitor"}},
		{ID: "precedent_study", Required: false, Keywords: []string{"precedent", "case study", "reference project"}},
	},
	model.PhaseVisualization: {
		{ID: "spatial_organization", Required: true, Keywords: []string{"plan", "layout", "organization", "arrangement"}},
		{ID: "circulation_scheme", Required: true, Keywords: []string{"circulation", "movement", "entry", "sequence"}},
		{ID: "sectional_thinking", Required: true, Keywords: []string{"section", "height", "volume", "level"}},
		{ID: "light_and_atmosphere", Required: false, Keywords: []string{"light", "daylight", "atmosphere", "shadow"}},
		{ID: "scale_and_proportion", Required: false, Keywords: []string{"scale", "proportion", "dimension"}},
	},
	model.PhaseMaterialization: {
		{ID: "material_palette", Required: true, Keywords: []string{"material", "concrete", "timber", "steel", "brick"}},
		{ID: "structural_system", Required: true, Keywords: []string{"structure", "structural", "column", "beam", "span"}},
		{ID: "envelope_performance", Required: true, Keywords: []string{"envelope", "thermal", "insulation", "energy"}},
		{ID: "detail_resolution", Required: false, Keywords: []string{"detail", "joint", "connection", "assembly"}},
		{ID: "code_compliance", Required: false, Keywords: []string{"code", "regulation", "accessibility", "egress"}},
	},
}

// requiredItems returns the required rubric item ids for a phase.
func requiredItems(phase model.Phase) []string {
	var out []string
	for _, it := range phaseChecklists[phase] {
		if it.Required {
			out = append(out, it.ID)
		}
	}
	return out
}

// UpdateChecklist matches the turn text against the current phase checklist,
// flipping first-matched items to completed with timestamp and evidence.
// It returns the ids newly completed this call.
func UpdateChecklist(state *model.ConversationState, text string, evidenceID string, now time.Time) []string {
	phase := state.CurrentPhase
	items := phaseChecklists[phase]
	if len(items) == 0 {
		return nil
	}

	if state.ChecklistState == nil {
		state.ChecklistState = map[model.Phase]map[string]*model.ChecklistItemState{}
	}
	if state.ChecklistState[phase] == nil {
		state.ChecklistState[phase] = map[string]*model.ChecklistItemState{}
	}
	phaseState := state.ChecklistState[phase]

	lower := strings.ToLower(text)
	var delta []string
	for _, it := range items {
		cur, ok := phaseState[it.ID]
		if ok && cur.Status == model.ChecklistCompleted {
			continue
		}
		matched := false
		for _, kw := range it.Keywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		ts := now
		phaseState[it.ID] = &model.ChecklistItemState{
			Status:      model.ChecklistCompleted,
			FirstMetTS:  &ts,
			EvidenceIDs: appendEvidence(cur, evidenceID),
		}
		delta = append(delta, it.ID)
	}
	return delta
}

// requiredCoverage returns completed/required counts for the phase.
func requiredCoverage(state *model.ConversationState, phase model.Phase) (completed, required int) {
	req := requiredItems(phase)
	required = len(req)
	phaseState := state.ChecklistState[phase]
	for _, id := range req {
		if st, ok := phaseState[id]; ok && st.Status == model.ChecklistCompleted {
			completed++
		}
	}
	return completed, required
}

// pendingRequired lists required items not yet completed for the phase.
func pendingRequired(state *model.ConversationState, phase model.Phase) []string {
	var out []string
	phaseState := state.ChecklistState[phase]
	for _, id := range requiredItems(phase) {
		if st, ok := phaseState[id]; !ok || st.Status != model.ChecklistCompleted {
			out = append(out, id)
		}
	}
	return out
}

// completedItemCount counts completed items across the phase checklist.
func completedItemCount(state *model.ConversationState, phase model.Phase) int {
	n := 0
	for _, st := range state.ChecklistState[phase] {
		if st != nil && st.Status == model.ChecklistCompleted {
			n++
		}
	}
	return n
}

func appendEvidence(cur *model.ChecklistItemState, evidenceID string) []string {
	if cur == nil {
		if evidenceID == "" {
			return nil
		}
		return []string{evidenceID}
	}
	if evidenceID == "" {
		return cur.EvidenceIDs
	}
	return append(cur.EvidenceIDs, evidenceID)
}
