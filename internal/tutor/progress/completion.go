package progress

import (
	"github.com/atelier-mentor/server/internal/tutor/model"
)

// Thresholds governing completion and readiness. Engagement counts
// interactions within the current phase.
const (
	engagementThreshold = 2
	qualityThreshold    = 0.8  // mean(grade.overall)/5
	completionThreshold = 45.0 // percent
	conceptThreshold    = 0.2  // fraction of required items, completion gate
	// readinessConceptThreshold is stricter than the completion gate so the
	// partial-credit band below it stays meaningful.
	readinessConceptThreshold = 0.5
	readinessThreshold        = 0.6
)

// engagementFactor maps phase interaction count to [0,1].
func engagementFactor(interactions int) float64 {
	switch {
	case interactions >= 3:
		return 1.0
	case interactions == 2:
		return 0.75
	case interactions == 1:
		return 0.5
	default:
		return 0.0
	}
}

// qualityFactor is mean(grade.overall)/5, or an engagement-based default.
func qualityFactor(pp *model.PhaseProgress, interactions int) float64 {
	if len(pp.Grades) > 0 {
		return pp.AverageScore / 5.0
	}
	if interactions > 0 {
		return 0.6
	}
	return 0.0
}

// conceptFactor is the fraction of required rubric items completed, floored
// at 0.2, with a 0.5 baseline when the phase has no required items.
func conceptFactor(state *model.ConversationState, phase model.Phase) float64 {
	completed, required := requiredCoverage(state, phase)
	if required == 0 {
		return 0.5
	}
	f := float64(completed) / float64(required)
	if f < 0.2 {
		f = 0.2
	}
	return f
}

// visualFactor maps phase-scoped visual artifact count to min(1, count/2).
func visualFactor(state *model.ConversationState, phase model.Phase) float64 {
	count := state.VisualArtifacts[phase]
	f := float64(count) / 2.0
	if f > 1.0 {
		f = 1.0
	}
	return f
}

// completionPercent computes the weighted blend clamped to [0,100]:
//
//	100 * (0.50*engagement + 0.30*quality + 0.15*concepts + 0.05*visual)
//
// with an 85 floor once four Socratic steps are completed at full engagement.
func completionPercent(state *model.ConversationState, pp *model.PhaseProgress) float64 {
	interactions := phaseInteractions(pp)

	pct := 100 * (0.50*engagementFactor(interactions) +
		0.30*qualityFactor(pp, interactions) +
		0.15*conceptFactor(state, state.CurrentPhase) +
		0.05*visualFactor(state, state.CurrentPhase))

	if len(pp.CompletedSteps) >= 4 && interactions >= 3 && pct < 85 {
		pct = 85
	}

	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// phaseInteractions counts graded exchanges within the phase.
func phaseInteractions(pp *model.PhaseProgress) int {
	return len(pp.Responses)
}

// phaseComplete reports whether every completion condition holds.
func phaseComplete(state *model.ConversationState, pp *model.PhaseProgress) bool {
	interactions := phaseInteractions(pp)
	if interactions < engagementThreshold {
		return false
	}
	if qualityFactor(pp, interactions) < qualityThreshold {
		return false
	}
	if pp.CompletionPercent < completionThreshold {
		return false
	}
	completed, required := requiredCoverage(state, state.CurrentPhase)
	if state.CurrentPhase == model.PhaseMaterialization {
		if len(pp.CompletedSteps) >= 4 {
			return true
		}
	}
	if required == 0 {
		return true
	}
	return float64(completed)/float64(required) >= conceptThreshold
}

// readinessScore computes the 4-factor adaptive score in [0,1]:
// engagement, learning evidence, progress evidence, concept understanding.
func readinessScore(state *model.ConversationState, pp *model.PhaseProgress) float64 {
	interactions := phaseInteractions(pp)
	quality := qualityFactor(pp, interactions)
	completed, required := requiredCoverage(state, state.CurrentPhase)
	coverage := 0.5
	if required > 0 {
		coverage = float64(completed) / float64(required)
	}

	var f1, f2, f3, f4 float64

	if interactions >= engagementThreshold {
		f1 = 1.0
	}

	switch {
	case quality >= qualityThreshold:
		f2 = 1.0
	case coverage >= 0.5:
		f2 = 0.5
	}

	switch {
	case pp.CompletionPercent >= completionThreshold:
		f3 = 1.0
	case float64(interactions) >= 1.5*engagementThreshold:
		f3 = 0.3
	}

	switch {
	case coverage >= readinessConceptThreshold:
		f4 = 1.0
	case coverage >= 0.4:
		f4 = 0.2
	}

	return (f1 + f2 + f3 + f4) / 4.0
}

// readyToAdvance gates the phase transition.
func readyToAdvance(state *model.ConversationState, pp *model.PhaseProgress) bool {
	return readinessScore(state, pp) >= readinessThreshold
}
