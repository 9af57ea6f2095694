package progress

import (
	"github.com/atelier-mentor/server/internal/tutor/model"
)

// nextStep picks the next Socratic step for a phase: the canonical core
// ordering first, then the flexible fillers once the core is exhausted.
// The second return is false when every step has been walked.
func nextStep(pp *model.PhaseProgress) (model.SocraticStep, bool) {
	for _, s := range model.CoreSteps {
		if !pp.StepCompleted(s) {
			return s, true
		}
	}
	for _, s := range model.FlexibleSteps {
		if !pp.StepCompleted(s) {
			return s, true
		}
	}
	return "", false
}

// markStepCompleted records the step once, ordered by first completion.
func markStepCompleted(pp *model.PhaseProgress, step model.SocraticStep) {
	if pp.StepCompleted(step) {
		return
	}
	pp.CompletedSteps = append(pp.CompletedSteps, step)
}
