package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

func seedState(t *testing.T) *model.ConversationState {
	t.Helper()
	return model.NewConversationState("s1", "Design a community center next to a park.", time.Now())
}

// gradedProgress builds a PhaseProgress with n graded responses at the given
// average overall score and the given completed steps.
func gradedProgress(n int, avg float64, steps []model.SocraticStep, now time.Time) *model.PhaseProgress {
	pp := model.NewPhaseProgress(now)
	for i := 0; i < n; i++ {
		qid := string(rune('a' + i))
		pp.Responses[qid] = "response"
		pp.Grades[qid] = model.Grade{Overall: avg}
	}
	pp.AverageScore = avg
	pp.CompletedSteps = steps
	return pp
}

func completeRequired(state *model.ConversationState, now time.Time) {
	for _, id := range requiredItems(state.CurrentPhase) {
		UpdateChecklist(state, keywordFor(id), "msg-1", now)
	}
}

// keywordFor returns text matching one keyword of the given rubric item.
func keywordFor(id string) string {
	for _, items := range phaseChecklists {
		for _, it := range items {
			if it.ID == id {
				return it.Keywords[0]
			}
		}
	}
	return ""
}

func TestCompletionPercentStartsNearZero(t *testing.T) {
	now := time.Now()
	state := seedState(t)
	pp := state.Progress(now)

	pct := completionPercent(state, pp)
	assert.InDelta(t, 3.0, pct, 0.01) // concept floor only
}

func TestCompletionPercentFullBlendReachesHundred(t *testing.T) {
	now := time.Now()
	state := seedState(t)
	completeRequired(state, now)
	state.VisualArtifacts[model.PhaseIdeation] = 2

	pp := gradedProgress(3, 5.0, model.CoreSteps, now)
	state.PhaseProgress[model.PhaseIdeation] = pp

	assert.InDelta(t, 100.0, completionPercent(state, pp), 0.01)
}

func TestEightyFiveFloorAfterFourStepsAndThreeInteractions(t *testing.T) {
	now := time.Now()
	state := seedState(t)

	// low quality, no checklist, no visuals: raw blend well under 85
	pp := gradedProgress(3, 1.0, model.CoreSteps, now)
	state.PhaseProgress[model.PhaseIdeation] = pp

	assert.InDelta(t, 85.0, completionPercent(state, pp), 0.01)
}

func TestNoFloorBelowFourSteps(t *testing.T) {
	now := time.Now()
	state := seedState(t)

	pp := gradedProgress(3, 1.0, model.CoreSteps[:3], now)
	state.PhaseProgress[model.PhaseIdeation] = pp

	assert.Less(t, completionPercent(state, pp), 85.0)
}

func TestPhaseCompleteRequiresAllGates(t *testing.T) {
	now := time.Now()

	t.Run("too few interactions", func(t *testing.T) {
		state := seedState(t)
		pp := gradedProgress(1, 5.0, model.CoreSteps, now)
		pp.CompletionPercent = completionPercent(state, pp)
		assert.False(t, phaseComplete(state, pp))
	})

	t.Run("low quality blocks", func(t *testing.T) {
		state := seedState(t)
		completeRequired(state, now)
		pp := gradedProgress(3, 2.0, model.CoreSteps, now)
		pp.CompletionPercent = completionPercent(state, pp)
		assert.False(t, phaseComplete(state, pp))
	})

	t.Run("all gates pass", func(t *testing.T) {
		state := seedState(t)
		completeRequired(state, now)
		pp := gradedProgress(3, 4.5, model.CoreSteps, now)
		pp.CompletionPercent = completionPercent(state, pp)
		assert.True(t, phaseComplete(state, pp))
	})
}

func TestMaterializationBypassesConceptGateAfterFourSteps(t *testing.T) {
	now := time.Now()
	state := seedState(t)
	state.CurrentPhase = model.PhaseMaterialization
	state.PhaseProgress[model.PhaseMaterialization] = model.NewPhaseProgress(now)

	pp := gradedProgress(3, 4.5, model.CoreSteps, now)
	state.PhaseProgress[model.PhaseMaterialization] = pp
	pp.CompletionPercent = completionPercent(state, pp)

	// no checklist items completed at all
	assert.True(t, phaseComplete(state, pp))
}

func TestReadinessScore(t *testing.T) {
	now := time.Now()

	t.Run("fully ready", func(t *testing.T) {
		state := seedState(t)
		completeRequired(state, now)
		pp := gradedProgress(3, 4.5, model.CoreSteps, now)
		pp.CompletionPercent = completionPercent(state, pp)
		assert.InDelta(t, 1.0, readinessScore(state, pp), 0.001)
		assert.True(t, readyToAdvance(state, pp))
	})

	t.Run("engaged but shallow", func(t *testing.T) {
		state := seedState(t)
		pp := gradedProgress(2, 2.0, model.CoreSteps[:2], now)
		pp.CompletionPercent = completionPercent(state, pp)
		score := readinessScore(state, pp)
		assert.Less(t, score, readinessThreshold)
		assert.False(t, readyToAdvance(state, pp))
	})
}
