package progress

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

// strongResponse composes a reply that covers the current question's keywords
// and the phase's technical lexicon, so it grades highly regardless of phase.
func strongResponse(state *model.ConversationState, now time.Time) string {
	pp := state.Progress(now)
	parts := []string{richResponse}
	if tpl, ok := questionBankTemplates[state.CurrentPhase][pp.CurrentStep]; ok {
		parts = append(parts, strings.Join(tpl.keywords, " "))
	}
	parts = append(parts, strings.Join(phaseTechnicalLexicon[state.CurrentPhase], " "))
	parts = append(parts, "What if instead of that we tried an innovative unique creative novel variation because it could work better?")
	return strings.Join(parts, " ")
}

func TestFirstTurnGradesWithoutTransition(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	state := seedState(t)
	engine := NewEngine(NewQuestionBank(nil, ""), nil)

	state.AppendMessage(model.RoleUser, richResponse, now)
	r := engine.ProcessUserMessage(ctx, state, richResponse, now)

	require.NotNil(t, r.Grade)
	assert.False(t, r.PhaseTransition)
	assert.False(t, r.SessionComplete)
	assert.Equal(t, model.PhaseIdeation, r.CurrentPhase)
	assert.NotEmpty(t, r.NextQuestion)
	assert.Len(t, state.History, 1)
	assert.Len(t, state.Timeline, 1)

	pp := state.PhaseProgress[model.PhaseIdeation]
	assert.Len(t, pp.Grades, 1)
	assert.Len(t, pp.CompletedSteps, 1)
	assert.Greater(t, pp.AverageScore, 0.0)
}

func TestStepWalksCoreLadderInOrder(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	state := seedState(t)
	engine := NewEngine(NewQuestionBank(nil, ""), nil)

	// weak responses keep the phase from completing while the ladder advances
	r1 := engine.ProcessUserMessage(ctx, state, "ok then", now)
	assert.Equal(t, model.CoreSteps[1], r1.CurrentStep)

	r2 := engine.ProcessUserMessage(ctx, state, "sure fine", now.Add(time.Minute))
	assert.Equal(t, model.CoreSteps[2], r2.CurrentStep)
}

func TestStrongSessionWalksAllThreePhases(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	state := seedState(t)
	engine := NewEngine(NewQuestionBank(nil, ""), nil)

	var transitions []model.Phase
	sessionComplete := false

	for turn := 0; turn < 12 && !sessionComplete; turn++ {
		now = now.Add(time.Minute)
		text := strongResponse(state, now)
		state.AppendMessage(model.RoleUser, text, now)

		r := engine.ProcessUserMessage(ctx, state, text, now)
		if r.PhaseTransition {
			transitions = append(transitions, r.CurrentPhase)
			assert.True(t, strings.HasPrefix(r.NextQuestion, r.TransitionMessage))
			// finalized atomically
			prev := state.PhaseProgress[r.PreviousPhase]
			assert.True(t, prev.IsComplete)
			assert.InDelta(t, 100.0, prev.CompletionPercent, 0.001)
		}
		sessionComplete = r.SessionComplete
	}

	assert.Equal(t, []model.Phase{model.PhaseVisualization, model.PhaseMaterialization}, transitions)
	assert.True(t, sessionComplete)
	assert.Equal(t, model.PhaseMaterialization, state.CurrentPhase)
}

func TestQuestionIDsStayUniqueOnRepeatVisits(t *testing.T) {
	now := time.Now()
	pp := model.NewPhaseProgress(now)
	pp.Grades["ideation:socratic_questioning"] = model.Grade{}

	qid := uniqueQuestionID(pp, "ideation:socratic_questioning")
	assert.Equal(t, "ideation:socratic_questioning#2", qid)

	pp.Grades[qid] = model.Grade{}
	assert.Equal(t, "ideation:socratic_questioning#3", uniqueQuestionID(pp, "ideation:socratic_questioning"))
}

func TestQuestionBankFallsBackToTemplatesWithoutGenerator(t *testing.T) {
	ctx := context.Background()
	bank := NewQuestionBank(nil, "")
	state := seedState(t)

	q := bank.Question(ctx, state, model.PhaseIdeation, model.StepInitialContextReasoning)
	assert.NotEmpty(t, q.QuestionText)
	assert.NotEmpty(t, q.Keywords)
	assert.Equal(t, "ideation:initial_context_reasoning", q.QuestionID)

	// unknown step degrades to the phase fallback
	fq := bank.Question(ctx, state, model.PhaseIdeation, model.SocraticStep("unheard_of"))
	assert.Equal(t, phaseFallbackQuestions[model.PhaseIdeation], fq.QuestionText)
}
