package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
)

// phaseWelcomes prefix the first question of a newly entered phase.
var phaseWelcomes = map[model.Phase]string{
	model.PhaseVisualization:   "Great progress on your concept! You're moving into the visualization phase — time to test your ideas through drawings and models.",
	model.PhaseMaterialization: "Your design is taking shape. Welcome to the materialization phase — let's work out how it gets built.",
}

const sessionCompleteMessage = "You have worked through all three design phases. Well done — your project has moved from idea to buildable proposition."

// Engine is the phase-progression state machine. Grading and progression run
// on every turn regardless of route, so rubric state is never lost even when
// the generator is down.
type Engine struct {
	bank   *QuestionBank
	images model.ImageGenerator
}

func NewEngine(bank *QuestionBank, images model.ImageGenerator) *Engine {
	return &Engine{bank: bank, images: images}
}

// ProcessUserMessage grades the user's turn against the current Socratic
// question, updates checklist and completion, transitions the phase when
// ready, and resolves the next question.
func (e *Engine) ProcessUserMessage(ctx context.Context, state *model.ConversationState, userText string, now time.Time) *model.ProgressResult {
	phase := state.CurrentPhase
	pp := state.Progress(now)

	// 1. Resolve the question currently posed.
	question := e.bank.Question(ctx, state, phase, pp.CurrentStep)
	qid := uniqueQuestionID(pp, question.QuestionID)

	// 2. Grade and record; grades are append-only per question id.
	grade := GradeResponse(userText, question)
	pp.Responses[qid] = userText
	pp.Grades[qid] = grade
	pp.Questions[qid] = question
	markStepCompleted(pp, pp.CurrentStep)

	// 3. Recompute the running average.
	pp.AverageScore = averageOverall(pp)

	// 4. Checklist update from the user text.
	evidenceID := fmt.Sprintf("msg-%d", len(state.Messages)-1)
	delta := UpdateChecklist(state, userText, evidenceID, now)

	// 5. Completion percent.
	pp.CompletionPercent = completionPercent(state, pp)
	pp.LastUpdated = now

	result := &model.ProgressResult{
		CurrentPhase:      state.CurrentPhase,
		CurrentStep:       pp.CurrentStep,
		Grade:             &grade,
		CompletionPercent: pp.CompletionPercent,
		ChecklistDelta:    delta,
	}

	// 6. Phase transition when complete and ready.
	if phaseComplete(state, pp) && readyToAdvance(state, pp) {
		e.transition(ctx, state, pp, result, now)
	}

	// 7. Resolve the next question for the (possibly new) phase.
	cur := state.Progress(now)
	if step, ok := nextStep(cur); ok {
		cur.CurrentStep = step
		result.NextQuestion = e.bank.Question(ctx, state, state.CurrentPhase, step).QuestionText
	} else {
		result.NextQuestion = phaseFallbackQuestions[state.CurrentPhase]
	}
	result.CurrentPhase = state.CurrentPhase
	result.CurrentStep = cur.CurrentStep

	if result.TransitionMessage != "" {
		result.NextQuestion = result.TransitionMessage + " " + result.NextQuestion
	}

	if !result.PhaseTransition && pp.CompletionPercent >= 70 && !pp.IsComplete {
		result.Nudge = "You're close to wrapping up this phase — keep building on what you've established."
	}

	// 8. History entry and timeline snapshot.
	state.History = append(state.History, model.HistoryEntry{
		TS:       now,
		Phase:    phase,
		Step:     question.Step,
		Question: question.QuestionText,
		Response: userText,
		Grade:    grade,
	})
	completed := completedItemCount(state, state.CurrentPhase)
	state.Timeline = append(state.Timeline, model.TimelineSnapshot{
		TS:              now,
		CurrentPhase:    state.CurrentPhase,
		CompletionPct:   state.Progress(now).CompletionPercent,
		CompletedItems:  completed,
		PendingRequired: pendingRequired(state, state.CurrentPhase),
	})

	logx.Debug().
		Str("session_id", state.SessionID).
		Str("phase", string(state.CurrentPhase)).
		Str("step", string(result.CurrentStep)).
		Float64("grade", grade.Overall).
		Float64("completion_pct", result.CompletionPercent).
		Bool("phase_transition", result.PhaseTransition).
		Msg("turn progressed")

	return result
}

// transition advances the phase atomically: the old phase is finalized and
// the new PhaseProgress installed together.
func (e *Engine) transition(ctx context.Context, state *model.ConversationState, pp *model.PhaseProgress, result *model.ProgressResult, now time.Time) {
	prev := state.CurrentPhase
	next, ok := prev.Next()

	pp.IsComplete = true
	pp.CompletionPercent = 100
	pp.LastUpdated = now
	result.PhaseComplete = true

	if !ok {
		result.SessionComplete = true
		result.TransitionMessage = sessionCompleteMessage
		logx.Info().Str("session_id", state.SessionID).Msg("session complete")
		return
	}

	state.CurrentPhase = next
	state.PhaseProgress[next] = model.NewPhaseProgress(now)

	result.PhaseTransition = true
	result.PreviousPhase = prev
	result.TransitionMessage = phaseWelcomes[next]

	logx.Info().
		Str("session_id", state.SessionID).
		Str("from", string(prev)).
		Str("to", string(next)).
		Msg("phase transition")

	if e.images != nil {
		brief := state.DesignBrief
		go func() {
			if err := e.images.GeneratePhaseImage(context.WithoutCancel(ctx), next, brief); err != nil {
				logx.Warn().Err(err).Str("phase", string(next)).Msg("phase illustration failed")
			}
		}()
	}
}

// uniqueQuestionID suffixes repeat visits so grades stay append-only.
func uniqueQuestionID(pp *model.PhaseProgress, base string) string {
	if _, exists := pp.Grades[base]; !exists {
		return base
	}
	for i := 2; ; i++ {
		qid := fmt.Sprintf("%s#%d", base, i)
		if _, exists := pp.Grades[qid]; !exists {
			return qid
		}
	}
}

func averageOverall(pp *model.PhaseProgress) float64 {
	if len(pp.Grades) == 0 {
		return 0
	}
	var sum float64
	for _, g := range pp.Grades {
		sum += g.Overall
	}
	return sum / float64(len(pp.Grades))
}
