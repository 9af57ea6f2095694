package nodes

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-mentor/server/internal/tutor/classify"
	"github.com/atelier-mentor/server/internal/tutor/model"
	"github.com/atelier-mentor/server/internal/tutor/synth"
)

func TestHistoryBeforeTurnTrimsCurrentUserTurn(t *testing.T) {
	now := time.Now()
	session := model.NewConversationState("s1", "Design a community center.", now)
	session.AppendMessage(model.RoleUser, "Where should I begin?", now)
	session.AppendMessage(model.RoleAssistant, "What matters most to you here?", now)

	current := "The park edge matters most."
	session.AppendMessage(model.RoleUser, current, now)

	history := historyBeforeTurn(session.Messages, current)
	require.Len(t, history, len(session.Messages)-1)
	assert.Equal(t, "What matters most to you here?", history[len(history)-1].Content)

	// nothing to trim when the transcript does not end with the current turn
	assert.Len(t, historyBeforeTurn(history, current), len(history))
}

func TestClassifierHistoryExcludesCurrentTurn(t *testing.T) {
	now := time.Now()
	session := model.NewConversationState("s1", "Design a community center.", now)
	session.AppendMessage(model.RoleUser, "Where should I begin?", now)
	session.AppendMessage(model.RoleAssistant, "What matters most to you here?", now)
	session.AppendMessage(model.RoleUser, "The park edge matters most.", now)
	session.AppendMessage(model.RoleAssistant, "Good. What does the program need?", now)

	// third user turn: a feedback request this early is premature answer seeking
	current := "What do you think of my plan so far?"
	session.AppendMessage(model.RoleUser, current, now)

	history := historyBeforeTurn(session.Messages, current)
	cls := classify.NewClassifier().Classify(current, history)
	assert.Equal(t, model.OffloadingPrematureAnswer, cls.OffloadingType)
}

func TestMergeProgressRecomputesQuality(t *testing.T) {
	text := "What would a section through the courtyard reveal?"
	meta := &model.TurnMetadata{Quality: synth.QualityOf(text)}
	require.True(t, meta.Quality.EndsWithQuestion)

	merged := mergeProgress(text, meta, &model.ProgressResult{
		CurrentPhase:      model.PhaseVisualization,
		TransitionMessage: "You've set up a solid concept. Time to put it on paper.",
		Nudge:             "Try sketching that section before our next turn.",
	})

	assert.True(t, strings.HasPrefix(merged, "You've set up a solid concept."))
	assert.True(t, strings.HasSuffix(merged, "Try sketching that section before our next turn."))
	assert.False(t, meta.Quality.EndsWithQuestion)
	assert.Equal(t, len(merged), meta.Quality.CharLength)
	assert.Equal(t, model.PhaseVisualization, meta.CurrentPhase)
}
