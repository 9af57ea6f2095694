package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState(now time.Time) *ConversationState {
	st := NewConversationState("sess-42", "Design a community center next to a park.", now)
	st.AppendMessage(RoleUser, "I want the entry to face the park.", now.Add(time.Minute))
	st.AppendMessage(RoleAssistant, "What does the park gain from that?", now.Add(2*time.Minute))

	pp := st.Progress(now)
	pp.CompletedSteps = []SocraticStep{StepInitialContextReasoning}
	pp.Responses["ideation:initial_context_reasoning"] = "I want the entry to face the park."
	pp.Grades["ideation:initial_context_reasoning"] = Grade{Overall: 3.5, Completeness: 3.0}
	pp.AverageScore = 3.5

	ts := now.Add(time.Minute)
	st.ChecklistState[PhaseIdeation] = map[string]*ChecklistItemState{
		"site_context": {Status: ChecklistCompleted, FirstMetTS: &ts, EvidenceIDs: []string{"msg-1"}},
	}
	st.VisualArtifacts[PhaseIdeation] = 1
	return st
}

func TestExportLoadRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	st := sampleState(now)

	b, err := ExportSession(st)
	require.NoError(t, err)

	loaded, err := LoadSession(b)
	require.NoError(t, err)

	assert.Equal(t, st.SessionID, loaded.SessionID)
	assert.Equal(t, st.DesignBrief, loaded.DesignBrief)
	assert.Equal(t, st.CurrentPhase, loaded.CurrentPhase)
	assert.Equal(t, len(st.Messages), len(loaded.Messages))
	assert.Equal(t, st.Messages[1].Content, loaded.Messages[1].Content)

	pp := loaded.PhaseProgress[PhaseIdeation]
	require.NotNil(t, pp)
	assert.Equal(t, []SocraticStep{StepInitialContextReasoning}, pp.CompletedSteps)
	assert.InDelta(t, 3.5, pp.Grades["ideation:initial_context_reasoning"].Overall, 0.001)

	item := loaded.ChecklistState[PhaseIdeation]["site_context"]
	require.NotNil(t, item)
	assert.Equal(t, ChecklistCompleted, item.Status)
	assert.Equal(t, []string{"msg-1"}, item.EvidenceIDs)
	assert.Equal(t, 1, loaded.VisualArtifacts[PhaseIdeation])
}

func TestExportCarriesOverallScore(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	st := sampleState(now)

	b, err := ExportSession(st)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &doc))
	require.Contains(t, doc, "overall_score")

	var score float64
	require.NoError(t, json.Unmarshal(doc["overall_score"], &score))
	assert.InDelta(t, st.OverallScore(), score, 0.001)
}

func TestExportNilStateErrors(t *testing.T) {
	_, err := ExportSession(nil)
	assert.Error(t, err)
}

func TestLoadSessionRejectsMissingSessionID(t *testing.T) {
	_, err := LoadSession([]byte(`{"design_brief":"x"}`))
	assert.Error(t, err)
}

func TestLoadSessionRejectsGarbage(t *testing.T) {
	_, err := LoadSession([]byte(`not json`))
	assert.Error(t, err)
}

func TestPhaseNextIsForwardOnlyAndTerminal(t *testing.T) {
	next, ok := PhaseIdeation.Next()
	assert.True(t, ok)
	assert.Equal(t, PhaseVisualization, next)

	next, ok = PhaseVisualization.Next()
	assert.True(t, ok)
	assert.Equal(t, PhaseMaterialization, next)

	_, ok = PhaseMaterialization.Next()
	assert.False(t, ok)
}

func TestAppendMessageKeepsTimestampsMonotonic(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	st := NewConversationState("s", "brief", now)

	st.AppendMessage(RoleUser, "first", now.Add(time.Minute))
	// a clock that jumped backwards must not reorder the transcript
	st.AppendMessage(RoleAssistant, "second", now.Add(-time.Hour))

	require.Len(t, st.Messages, 3)
	assert.False(t, st.Messages[2].Timestamp.Before(st.Messages[1].Timestamp))
}
