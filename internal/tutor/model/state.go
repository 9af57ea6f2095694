package model

import (
	"time"
)

// Phase is one of the three design phases a session moves through.
// Phases only advance forward; there is no regress.
type Phase string

const (
	PhaseIdeation        Phase = "ideation"
	PhaseVisualization   Phase = "visualization"
	PhaseMaterialization Phase = "materialization"
)

// PhaseOrder is the fixed forward ordering of design phases.
var PhaseOrder = []Phase{PhaseIdeation, PhaseVisualization, PhaseMaterialization}

// Next returns the phase following p and whether one exists.
// Materialization is terminal.
func (p Phase) Next() (Phase, bool) {
	for i, ph := range PhaseOrder {
		if ph == p && i+1 < len(PhaseOrder) {
			return PhaseOrder[i+1], true
		}
	}
	return p, false
}

// Index returns the position of p in the phase ordering, or -1.
func (p Phase) Index() int {
	for i, ph := range PhaseOrder {
		if ph == p {
			return i
		}
	}
	return -1
}

// SocraticStep is a named stage in the per-phase dialogue ladder.
type SocraticStep string

const (
	StepInitialContextReasoning   SocraticStep = "initial_context_reasoning"
	StepKnowledgeSynthesisTrigger SocraticStep = "knowledge_synthesis_trigger"
	StepSocraticQuestioning       SocraticStep = "socratic_questioning"
	StepMetacognitivePrompt       SocraticStep = "metacognitive_prompt"
	StepContextualExploration     SocraticStep = "contextual_exploration"
	StepDeeperInquiry             SocraticStep = "deeper_inquiry"
	StepSynthesisCheck            SocraticStep = "synthesis_check"
	StepReadinessAssessment       SocraticStep = "readiness_assessment"
)

// CoreSteps form the canonical ordering walked first in every phase.
var CoreSteps = []SocraticStep{
	StepInitialContextReasoning,
	StepKnowledgeSynthesisTrigger,
	StepSocraticQuestioning,
	StepMetacognitivePrompt,
}

// FlexibleSteps are fillers used when the core steps are exhausted.
var FlexibleSteps = []SocraticStep{
	StepContextualExploration,
	StepDeeperInquiry,
	StepSynthesisCheck,
	StepReadinessAssessment,
}

// Message roles stored in ConversationState. The brief role carries the
// initial project description and is never produced by either party mid-run.
const (
	RoleBrief     = "brief"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a session's append-only transcript.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Grade scores one user response on the five rubric dimensions, each in [0,5].
type Grade struct {
	Completeness           float64  `json:"completeness"`
	Depth                  float64  `json:"depth"`
	Relevance              float64  `json:"relevance"`
	Innovation             float64  `json:"innovation"`
	TechnicalUnderstanding float64  `json:"technical_understanding"`
	Overall                float64  `json:"overall"`
	Strengths              []string `json:"strengths"`
	Weaknesses             []string `json:"weaknesses"`
	Recommendations        []string `json:"recommendations"`
}

// SocraticQuestion is one question the phase engine poses to the student.
type SocraticQuestion struct {
	Step               SocraticStep `json:"step"`
	QuestionText       string       `json:"question_text"`
	Keywords           []string     `json:"keywords"`
	AssessmentCriteria []string     `json:"assessment_criteria"`
	Phase              Phase        `json:"phase"`
	QuestionID         string       `json:"question_id"`
}

// PhaseProgress tracks the Socratic ladder, responses and grades for one phase.
type PhaseProgress struct {
	CurrentStep       SocraticStep              `json:"current_step"`
	CompletedSteps    []SocraticStep            `json:"completed_steps"`
	Responses         map[string]string         `json:"responses"`
	Grades            map[string]Grade          `json:"grades"`
	Questions         map[string]SocraticQuestion `json:"questions"`
	AverageScore      float64                   `json:"average_score"`
	CompletionPercent float64                   `json:"completion_percent"`
	IsComplete        bool                      `json:"is_complete"`
	StartTime         time.Time                 `json:"start_time"`
	LastUpdated       time.Time                 `json:"last_updated"`
}

// NewPhaseProgress initializes a fresh per-phase record at the first core step.
func NewPhaseProgress(now time.Time) *PhaseProgress {
	return &PhaseProgress{
		CurrentStep:    StepInitialContextReasoning,
		CompletedSteps: []SocraticStep{},
		Responses:      map[string]string{},
		Grades:         map[string]Grade{},
		Questions:      map[string]SocraticQuestion{},
		StartTime:      now,
		LastUpdated:    now,
	}
}

// StepCompleted reports whether the given step has already been walked.
func (pp *PhaseProgress) StepCompleted(step SocraticStep) bool {
	for _, s := range pp.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// Checklist item statuses.
const (
	ChecklistPending   = "pending"
	ChecklistCompleted = "completed"
)

// ChecklistItemState records when a rubric item was first met and on what evidence.
type ChecklistItemState struct {
	Status      string     `json:"status"`
	FirstMetTS  *time.Time `json:"first_met_ts,omitempty"`
	EvidenceIDs []string   `json:"evidence_ids,omitempty"`
}

// TimelineSnapshot is one periodic progress snapshot appended after a turn.
type TimelineSnapshot struct {
	TS              time.Time `json:"ts"`
	CurrentPhase    Phase     `json:"current_phase"`
	CompletionPct   float64   `json:"completion_pct"`
	CompletedItems  int       `json:"completed_items"`
	PendingRequired []string  `json:"pending_required"`
}

// HistoryEntry records one graded exchange for the session audit trail.
type HistoryEntry struct {
	TS       time.Time    `json:"ts"`
	Phase    Phase        `json:"phase"`
	Step     SocraticStep `json:"step"`
	Question string       `json:"question"`
	Response string       `json:"response"`
	Grade    Grade        `json:"grade"`
}

// ConversationState is the session-scoped record. It is created when a brief
// is first accepted, mutated only by the orchestrator after each turn, and
// never destroyed within a session.
type ConversationState struct {
	SessionID           string                                   `json:"session_id"`
	Domain              string                                   `json:"domain"`
	DesignBrief         string                                   `json:"design_brief"`
	Messages            []Message                                `json:"messages"`
	CurrentPhase        Phase                                    `json:"current_phase"`
	PhaseProgress       map[Phase]*PhaseProgress                 `json:"phase_progress"`
	ConversationContext *Classification                          `json:"conversation_context,omitempty"`
	ChecklistState      map[Phase]map[string]*ChecklistItemState `json:"checklist_state"`
	Timeline            []TimelineSnapshot                       `json:"timeline"`
	History             []HistoryEntry                           `json:"conversation_history"`
	VisualArtifacts     map[Phase]int                            `json:"visual_artifacts,omitempty"`
	SessionStart        time.Time                                `json:"session_start"`
	LastUpdated         time.Time                                `json:"last_updated"`
}

// NewConversationState creates a session at ideation with the given brief.
func NewConversationState(sessionID, brief string, now time.Time) *ConversationState {
	st := &ConversationState{
		SessionID:       sessionID,
		Domain:          "architecture",
		DesignBrief:     brief,
		Messages:        []Message{},
		CurrentPhase:    PhaseIdeation,
		PhaseProgress:   map[Phase]*PhaseProgress{PhaseIdeation: NewPhaseProgress(now)},
		ChecklistState:  map[Phase]map[string]*ChecklistItemState{},
		Timeline:        []TimelineSnapshot{},
		History:         []HistoryEntry{},
		VisualArtifacts: map[Phase]int{},
		SessionStart:    now,
		LastUpdated:     now,
	}
	if brief != "" {
		st.Messages = append(st.Messages, Message{Role: RoleBrief, Content: brief, Timestamp: now})
	}
	return st
}

// AppendMessage appends to the transcript keeping timestamps non-decreasing.
func (s *ConversationState) AppendMessage(role, content string, now time.Time) {
	if n := len(s.Messages); n > 0 && now.Before(s.Messages[n-1].Timestamp) {
		now = s.Messages[n-1].Timestamp
	}
	s.Messages = append(s.Messages, Message{Role: role, Content: content, Timestamp: now})
	s.LastUpdated = now
}

// Progress returns the PhaseProgress for the current phase, self-healing a
// missing entry so the invariant always holds.
func (s *ConversationState) Progress(now time.Time) *PhaseProgress {
	if s.PhaseProgress == nil {
		s.PhaseProgress = map[Phase]*PhaseProgress{}
	}
	pp, ok := s.PhaseProgress[s.CurrentPhase]
	if !ok || pp == nil {
		pp = NewPhaseProgress(now)
		s.PhaseProgress[s.CurrentPhase] = pp
	}
	return pp
}

// UserMessages returns the transcript entries with the user role.
func (s *ConversationState) UserMessages() []Message {
	var out []Message
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			out = append(out, m)
		}
	}
	return out
}

// LastAssistantMessage returns the most recent assistant turn, if any.
func (s *ConversationState) LastAssistantMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAssistant {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}

// OverallScore averages the per-phase average scores of graded phases.
func (s *ConversationState) OverallScore() float64 {
	var sum float64
	var n int
	for _, pp := range s.PhaseProgress {
		if pp != nil && len(pp.Grades) > 0 {
			sum += pp.AverageScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
