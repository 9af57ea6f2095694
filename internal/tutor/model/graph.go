package model

// AppState stores per-invocation state for the Eino graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as it is never touched outside handlers.
type AppState struct {
	SessionID      string
	UserText       string
	Attachments    []string
	Session        *ConversationState
	Classification *Classification
	Routing        *RoutingDecision
	AgentResults   []AgentResult
	Progress       *ProgressResult

	// Accumulated total LLM cost (USD) across model invocations for this turn
	TotalCostUSD float64
}

// TurnInput is the public input for processing one user turn.
type TurnInput struct {
	SessionID   string `json:"session_id"`
	UserText    string `json:"user_text"`
	DesignBrief string `json:"design_brief,omitempty"`
	// Attachments are opaque references to visual artifacts supplied this turn.
	Attachments []string `json:"attachments,omitempty"`
}

// QualityMeta records surface checks made on the emitted reply.
type QualityMeta struct {
	EndsWithQuestion   bool `json:"ends_with_question"`
	HasBullets         bool `json:"has_bullets"`
	HasSynthesisHeader bool `json:"has_synthesis_header"`
	CharLength         int  `json:"char_length"`
}

// TurnMetadata is attached to every assistant reply.
type TurnMetadata struct {
	ResponseType    ResponseType    `json:"response_type"`
	RawResponseType string          `json:"raw_response_type"`
	RoutingPath     RouteTag        `json:"routing_path"`
	AgentsUsed      []AgentName     `json:"agents_used"`
	PhaseAnalysis   *PhaseAnalysis  `json:"phase_analysis,omitempty"`
	Classification  *Classification `json:"classification,omitempty"`
	Sources         []Source        `json:"sources,omitempty"`
	Quality         QualityMeta     `json:"quality"`

	CurrentPhase      Phase        `json:"current_phase"`
	NextSocraticStep  SocraticStep `json:"next_socratic_step,omitempty"`
	CompletionPct     float64      `json:"completion_pct"`
	Grade             *Grade       `json:"grade,omitempty"`
	ChecklistDelta    []string     `json:"checklist_delta,omitempty"`
	PhaseTransition   bool         `json:"phase_transition,omitempty"`
	PreviousPhase     Phase        `json:"previous_phase,omitempty"`
	TransitionMessage string       `json:"transition_message,omitempty"`
	SessionComplete   bool         `json:"session_complete,omitempty"`

	FallbackReason string  `json:"fallback_reason,omitempty"`
	TotalCostUSD   float64 `json:"total_cost_usd,omitempty"`
}

// TurnResult is the graph output: the shaped reply plus its metadata.
type TurnResult struct {
	ResponseText string        `json:"response_text"`
	Metadata     *TurnMetadata `json:"metadata"`
}

// ProgressResult is what the phase engine returns for one processed turn.
type ProgressResult struct {
	CurrentPhase      Phase        `json:"current_phase"`
	CurrentStep       SocraticStep `json:"current_step"`
	Grade             *Grade       `json:"grade,omitempty"`
	NextQuestion      string       `json:"next_question"`
	CompletionPercent float64      `json:"completion_percent"`
	PhaseComplete     bool         `json:"phase_complete"`
	SessionComplete   bool         `json:"session_complete"`
	Nudge             string       `json:"nudge,omitempty"`
	PhaseTransition   bool         `json:"phase_transition"`
	PreviousPhase     Phase        `json:"previous_phase,omitempty"`
	TransitionMessage string       `json:"transition_message,omitempty"`
	ChecklistDelta    []string     `json:"checklist_delta,omitempty"`
}
