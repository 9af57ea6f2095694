package model

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// TextGenerator is the narrow capability handle over an LLM chat model.
// gemini.ChatModel satisfies it; tests inject deterministic stubs.
type TextGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// AgentName identifies one of the four specialist agents.
type AgentName string

const (
	AgentAnalysis  AgentName = "analysis"
	AgentDomain    AgentName = "domain_expert"
	AgentSocratic  AgentName = "socratic_tutor"
	AgentCognitive AgentName = "cognitive_enhancement"
)

// ResponseType is the normalized family the external observer sees.
type ResponseType string

const (
	ResponseSocraticPrimary       ResponseType = "socratic_primary"
	ResponseKnowledgeSupport      ResponseType = "knowledge_support"
	ResponseCognitiveIntervention ResponseType = "cognitive_intervention"
	ResponseSynthesis             ResponseType = "synthesis"
	ResponseFallback              ResponseType = "fallback"
)

// Source is one ranked knowledge-source result.
type Source struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score,omitempty"`
}

// PhaseAnalysis is the analysis agent's phase detection, later augmented by
// the phase engine with completion and the next Socratic step.
type PhaseAnalysis struct {
	DetectedPhase    Phase        `json:"detected_phase"`
	Confidence       float64      `json:"confidence"`
	Indicators       []string     `json:"indicators,omitempty"`
	CompletionPct    float64      `json:"completion_pct"`
	NextSocraticStep SocraticStep `json:"next_socratic_step,omitempty"`
}

// AgentResult is the structured output of one agent invocation. Failures are
// values (OK=false with a reason), never panics or control-flow exceptions.
type AgentResult struct {
	Agent          AgentName      `json:"agent"`
	OK             bool           `json:"ok"`
	Reason         string         `json:"reason,omitempty"`
	ResponseText   string         `json:"response_text"`
	ResponseType   string         `json:"response_type"`
	Sources        []Source       `json:"sources,omitempty"`
	CognitiveFlags []string       `json:"cognitive_flags,omitempty"`
	PhaseAnalysis  *PhaseAnalysis `json:"phase_analysis,omitempty"`
	ChallengeType  string         `json:"challenge_type,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Failed builds a not-OK result for the given agent.
func Failed(agent AgentName, reason string) AgentResult {
	return AgentResult{Agent: agent, OK: false, Reason: reason}
}
