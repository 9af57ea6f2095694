package model

// RouteTag names the pedagogical pattern chosen for a turn. It determines the
// canonical agent sequence and the shaping contract applied to the reply.
type RouteTag string

const (
	RouteProgressiveOpening     RouteTag = "progressive_opening"
	RouteTopicTransition        RouteTag = "topic_transition"
	RouteKnowledgeOnly          RouteTag = "knowledge_only"
	RouteTechnicalGuidance      RouteTag = "technical_guidance"
	RouteClarificationSupport   RouteTag = "clarification_support"
	RouteSocraticExploration    RouteTag = "socratic_exploration"
	RouteSocraticFocus          RouteTag = "socratic_focus"
	RouteCognitiveChallenge     RouteTag = "cognitive_challenge"
	RouteCognitiveIntervention  RouteTag = "cognitive_intervention"
	RouteDesignGuidance         RouteTag = "design_guidance"
	RouteAnalysisGuidance       RouteTag = "analysis_guidance"
	RouteKnowledgeWithChallenge RouteTag = "knowledge_with_challenge"
	RouteSupportiveScaffolding  RouteTag = "supportive_scaffolding"
	RouteFoundationalBuilding   RouteTag = "foundational_building"
	RouteBalancedGuidance       RouteTag = "balanced_guidance"
	RouteMultiAgent             RouteTag = "multi_agent_comprehensive"
	RouteSocraticExplanation    RouteTag = "socratic_explanation"
	RouteDefault                RouteTag = "default"
)

// RouteTags enumerates every tag the decision tree may emit.
var RouteTags = []RouteTag{
	RouteProgressiveOpening, RouteTopicTransition, RouteKnowledgeOnly,
	RouteTechnicalGuidance, RouteClarificationSupport, RouteSocraticExploration,
	RouteSocraticFocus, RouteCognitiveChallenge, RouteCognitiveIntervention,
	RouteDesignGuidance, RouteAnalysisGuidance, RouteKnowledgeWithChallenge,
	RouteSupportiveScaffolding, RouteFoundationalBuilding, RouteBalancedGuidance,
	RouteMultiAgent, RouteSocraticExplanation, RouteDefault,
}

// RoutingDecision is the outcome of the decision tree for one turn.
type RoutingDecision struct {
	Route                       RouteTag        `json:"route"`
	Reason                      string          `json:"reason"`
	Confidence                  float64         `json:"confidence"`
	RuleApplied                 string          `json:"rule_applied"`
	ContextAgentOverride        bool            `json:"context_agent_override,omitempty"`
	CognitiveOffloadingDetected bool            `json:"cognitive_offloading_detected,omitempty"`
	Classification              *Classification `json:"classification,omitempty"`
}
