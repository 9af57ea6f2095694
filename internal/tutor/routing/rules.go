package routing

import (
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

// guidancePhrases disqualify an example request from the pure knowledge-only
// path: the student is asking how to apply, not just what exists.
var guidancePhrases = []string{"how can i", "how to", "incorporate"}

func defaultRules() []Rule {
	return []Rule{
		{Name: "progressive_opening", Apply: ruleProgressiveOpening},
		{Name: "thread_continuation", Apply: ruleThreadContinuation},
		{Name: "offloading_intervention", Apply: ruleOffloadingIntervention},
		{Name: "example_request", Apply: ruleExampleRequest},
		{Name: "design_decision", Apply: ruleDesignDecision},
		{Name: "design_guidance", Apply: ruleDesignGuidance},
		{Name: "tiebreak_confusion", Apply: ruleTiebreakConfusion},
		{Name: "tiebreak_technical", Apply: ruleTiebreakTechnical},
		{Name: "tiebreak_overconfident", Apply: ruleTiebreakOverconfident},
		{Name: "tiebreak_feedback", Apply: ruleTiebreakFeedback},
		{Name: "fallback_low_understanding", Apply: ruleFallbackLowUnderstanding},
		{Name: "fallback_overconfidence", Apply: ruleFallbackOverconfidence},
		{Name: "fallback_knowledge_seeking", Apply: ruleFallbackKnowledgeSeeking},
	}
}

// Rule 1: brand-new conversations get the progressive opening.
func ruleProgressiveOpening(in Input) *model.RoutingDecision {
	if in.UserTurns <= 1 && !in.Classification.IsExampleRequest &&
		!in.Classification.IsTechnicalQuestion {
		return &model.RoutingDecision{
			Route:      model.RouteProgressiveOpening,
			Reason:     "first user turn of the session",
			Confidence: 0.95,
		}
	}
	if in.UserTurns == 2 && in.AssistantTurns == 0 && in.State != nil &&
		strings.TrimSpace(in.Classification.UserInput) != strings.TrimSpace(in.State.DesignBrief) {
		return &model.RoutingDecision{
			Route:      model.RouteProgressiveOpening,
			Reason:     "second user turn before any assistant reply",
			Confidence: 0.9,
		}
	}
	return nil
}

// Rule 2: an answer to the assistant's open question continues the thread.
func ruleThreadContinuation(in Input) *model.RoutingDecision {
	if in.Classification.InteractionType == model.InteractionQuestionResponse {
		return &model.RoutingDecision{
			Route:      model.RouteSocraticExploration,
			Reason:     "ongoing thread: user is answering the previous question",
			Confidence: 0.85,
		}
	}
	return nil
}

// Offloading override: deflect answer-seeking and dependency patterns into an
// explicit intervention. Superficial confidence stays with the
// overconfidence tie-breaker (cognitive_challenge).
func ruleOffloadingIntervention(in Input) *model.RoutingDecision {
	switch in.Classification.OffloadingType {
	case model.OffloadingPrematureAnswer, model.OffloadingRepetitiveDependency:
		return &model.RoutingDecision{
			Route:                       model.RouteCognitiveIntervention,
			Reason:                      "cognitive offloading detected: " + string(in.Classification.OffloadingType),
			Confidence:                  0.9,
			CognitiveOffloadingDetected: true,
		}
	}
	return nil
}

// Rule 3: pure example requests. Early turns probe before showing precedents.
func ruleExampleRequest(in Input) *model.RoutingDecision {
	cls := in.Classification
	if !cls.IsExampleRequest {
		return nil
	}
	text := strings.ToLower(cls.UserInput)
	for _, p := range guidancePhrases {
		if strings.Contains(text, p) {
			return nil
		}
	}
	if in.UserTurns <= 2 {
		return &model.RoutingDecision{
			Route:      model.RouteSocraticExploration,
			Reason:     "example request before scope is established; probing first",
			Confidence: 0.85,
		}
	}
	return &model.RoutingDecision{
		Route:      model.RouteKnowledgeOnly,
		Reason:     "pure example request",
		Confidence: 0.9,
	}
}

// Rule 4: design-decision requests get refocused as questions.
func ruleDesignDecision(in Input) *model.RoutingDecision {
	if in.Classification.InteractionType == model.InteractionDesignDecision {
		return &model.RoutingDecision{
			Route:      model.RouteSocraticFocus,
			Reason:     "decision request deflected to socratic focus",
			Confidence: 0.85,
		}
	}
	return nil
}

// Rule 5: design-guidance requests pair socratic primary with domain support.
func ruleDesignGuidance(in Input) *model.RoutingDecision {
	if in.Classification.InteractionType == model.InteractionDesignGuidance {
		return &model.RoutingDecision{
			Route:      model.RouteDesignGuidance,
			Reason:     "guidance request: socratic primary with domain support",
			Confidence: 0.85,
		}
	}
	return nil
}

// Rule 6 tie-breakers, deterministic order.

func ruleTiebreakConfusion(in Input) *model.RoutingDecision {
	cls := in.Classification
	if cls.IsConfusion && !cls.IsTechnicalQuestion {
		return &model.RoutingDecision{
			Route:      model.RouteClarificationSupport,
			Reason:     "confusion without a technical question",
			Confidence: 0.8,
		}
	}
	return nil
}

func ruleTiebreakTechnical(in Input) *model.RoutingDecision {
	if in.Classification.IsTechnicalQuestion {
		return &model.RoutingDecision{
			Route:      model.RouteTechnicalGuidance,
			Reason:     "technical question",
			Confidence: 0.85,
		}
	}
	return nil
}

func ruleTiebreakOverconfident(in Input) *model.RoutingDecision {
	cls := in.Classification
	if cls.ShowsOverconfidence && cls.EngagementLevel == model.LevelLow {
		return &model.RoutingDecision{
			Route:                       model.RouteCognitiveChallenge,
			Reason:                      "overconfident with low engagement",
			Confidence:                  0.85,
			CognitiveOffloadingDetected: cls.OffloadingType == model.OffloadingSuperficialConfidence,
		}
	}
	return nil
}

func ruleTiebreakFeedback(in Input) *model.RoutingDecision {
	if in.Classification.IsFeedbackRequest {
		return &model.RoutingDecision{
			Route:      model.RouteAnalysisGuidance,
			Reason:     "feedback request",
			Confidence: 0.8,
		}
	}
	return nil
}

// Rule 7 classification-driven fallbacks.

func ruleFallbackLowUnderstanding(in Input) *model.RoutingDecision {
	cls := in.Classification
	if cls.IsConfusion || cls.UnderstandingLevel == model.LevelLow {
		return &model.RoutingDecision{
			Route:      model.RouteSocraticFocus,
			Reason:     "confusion or low understanding",
			Confidence: 0.7,
		}
	}
	return nil
}

func ruleFallbackOverconfidence(in Input) *model.RoutingDecision {
	if in.Classification.ShowsOverconfidence {
		return &model.RoutingDecision{
			Route:      model.RouteCognitiveChallenge,
			Reason:     "overconfidence",
			Confidence: 0.7,
		}
	}
	return nil
}

func ruleFallbackKnowledgeSeeking(in Input) *model.RoutingDecision {
	if in.Classification.InteractionType == model.InteractionKnowledgeSeeking {
		return &model.RoutingDecision{
			Route:      model.RouteKnowledgeOnly,
			Reason:     "definition request",
			Confidence: 0.75,
		}
	}
	return nil
}
