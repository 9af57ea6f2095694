package synth

import (
	"github.com/atelier-mentor/server/internal/tutor/model"
)

// earlyTurnCutoff separates the probe-only treatment of an example request
// from the sourced one.
const earlyTurnCutoff = 2

// AgentSequence returns the canonical agent execution order for a route.
// The analysis agent additionally runs before every sequence as a context
// provider; it only appears here where its output shapes the reply.
func AgentSequence(routing *model.RoutingDecision, userTurns int) []model.AgentName {
	route := model.RouteBalancedGuidance
	if routing != nil {
		route = routing.Route
	}
	switch route {
	case model.RouteCognitiveChallenge, model.RouteCognitiveIntervention:
		return []model.AgentName{model.AgentCognitive, model.AgentSocratic}
	case model.RouteTechnicalGuidance, model.RouteKnowledgeOnly, model.RouteKnowledgeWithChallenge:
		return []model.AgentName{model.AgentDomain, model.AgentSocratic}
	case model.RouteAnalysisGuidance:
		return []model.AgentName{model.AgentAnalysis, model.AgentSocratic}
	case model.RouteBalancedGuidance, model.RouteDesignGuidance, model.RouteMultiAgent:
		return []model.AgentName{model.AgentDomain, model.AgentSocratic, model.AgentCognitive}
	case model.RouteClarificationSupport, model.RouteSupportiveScaffolding,
		model.RouteProgressiveOpening, model.RouteFoundationalBuilding,
		model.RouteSocraticExploration, model.RouteSocraticFocus:
		// includes the early example request, which gets a probe only
		return []model.AgentName{model.AgentSocratic}
	case model.RouteSocraticExplanation, model.RouteTopicTransition:
		return []model.AgentName{model.AgentDomain, model.AgentSocratic}
	default:
		return []model.AgentName{model.AgentDomain, model.AgentSocratic}
	}
}

// NormalizeResponseType collapses the route into one of the five response
// families the outside world sees.
func NormalizeResponseType(route model.RouteTag) model.ResponseType {
	switch route {
	case model.RouteCognitiveChallenge, model.RouteCognitiveIntervention:
		return model.ResponseCognitiveIntervention
	case model.RouteTechnicalGuidance, model.RouteKnowledgeOnly, model.RouteKnowledgeWithChallenge:
		return model.ResponseKnowledgeSupport
	case model.RouteBalancedGuidance, model.RouteDesignGuidance, model.RouteMultiAgent:
		return model.ResponseSynthesis
	default:
		return model.ResponseSocraticPrimary
	}
}

func isExampleTurn(routing *model.RoutingDecision) bool {
	return routing != nil && routing.Classification != nil && routing.Classification.IsExampleRequest
}

func isConfusionTurn(routing *model.RoutingDecision) bool {
	if routing == nil {
		return false
	}
	if routing.Route == model.RouteClarificationSupport {
		return true
	}
	return routing.Classification != nil && routing.Classification.IsConfusion
}
