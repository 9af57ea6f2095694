package routing

import (
	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
)

// Input bundles everything a routing rule may look at.
type Input struct {
	Classification *model.Classification
	State          *model.ConversationState
	// UserTurns counts user messages including the current turn.
	UserTurns      int
	AssistantTurns int
}

// Rule is a pure predicate over classification + state. It returns nil when
// it does not fire; the tree is the ordered composition of rules, first
// non-nil wins. This keeps the ordering auditable and testable.
type Rule struct {
	Name  string
	Apply func(in Input) *model.RoutingDecision
}

// Tree is the deterministic routing cascade.
type Tree struct {
	rules []Rule
}

func NewTree() *Tree {
	return &Tree{rules: defaultRules()}
}

// Decide evaluates the cascade. It never fails: when no rule matches the
// balanced-guidance fallback is emitted (ClassificationAmbiguity is not an
// error).
func (t *Tree) Decide(in Input) *model.RoutingDecision {
	if in.Classification == nil {
		in.Classification = model.DefaultClassification("")
	}

	for _, r := range t.rules {
		if d := r.Apply(in); d != nil {
			d.RuleApplied = r.Name
			d.Classification = in.Classification
			t.checkConsistency(in, d)
			logx.Debug().
				Str("route", string(d.Route)).
				Str("rule", r.Name).
				Float64("confidence", d.Confidence).
				Str("reason", d.Reason).
				Msg("route selected")
			return d
		}
	}

	d := &model.RoutingDecision{
		Route:          model.RouteBalancedGuidance,
		Reason:         "no rule matched; defaulting to balanced guidance",
		Confidence:     0.5,
		RuleApplied:    "fallback",
		Classification: in.Classification,
	}
	logx.Debug().Str("route", string(d.Route)).Msg("route selected by fallback")
	return d
}

// checkConsistency logs policy overrides but never vetoes a decision.
func (t *Tree) checkConsistency(in Input, d *model.RoutingDecision) {
	cls := in.Classification
	if cls.IsConfusion && d.Route == model.RouteTechnicalGuidance {
		logx.Warn().
			Str("route", string(d.Route)).
			Msg("technical request overrides confusion by policy")
	}
	if cls.IsExampleRequest && d.Route == model.RouteSocraticExploration && in.UserTurns <= 2 {
		logx.Debug().Msg("early example request deferred to probing")
	}
}
