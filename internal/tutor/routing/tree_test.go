package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

func newState() *model.ConversationState {
	return model.NewConversationState("s1", "Design a community center next to a park.", time.Now())
}

func TestFirstTurnGetsProgressiveOpening(t *testing.T) {
	tree := NewTree()
	d := tree.Decide(Input{
		Classification: &model.Classification{
			InteractionType: model.InteractionGeneralStatement,
			UserInput:       "I want to start on the community center.",
		},
		State:     newState(),
		UserTurns: 1,
	})
	assert.Equal(t, model.RouteProgressiveOpening, d.Route)
	assert.Equal(t, "progressive_opening", d.RuleApplied)
}

func TestFirstTurnExampleRequestProbesInstead(t *testing.T) {
	tree := NewTree()
	d := tree.Decide(Input{
		Classification: &model.Classification{
			InteractionType:  model.InteractionExampleRequest,
			IsExampleRequest: true,
			UserInput:        "Can you show me examples of community centers?",
		},
		State:     newState(),
		UserTurns: 1,
	})
	assert.Equal(t, model.RouteSocraticExploration, d.Route)
	assert.Equal(t, "example_request", d.RuleApplied)
}

func TestLaterExampleRequestGetsKnowledge(t *testing.T) {
	tree := NewTree()
	d := tree.Decide(Input{
		Classification: &model.Classification{
			InteractionType:  model.InteractionExampleRequest,
			IsExampleRequest: true,
			UserInput:        "Can you show me examples of courtyard community centers?",
		},
		State:          newState(),
		UserTurns:      4,
		AssistantTurns: 3,
	})
	assert.Equal(t, model.RouteKnowledgeOnly, d.Route)
}

func TestExampleRequestWithGuidancePhrasingFallsThrough(t *testing.T) {
	tree := NewTree()
	d := tree.Decide(Input{
		Classification: &model.Classification{
			InteractionType:  model.InteractionDesignGuidance,
			IsExampleRequest: true,
			UserInput:        "How can I incorporate precedent examples into my design?",
		},
		State:          newState(),
		UserTurns:      4,
		AssistantTurns: 3,
	})
	assert.Equal(t, model.RouteDesignGuidance, d.Route)
}

func TestOverconfidenceGetsChallengeNotIntervention(t *testing.T) {
	tree := NewTree()
	d := tree.Decide(Input{
		Classification: &model.Classification{
			InteractionType:     model.InteractionGeneralStatement,
			ShowsOverconfidence: true,
			EngagementLevel:     model.LevelLow,
			OffloadingType:      model.OffloadingSuperficialConfidence,
			UserInput:           "Obviously this is the perfect solution.",
		},
		State:          newState(),
		UserTurns:      4,
		AssistantTurns: 3,
	})
	assert.Equal(t, model.RouteCognitiveChallenge, d.Route)
	assert.True(t, d.CognitiveOffloadingDetected)
}

func TestPrematureAnswerSeekingGetsIntervention(t *testing.T) {
	tree := NewTree()
	d := tree.Decide(Input{
		Classification: &model.Classification{
			InteractionType:   model.InteractionFeedbackRequest,
			IsFeedbackRequest: true,
			OffloadingType:    model.OffloadingPrematureAnswer,
			UserInput:         "Just tell me if my idea is good.",
		},
		State:          newState(),
		UserTurns:      2,
		AssistantTurns: 1,
	})
	assert.Equal(t, model.RouteCognitiveIntervention, d.Route)
	assert.True(t, d.CognitiveOffloadingDetected)
}

func TestQuestionResponseContinuesThread(t *testing.T) {
	tree := NewTree()
	d := tree.Decide(Input{
		Classification: &model.Classification{
			InteractionType: model.InteractionQuestionResponse,
			UserInput:       "The site slopes toward the park so I want terraces.",
		},
		State:          newState(),
		UserTurns:      3,
		AssistantTurns: 2,
	})
	assert.Equal(t, model.RouteSocraticExploration, d.Route)
	assert.Equal(t, "thread_continuation", d.RuleApplied)
}

func TestTiebreakOrder(t *testing.T) {
	tests := []struct {
		name string
		cls  *model.Classification
		want model.RouteTag
	}{
		{
			name: "confusion beats technical when no technical question",
			cls: &model.Classification{
				InteractionType: model.InteractionConfusionExpression,
				IsConfusion:     true,
				UserInput:       "I don't understand massing at all.",
			},
			want: model.RouteClarificationSupport,
		},
		{
			name: "technical question wins over confusion",
			cls: &model.Classification{
				InteractionType:     model.InteractionTechnicalQuestion,
				IsConfusion:         true,
				IsTechnicalQuestion: true,
				UserInput:           "I'm confused, what are the egress requirements?",
			},
			want: model.RouteTechnicalGuidance,
		},
		{
			name: "feedback request without offloading gets analysis guidance",
			cls: &model.Classification{
				InteractionType:   model.InteractionFeedbackRequest,
				IsFeedbackRequest: true,
				UserInput:         "What do you think of the revised plan?",
			},
			want: model.RouteAnalysisGuidance,
		},
		{
			name: "design decision deflects to socratic focus",
			cls: &model.Classification{
				InteractionType: model.InteractionDesignDecision,
				UserInput:       "Should I use timber or concrete?",
			},
			want: model.RouteSocraticFocus,
		},
		{
			name: "knowledge seeking falls back to knowledge only",
			cls: &model.Classification{
				InteractionType:    model.InteractionKnowledgeSeeking,
				UnderstandingLevel: model.LevelMedium,
				UserInput:          "What is a parti?",
			},
			want: model.RouteKnowledgeOnly,
		},
	}

	tree := NewTree()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tree.Decide(Input{
				Classification: tt.cls,
				State:          newState(),
				UserTurns:      4,
				AssistantTurns: 3,
			})
			assert.Equal(t, tt.want, d.Route)
		})
	}
}

func TestFallbackIsBalancedGuidance(t *testing.T) {
	tree := NewTree()
	d := tree.Decide(Input{
		Classification: &model.Classification{
			InteractionType:    model.InteractionGeneralStatement,
			UnderstandingLevel: model.LevelMedium,
			UserInput:          "I sketched some variations over the weekend.",
		},
		State:          newState(),
		UserTurns:      5,
		AssistantTurns: 4,
	})
	assert.Equal(t, model.RouteBalancedGuidance, d.Route)
	assert.Equal(t, "fallback", d.RuleApplied)
	assert.InDelta(t, 0.5, d.Confidence, 0.001)
}

func TestNilClassificationNeverPanics(t *testing.T) {
	tree := NewTree()
	d := tree.Decide(Input{State: newState(), UserTurns: 4, AssistantTurns: 3})
	require.NotNil(t, d)
	require.NotNil(t, d.Classification)
	assert.NotEmpty(t, d.Route)
}

func TestDecisionCarriesClassification(t *testing.T) {
	tree := NewTree()
	cls := &model.Classification{
		InteractionType: model.InteractionQuestionResponse,
		UserInput:       "Terracing keeps level access from the corner.",
	}
	d := tree.Decide(Input{Classification: cls, State: newState(), UserTurns: 3, AssistantTurns: 2})
	assert.Same(t, cls, d.Classification)
}
