package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

func msg(role, content string) model.Message {
	return model.Message{Role: role, Content: content, Timestamp: time.Now()}
}

func TestInteractionTypeCascade(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		history []model.Message
		want    model.InteractionType
	}{
		{
			name:  "feedback request wins first",
			input: "Can you give me feedback on my concept?",
			want:  model.InteractionFeedbackRequest,
		},
		{
			name:  "technical question",
			input: "What are the requirements for fire exits in an assembly building?",
			want:  model.InteractionTechnicalQuestion,
		},
		{
			name:  "example request needs a question mark",
			input: "Can you show me some precedent buildings with courtyards?",
			want:  model.InteractionExampleRequest,
		},
		{
			name:  "example words without question mark are not a request",
			input: "I looked at a precedent yesterday and liked the courtyard.",
			want:  model.InteractionGeneralStatement,
		},
		{
			name:  "confusion expression",
			input: "I'm confused about how massing relates to this.",
			want:  model.InteractionConfusionExpression,
		},
		{
			name:  "answer to an open assistant question",
			input: "The slope falls toward the south so I want to terrace the entry.",
			history: []model.Message{
				msg(model.RoleUser, "Here is my idea."),
				msg(model.RoleAssistant, "How does the site topography shape your entry sequence?"),
			},
			want: model.InteractionQuestionResponse,
		},
		{
			name:  "knowledge seeking",
			input: "What is a parti diagram exactly",
			want:  model.InteractionKnowledgeSeeking,
		},
		{
			name:  "design guidance",
			input: "How can I make the entry sequence feel more welcoming",
			want:  model.InteractionDesignGuidance,
		},
		{
			name:  "design decision",
			input: "Should I put the hall on the north side or the south side",
			want:  model.InteractionDesignDecision,
		},
		{
			name:  "general statement fallback",
			input: "I sketched a bit more over the weekend.",
			want:  model.InteractionGeneralStatement,
		},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.input, tt.history)
			assert.Equal(t, tt.want, got.InteractionType)
		})
	}
}

func TestEngagementLevel(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name  string
		input string
		want  model.Level
	}{
		{"single-word affirmation is low", "okay", model.LevelLow},
		{"short reply is low", "The courtyard works.", model.LevelLow},
		{"medium reply", "I want the courtyard to connect the park and plaza.", model.LevelMedium},
		{"long reply is high", "I want the courtyard to connect the park and the street so visitors can drift through without committing to entering the building.", model.LevelHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.input, nil)
			assert.Equal(t, tt.want, got.EngagementLevel)
		})
	}
}

func TestUnderstandingLevel(t *testing.T) {
	c := NewClassifier()

	assert.Equal(t, model.LevelHigh,
		c.Classify("The massing steps down to respect the courtyard scale.", nil).UnderstandingLevel)
	assert.Equal(t, model.LevelMedium,
		c.Classify("I think the courtyard could be bigger.", nil).UnderstandingLevel)
	assert.Equal(t, model.LevelLow,
		c.Classify("I like green roofs and big windows.", nil).UnderstandingLevel)
}

func TestOffloadingDetection(t *testing.T) {
	c := NewClassifier()

	t.Run("premature answer seeking in early turns", func(t *testing.T) {
		got := c.Classify("Can you give me feedback on my idea?", []model.Message{
			msg(model.RoleUser, "Here is my idea."),
		})
		assert.Equal(t, model.OffloadingPrematureAnswer, got.OffloadingType)
		assert.True(t, got.OffloadingDetected())
	})

	t.Run("feedback after enough turns is not premature", func(t *testing.T) {
		history := []model.Message{
			msg(model.RoleUser, "turn one"),
			msg(model.RoleUser, "turn two"),
			msg(model.RoleUser, "turn three"),
		}
		got := c.Classify("Can you give me feedback on my revised plan?", history)
		assert.Equal(t, model.OffloadingNone, got.OffloadingType)
	})

	t.Run("superficial confidence", func(t *testing.T) {
		got := c.Classify("Obviously the best.", nil)
		assert.True(t, got.ShowsOverconfidence)
		assert.Equal(t, model.LevelLow, got.EngagementLevel)
		assert.Equal(t, model.OffloadingSuperficialConfidence, got.OffloadingType)
	})

	t.Run("repetitive dependency on a single aspect", func(t *testing.T) {
		history := []model.Message{
			msg(model.RoleUser, "I keep worrying about the lighting in the hall."),
			msg(model.RoleAssistant, "Let's look at it together."),
			msg(model.RoleUser, "The daylight just feels flat to me."),
		}
		got := c.Classify("The lighting still bothers me.", history)
		assert.True(t, got.RepetitiveTopics)
		assert.Equal(t, model.OffloadingRepetitiveDependency, got.OffloadingType)
	})

	t.Run("shifting to a new aspect defeats repetition", func(t *testing.T) {
		history := []model.Message{
			msg(model.RoleUser, "I keep worrying about the lighting in the hall."),
			msg(model.RoleUser, "The daylight just feels flat to me."),
		}
		got := c.Classify("Now I am looking at the structure of the roof instead.", history)
		assert.False(t, got.RepetitiveTopics)
	})
}

func TestRepetitionWindowBoundsHistory(t *testing.T) {
	history := []model.Message{
		msg(model.RoleUser, "The lighting in the hall feels flat."),
		msg(model.RoleAssistant, "Where does it read worst."),
		msg(model.RoleUser, "How does the daylight get in?"),
		msg(model.RoleAssistant, "Think in section."),
		msg(model.RoleUser, "Where should the entry go?"),
		msg(model.RoleAssistant, "You tell me."),
		msg(model.RoleUser, "Is the roof height okay?"),
	}
	input := "Help me with the lighting again."

	assert.True(t, NewClassifier().Classify(input, history).RepetitiveTopics)
	assert.True(t, NewClassifierWithWindow(0).Classify(input, history).RepetitiveTopics)

	// a window of two only sees the entry and roof turns
	assert.False(t, NewClassifierWithWindow(2).Classify(input, history).RepetitiveTopics)
}

func TestEmptyInputFallsBackToDefault(t *testing.T) {
	c := NewClassifier()
	got := c.Classify("   ", nil)
	assert.Equal(t, model.InteractionGeneralStatement, got.InteractionType)
	assert.Equal(t, model.LevelMedium, got.EngagementLevel)
	assert.Equal(t, model.ConfidenceConfident, got.ConfidenceLevel)
}

func TestClassifierNeverDetectsMultipleOffloadingTypes(t *testing.T) {
	// feedback plus overconfidence: premature answer seeking takes precedence
	c := NewClassifier()
	got := c.Classify("Rate my perfect plan", nil)
	assert.Equal(t, model.OffloadingPrematureAnswer, got.OffloadingType)
}
