package model

// InteractionType labels how the latest user turn reads.
type InteractionType string

const (
	InteractionFeedbackRequest     InteractionType = "feedback_request"
	InteractionTechnicalQuestion   InteractionType = "technical_question"
	InteractionExampleRequest      InteractionType = "example_request"
	InteractionConfusionExpression InteractionType = "confusion_expression"
	InteractionQuestionResponse    InteractionType = "question_response"
	InteractionKnowledgeSeeking    InteractionType = "knowledge_seeking"
	InteractionDesignGuidance      InteractionType = "design_guidance"
	InteractionDesignDecision      InteractionType = "design_decision"
	InteractionGeneralStatement    InteractionType = "general_statement"
)

// InteractionTypes enumerates every value the classifier may emit.
var InteractionTypes = []InteractionType{
	InteractionFeedbackRequest,
	InteractionTechnicalQuestion,
	InteractionExampleRequest,
	InteractionConfusionExpression,
	InteractionQuestionResponse,
	InteractionKnowledgeSeeking,
	InteractionDesignGuidance,
	InteractionDesignDecision,
	InteractionGeneralStatement,
}

// Level is a coarse low/medium/high scale used for engagement and understanding.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// ConfidenceLevel captures how sure of themselves the student sounds.
type ConfidenceLevel string

const (
	ConfidenceUncertain     ConfidenceLevel = "uncertain"
	ConfidenceConfident     ConfidenceLevel = "confident"
	ConfidenceOverconfident ConfidenceLevel = "overconfident"
)

// OffloadingType names a detected cognitive-offloading pattern.
type OffloadingType string

const (
	OffloadingNone                  OffloadingType = ""
	OffloadingPrematureAnswer       OffloadingType = "premature_answer_seeking"
	OffloadingSuperficialConfidence OffloadingType = "superficial_confidence"
	OffloadingRepetitiveDependency  OffloadingType = "repetitive_dependency"
)

// Classification is the per-turn derived snapshot consumed read-only
// downstream of the classifier. Only the latest one is persisted.
type Classification struct {
	InteractionType     InteractionType `json:"interaction_type"`
	UnderstandingLevel  Level           `json:"understanding_level"`
	ConfidenceLevel     ConfidenceLevel `json:"confidence_level"`
	EngagementLevel     Level           `json:"engagement_level"`
	IsTechnicalQuestion bool            `json:"is_technical_question"`
	IsFeedbackRequest   bool            `json:"is_feedback_request"`
	IsExampleRequest    bool            `json:"is_example_request"`
	IsConfusion         bool            `json:"is_confusion"`
	ShowsOverconfidence bool            `json:"shows_overconfidence"`
	OffloadingType      OffloadingType  `json:"offloading_type,omitempty"`
	RepetitiveTopics    bool            `json:"repetitive_topics"`
	UserInput           string          `json:"user_input"`
}

// OffloadingDetected reports whether any offloading pattern fired.
func (c *Classification) OffloadingDetected() bool {
	return c != nil && c.OffloadingType != OffloadingNone
}

// DefaultClassification is the fallback for empty or ambiguous input.
func DefaultClassification(userInput string) *Classification {
	return &Classification{
		InteractionType:    InteractionGeneralStatement,
		UnderstandingLevel: LevelMedium,
		ConfidenceLevel:    ConfidenceConfident,
		EngagementLevel:    LevelMedium,
		UserInput:          userInput,
	}
}
