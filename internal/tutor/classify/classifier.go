package classify

import (
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
)

// defaultHistoryWindow bounds how many recent user turns feed the history
// pass when no window is configured.
const defaultHistoryWindow = 5

// Classifier derives a per-turn Classification from the latest user message
// and recent history. It is fully deterministic and never fails: ambiguous
// input falls back to the default classification.
type Classifier struct {
	window int
}

func NewClassifier() *Classifier {
	return &Classifier{window: defaultHistoryWindow}
}

// NewClassifierWithWindow sets how many recent user turns the history pass
// examines. Non-positive values fall back to the default.
func NewClassifierWithWindow(window int) *Classifier {
	if window <= 0 {
		window = defaultHistoryWindow
	}
	return &Classifier{window: window}
}

// Classify inspects the user turn against the transcript so far (which does
// not yet include this turn).
func (c *Classifier) Classify(userText string, history []model.Message) *model.Classification {
	text := normalize(userText)
	if text == "" {
		return model.DefaultClassification(userText)
	}

	words := strings.Fields(text)
	userTurns := countRole(history, model.RoleUser)

	cls := &model.Classification{
		UserInput:           userText,
		IsTechnicalQuestion: containsAny(text, technicalKeywords),
		IsFeedbackRequest:   containsAny(text, feedbackKeywords),
		IsExampleRequest:    containsAny(text, exampleKeywords) && strings.Contains(text, "?"),
		IsConfusion:         containsAny(text, confusionKeywords),
	}

	cls.InteractionType = interactionType(text, cls, history)
	cls.ConfidenceLevel = confidenceLevel(text)
	cls.ShowsOverconfidence = cls.ConfidenceLevel == model.ConfidenceOverconfident
	cls.EngagementLevel = engagementLevel(text, words)
	cls.UnderstandingLevel = understandingLevel(text)
	cls.RepetitiveTopics = repetitiveTopics(text, history, c.window)
	cls.OffloadingType = offloadingType(cls, userTurns)

	logx.Debug().
		Str("interaction_type", string(cls.InteractionType)).
		Str("confidence", string(cls.ConfidenceLevel)).
		Str("engagement", string(cls.EngagementLevel)).
		Str("understanding", string(cls.UnderstandingLevel)).
		Str("offloading", string(cls.OffloadingType)).
		Msg("turn classified")

	return cls
}

// interactionType applies the first-match-wins keyword cascade.
func interactionType(text string, cls *model.Classification, history []model.Message) model.InteractionType {
	switch {
	case cls.IsFeedbackRequest:
		return model.InteractionFeedbackRequest
	case cls.IsTechnicalQuestion:
		return model.InteractionTechnicalQuestion
	case cls.IsExampleRequest:
		return model.InteractionExampleRequest
	case cls.IsConfusion:
		return model.InteractionConfusionExpression
	case assistantAskedQuestion(history) && readsAsAnswer(text):
		return model.InteractionQuestionResponse
	case containsAny(text, knowledgeSeekingKeywords):
		return model.InteractionKnowledgeSeeking
	case containsAny(text, designGuidanceKeywords):
		return model.InteractionDesignGuidance
	case containsAny(text, designDecisionKeywords):
		return model.InteractionDesignDecision
	default:
		return model.InteractionGeneralStatement
	}
}

func confidenceLevel(text string) model.ConfidenceLevel {
	if containsAny(text, overconfidentKeywords) {
		return model.ConfidenceOverconfident
	}
	if containsAny(text, uncertainKeywords) {
		return model.ConfidenceUncertain
	}
	return model.ConfidenceConfident
}

func engagementLevel(text string, words []string) model.Level {
	if len(words) == 1 && singleWordAffirmations[strings.Trim(words[0], ".,!?")] {
		return model.LevelLow
	}
	switch {
	case len(words) <= 5:
		return model.LevelLow
	case len(words) <= 10:
		return model.LevelMedium
	default:
		return model.LevelHigh
	}
}

func understandingLevel(text string) model.Level {
	n := 0
	for _, term := range architecturalTerms {
		if strings.Contains(text, term) {
			n++
			if n >= 2 {
				return model.LevelHigh
			}
		}
	}
	if n >= 1 {
		return model.LevelMedium
	}
	return model.LevelLow
}

// offloadingType evaluates the three cognitive-offloading patterns in order.
func offloadingType(cls *model.Classification, userTurns int) model.OffloadingType {
	if cls.IsFeedbackRequest && userTurns < 3 {
		return model.OffloadingPrematureAnswer
	}
	if cls.ShowsOverconfidence && cls.EngagementLevel == model.LevelLow {
		return model.OffloadingSuperficialConfidence
	}
	if cls.RepetitiveTopics &&
		cls.InteractionType != model.InteractionQuestionResponse &&
		cls.InteractionType != model.InteractionKnowledgeSeeking {
		return model.OffloadingRepetitiveDependency
	}
	return model.OffloadingNone
}

// repetitiveTopics fires when the same design aspect appears in at least two
// of the user's recent turns while the current turn names no new aspect.
func repetitiveTopics(text string, history []model.Message, window int) bool {
	recent := recentUserTexts(history, window)
	if len(recent) < 2 {
		return false
	}

	currentAspects := map[string]bool{}
	for aspect, kws := range aspectKeywords {
		if containsAny(text, kws) {
			currentAspects[aspect] = true
		}
	}

	counts := map[string]int{}
	for _, prev := range recent {
		for aspect, kws := range aspectKeywords {
			if containsAny(prev, kws) {
				counts[aspect]++
			}
		}
	}

	for aspect, n := range counts {
		if n < 2 {
			continue
		}
		// repeated aspect; a shift to a different aspect this turn defeats it
		shifted := false
		for cur := range currentAspects {
			if cur != aspect {
				shifted = true
			}
		}
		if !shifted {
			return true
		}
	}
	return false
}

// ===== helpers =====

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func countRole(history []model.Message, role string) int {
	n := 0
	for _, m := range history {
		if m.Role == role {
			n++
		}
	}
	return n
}

func recentUserTexts(history []model.Message, max int) []string {
	var out []string
	for i := len(history) - 1; i >= 0 && len(out) < max; i-- {
		if history[i].Role == model.RoleUser {
			out = append(out, normalize(history[i].Content))
		}
	}
	return out
}

// assistantAskedQuestion reports whether the last assistant turn ended with a
// question mark.
func assistantAskedQuestion(history []model.Message) bool {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleAssistant {
			return strings.HasSuffix(strings.TrimSpace(history[i].Content), "?")
		}
	}
	return false
}

// readsAsAnswer is a loose check that the turn looks like a reply rather than
// a fresh question or request.
func readsAsAnswer(text string) bool {
	if strings.HasSuffix(text, "?") {
		return false
	}
	return len(strings.Fields(text)) >= 3
}
