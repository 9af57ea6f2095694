package progress

import (
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

// Grading is a pure function of the response text and the current question's
// keywords and criteria. No LLM call is involved, so grades are deterministic
// and progression is robust to generator outages.

var reasoningWords = []string{
	"because", "therefore", "however", "although", "since", "consequently",
	"thus", "so that", "which means",
}

var detailWords = []string{
	"specifically", "particular", "detail", "precisely", "exactly",
	"for instance", "for example", "dimension",
}

var relevanceAnchors = []string{"design", "space", "building", "architecture", "project"}

var creativeIndicators = []string{
	"innovative", "unique", "creative", "novel", "unconventional",
	"experiment", "reimagine", "hybrid", "adaptive", "unexpected",
}

var innovationPatterns = []string{
	"what if", "instead of", "could we", "another way", "flip", "invert",
}

// phaseTechnicalLexicon scores technical_understanding per phase.
var phaseTechnicalLexicon = map[model.Phase][]string{
	model.PhaseIdeation: {
		"concept", "program", "site", "context", "precedent", "zoning",
		"massing", "parti", "typology", "community",
	},
	model.PhaseVisualization: {
		"plan", "section", "elevation", "axonometric", "scale", "proportion",
		"circulation", "massing", "diagram", "perspective",
	},
	model.PhaseMaterialization: {
		"material", "structure", "detail", "envelope", "foundation", "joint",
		"assembly", "thermal", "load", "specification", "code",
	},
}

// GradeResponse scores a response against a question on the five rubric
// dimensions, each clamped to [0,5].
func GradeResponse(response string, q model.SocraticQuestion) model.Grade {
	text := strings.ToLower(strings.TrimSpace(response))
	wordCount := len(strings.Fields(text))

	g := model.Grade{
		Completeness:           gradeCompleteness(text, wordCount, q.Keywords),
		Depth:                  gradeDepth(text, wordCount),
		Relevance:              gradeRelevance(text, wordCount),
		Innovation:             gradeInnovation(text, wordCount),
		TechnicalUnderstanding: gradeTechnical(text, wordCount, q.Phase),
	}
	g.Overall = clamp05((g.Completeness + g.Depth + g.Relevance + g.Innovation + g.TechnicalUnderstanding) / 5.0)

	g.Strengths, g.Weaknesses, g.Recommendations = feedback(g)
	return g
}

func gradeCompleteness(text string, wordCount int, keywords []string) float64 {
	var score float64
	if len(keywords) == 0 {
		score = 4.0
	} else {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(text, strings.ToLower(kw)) {
				hits++
			}
		}
		score = float64(hits) / float64(len(keywords)) * 5.0
	}
	if wordCount > 100 {
		score += 1.0
	} else if wordCount > 50 {
		score += 0.5
	}
	return clamp05(score)
}

func gradeDepth(text string, wordCount int) float64 {
	score := float64(wordCount) / 30.0 * 3.0
	if score > 4.0 {
		score = 4.0
	}

	score += bonusFor(text, reasoningWords, 0.5, 1.5)
	score += bonusFor(text, detailWords, 0.5, 1.0)

	if wordCount > 10 && score < 2.0 {
		score = 2.0
	}
	return clamp05(score)
}

func gradeRelevance(text string, wordCount int) float64 {
	hits := 0
	for _, term := range architecturalLexicon() {
		if strings.Contains(text, term) {
			hits++
		}
	}
	score := float64(hits) / 8.0 * 5.0
	if score > 5.0 {
		score = 5.0
	}

	if wordCount > 20 && containsAnyWord(text, relevanceAnchors) && score < 2.5 {
		score = 2.5
	}
	score += longResponseBonus(wordCount)
	return clamp05(score)
}

func gradeInnovation(text string, wordCount int) float64 {
	hits := 0
	for _, ind := range creativeIndicators {
		if strings.Contains(text, ind) {
			hits++
		}
	}
	score := float64(hits) / 4.0 * 5.0
	if score > 3.5 {
		score = 3.5
	}

	for _, p := range innovationPatterns {
		if strings.Contains(text, p) {
			score += 1.5
			break
		}
	}
	if wordCount > 20 && score < 2.0 {
		score = 2.0
	}
	return clamp05(score)
}

func gradeTechnical(text string, wordCount int, phase model.Phase) float64 {
	lexicon := phaseTechnicalLexicon[phase]
	if len(lexicon) == 0 {
		lexicon = phaseTechnicalLexicon[model.PhaseIdeation]
	}
	hits := 0
	for _, term := range lexicon {
		if strings.Contains(text, term) {
			hits++
		}
	}
	score := float64(hits) / float64(len(lexicon)) * 5.0
	score += longResponseBonus(wordCount)
	if wordCount > 15 && score < 2.5 {
		score = 2.5
	}
	return clamp05(score)
}

// feedback synthesizes strengths, weaknesses and recommendations from
// per-dimension thresholds.
func feedback(g model.Grade) (strengths, weaknesses, recommendations []string) {
	type dim struct {
		name  string
		score float64
		rec   string
	}
	dims := []dim{
		{"completeness", g.Completeness, "Address each part of the question directly, naming the factors you considered."},
		{"depth", g.Depth, "Explain the reasoning behind your choices — why this, and not an alternative?"},
		{"relevance", g.Relevance, "Tie your answer back to the design problem and its spatial consequences."},
		{"innovation", g.Innovation, "Try a what-if: change one constraint and see where the idea goes."},
		{"technical understanding", g.TechnicalUnderstanding, "Bring in the technical vocabulary of this phase — name the systems at play."},
	}
	for _, d := range dims {
		if d.score >= 4.0 {
			strengths = append(strengths, "strong "+d.name)
		}
		if d.score <= 2.0 {
			weaknesses = append(weaknesses, "limited "+d.name)
			recommendations = append(recommendations, d.rec)
		}
	}
	return strengths, weaknesses, recommendations
}

// ===== helpers =====

func bonusFor(text string, words []string, per, max float64) float64 {
	var b float64
	for _, w := range words {
		if strings.Contains(text, w) {
			b += per
			if b >= max {
				return max
			}
		}
	}
	return b
}

func longResponseBonus(wordCount int) float64 {
	switch {
	case wordCount > 100:
		return 1.0
	case wordCount > 60:
		return 0.5
	default:
		return 0
	}
}

func containsAnyWord(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func clamp05(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

// architecturalLexicon is the relevance lexicon shared across phases.
func architecturalLexicon() []string {
	return []string{
		"facade", "massing", "circulation", "program", "site", "context",
		"section", "plan", "elevation", "material", "structure", "light",
		"scale", "proportion", "threshold", "envelope", "space", "spatial",
		"courtyard", "precedent", "zoning", "accessibility",
	}
}
