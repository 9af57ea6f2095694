package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

var siteQuestion = model.SocraticQuestion{
	Step:         model.StepInitialContextReasoning,
	QuestionText: "What did you learn from the site?",
	Keywords:     []string{"site", "context"},
	Phase:        model.PhaseIdeation,
	QuestionID:   "ideation:initial_context_reasoning",
}

const richResponse = "The site sits on a corner between the park and a residential street, " +
	"so the context pulls the building in two directions. Because the community program " +
	"needs both quiet and active zones, my concept splits the massing into two wings " +
	"around a courtyard. For example, the quiet wing faces the residential side while " +
	"the active wing opens toward the park, which means circulation happens along the " +
	"courtyard edge where the two meet."

func TestGradingIsDeterministic(t *testing.T) {
	a := GradeResponse(richResponse, siteQuestion)
	b := GradeResponse(richResponse, siteQuestion)
	assert.Equal(t, a, b)
}

func TestGradesStayInBounds(t *testing.T) {
	responses := []string{
		"",
		"ok",
		"maybe",
		richResponse,
		richResponse + " " + richResponse + " " + richResponse,
	}
	for _, r := range responses {
		g := GradeResponse(r, siteQuestion)
		for name, v := range map[string]float64{
			"completeness": g.Completeness,
			"depth":        g.Depth,
			"relevance":    g.Relevance,
			"innovation":   g.Innovation,
			"technical":    g.TechnicalUnderstanding,
			"overall":      g.Overall,
		} {
			assert.GreaterOrEqual(t, v, 0.0, name)
			assert.LessOrEqual(t, v, 5.0, name)
		}
	}
}

func TestRichResponseOutscoresShallowOne(t *testing.T) {
	rich := GradeResponse(richResponse, siteQuestion)
	shallow := GradeResponse("ok", siteQuestion)
	assert.Greater(t, rich.Overall, shallow.Overall)
	assert.Greater(t, rich.Completeness, shallow.Completeness)
	assert.Greater(t, rich.Depth, shallow.Depth)
}

func TestKeywordCoverageDrivesCompleteness(t *testing.T) {
	hit := GradeResponse("The site and its context shaped the idea.", siteQuestion)
	miss := GradeResponse("I just like the way it looks.", siteQuestion)
	assert.Greater(t, hit.Completeness, miss.Completeness)
}

func TestNoKeywordsGetsBaselineCompleteness(t *testing.T) {
	q := siteQuestion
	q.Keywords = nil
	g := GradeResponse("A short but honest answer about nothing in particular here.", q)
	assert.GreaterOrEqual(t, g.Completeness, 4.0)
}

func TestFeedbackThresholds(t *testing.T) {
	weak := GradeResponse("ok", siteQuestion)
	assert.NotEmpty(t, weak.Weaknesses)
	assert.NotEmpty(t, weak.Recommendations)
	assert.Empty(t, weak.Strengths)

	rich := GradeResponse(richResponse, siteQuestion)
	assert.NotEmpty(t, rich.Strengths)
}

func TestInnovationPatternBonus(t *testing.T) {
	flat := GradeResponse("The plan has two wings and a courtyard between them always.", siteQuestion)
	whatIf := GradeResponse("What if instead of two wings the courtyard itself became the room?", siteQuestion)
	assert.Greater(t, whatIf.Innovation, flat.Innovation)
}
