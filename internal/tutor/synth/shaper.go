package synth

import (
	"fmt"
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

// Headers the shaping contracts emit. They double as idempotence markers:
// text already carrying its header is passed through untouched.
const (
	keyPointsHeader = "Key points:"
	clarifyHeader   = "Let's clarify together:"
	examplesHeader  = "Examples:"
	synthesisHeader = "Synthesis:"
)

// defaultCognitivePrompts are the three labeled bullets every intervention
// ends up with when agent output cannot supply them.
var defaultCognitivePrompts = [3]string{
	"**Try a constraint change**: pick one fixed assumption in your design and invert it.",
	"**Shift perspective**: re-read your last decision through a different user's eyes.",
	"**Explore an alternative**: describe one genuinely different scheme that meets the same brief.",
}

const cognitiveCloser = "Which one will you try first?"

// defaultKnowledgeBullets top up the key-point list when agent output runs
// thinner than the three bullets the contract requires.
var defaultKnowledgeBullets = []string{
	"- Tie each point back to your site and the people using the building.",
	"- Test the idea in plan and section before committing to it.",
	"- Name the trade-off a choice makes, not only its benefit.",
}

const synthesisCloser = "Next: test one concrete change and tell me what you notice. What will you try first?"

// defaultQuestions supply a type-appropriate question when shaping finds none.
var defaultQuestions = map[model.ResponseType]string{
	model.ResponseSocraticPrimary:  "What is the thinking behind that, and what would change your mind?",
	model.ResponseKnowledgeSupport: "How would you apply this to your own design?",
	model.ResponseSynthesis:        "Which of these directions feels most alive to you, and why?",
}

// shapeInput is everything a shaping contract may consult.
type shapeInput struct {
	routing   *model.RoutingDecision
	results   map[model.AgentName]model.AgentResult
	userTurns int
	sources   []model.Source
}

func (s shapeInput) text(name model.AgentName) string {
	if r, ok := s.results[name]; ok && r.OK {
		return strings.TrimSpace(r.ResponseText)
	}
	return ""
}

// shape applies the deterministic per-type style contract. It is idempotent:
// re-shaping already-shaped text returns it unchanged.
func shape(respType model.ResponseType, in shapeInput) string {
	switch respType {
	case model.ResponseKnowledgeSupport:
		if isExampleTurn(in.routing) && len(in.sources) > 0 {
			return shapeExampleLater(in)
		}
		return shapeKnowledgeSupport(in)
	case model.ResponseCognitiveIntervention:
		return shapeCognitiveIntervention(in)
	case model.ResponseSynthesis:
		return shapeSynthesis(in)
	default:
		return shapeSocraticPrimary(in)
	}
}

// shapeSocraticPrimary emits the tutor's questions, with the confusion
// variant wrapping at most two clarifying questions under a header and the
// early example request reduced to a single probe.
func shapeSocraticPrimary(in shapeInput) string {
	socratic := in.text(model.AgentSocratic)
	if isConfusionTurn(in.routing) {
		if strings.HasPrefix(socratic, clarifyHeader) {
			return socratic
		}
		qs := questionsIn(socratic)
		if len(qs) > 2 {
			qs = qs[:2]
		}
		// the contract wants two clarifying questions
		for len(qs) < 2 {
			q := defaultQuestions[model.ResponseSocraticPrimary]
			if len(qs) == 1 && qs[0] == q {
				q = "Which part feels least clear right now?"
			}
			qs = append(qs, q)
		}
		return clarifyHeader + "\n\n" + strings.Join(qs, "\n\n")
	}
	if isExampleTurn(in.routing) && in.userTurns <= earlyTurnCutoff {
		// probe only, never a list
		return firstQuestion(socratic, defaultQuestions[model.ResponseSocraticPrimary])
	}
	if socratic == "" {
		return defaultQuestions[model.ResponseSocraticPrimary]
	}
	return socratic
}

// shapeKnowledgeSupport renders "Key points:" bullets from the domain text
// plus one application question from the tutor. The list is floored at three
// bullets, topped up from the tutor's statements and then the defaults.
func shapeKnowledgeSupport(in shapeInput) string {
	domain := in.text(model.AgentDomain)
	if strings.HasPrefix(domain, keyPointsHeader) {
		return domain
	}
	if domain == "" {
		return shapeSocraticPrimary(in)
	}
	bullets := bulletsFromSentences(domain, 5)
	if len(bullets) < 3 {
		for _, s := range splitSentences(in.text(model.AgentSocratic)) {
			if strings.HasSuffix(s, "?") {
				continue
			}
			bullets = append(bullets, "- "+s)
			if len(bullets) == 3 {
				break
			}
		}
	}
	bullets = topUpBullets(bullets, 3)
	apply := firstQuestion(in.text(model.AgentSocratic), defaultQuestions[model.ResponseKnowledgeSupport])
	return keyPointsHeader + "\n" + strings.Join(bullets, "\n") + "\n\n" + apply
}

// topUpBullets pads the list to min entries from the default key points.
func topUpBullets(bullets []string, min int) []string {
	for _, d := range defaultKnowledgeBullets {
		if len(bullets) >= min {
			break
		}
		dup := false
		for _, b := range bullets {
			if b == d {
				dup = true
				break
			}
		}
		if !dup {
			bullets = append(bullets, d)
		}
	}
	return bullets
}

// shapeExampleLater renders up to three numbered precedent lines with links.
func shapeExampleLater(in shapeInput) string {
	domain := in.text(model.AgentDomain)
	if strings.HasPrefix(domain, examplesHeader) {
		return domain
	}
	var lines []string
	for i, src := range in.sources {
		if i == 3 {
			break
		}
		brief := firstSentence(src.Snippet)
		if brief == "" {
			brief = "a relevant precedent for your project."
		}
		lines = append(lines, fmt.Sprintf("%d. **[%s](%s)**: %s", i+1, src.Title, src.URL, brief))
	}
	apply := firstQuestion(in.text(model.AgentSocratic),
		"Which of these comes closest to your intent, and what would you do differently?")
	return examplesHeader + "\n" + strings.Join(lines, "\n") + "\n\n" + apply
}

// shapeCognitiveIntervention frames the challenge and emits exactly three
// labeled bullets plus the fixed closer.
func shapeCognitiveIntervention(in shapeInput) string {
	cognitive := in.text(model.AgentCognitive)
	if strings.Contains(cognitive, cognitiveCloser) {
		return cognitive
	}
	framing := firstSentence(cognitive)
	if framing == "" {
		framing = "Let's slow down and stretch the thinking before settling on an answer."
	}

	bullets := defaultCognitivePrompts
	if challenge, ok := in.results[model.AgentCognitive]; ok && challenge.OK {
		if q := firstQuestion(challenge.ResponseText, ""); q != "" && q != framing {
			switch challenge.ChallengeType {
			case "constraint":
				bullets[0] = "**Try a constraint change**: " + q
			case "perspective":
				bullets[1] = "**Shift perspective**: " + q
			case "alternative", "metacognitive":
				bullets[2] = "**Explore an alternative**: " + q
			}
		}
	}

	var b strings.Builder
	b.WriteString(framing)
	b.WriteString("\n\n")
	for _, bullet := range bullets {
		b.WriteString("- ")
		b.WriteString(bullet)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(cognitiveCloser)
	return b.String()
}

// shapeSynthesis blends the three agents into labeled Insight / Direction /
// Watch bullets under a fixed header.
func shapeSynthesis(in shapeInput) string {
	domain := in.text(model.AgentDomain)
	socratic := in.text(model.AgentSocratic)
	cognitive := in.text(model.AgentCognitive)
	if strings.HasPrefix(domain, synthesisHeader) {
		return domain
	}
	if strings.HasPrefix(socratic, synthesisHeader) {
		return socratic
	}

	var bullets []string
	if s := firstSentence(domain); s != "" {
		bullets = append(bullets, "- Insight: "+s)
	}
	if q := firstQuestion(socratic, ""); q != "" {
		bullets = append(bullets, "- Direction: "+q)
	}
	if s := firstSentence(cognitive); s != "" {
		bullets = append(bullets, "- Watch: "+s)
	}
	if len(bullets) == 0 {
		return shapeSocraticPrimary(in)
	}
	return synthesisHeader + "\n" + strings.Join(bullets, "\n") + "\n\n" + synthesisCloser
}

// assertShape runs the non-fatal corrective checks after shaping.
func assertShape(respType model.ResponseType, text string, userTurns int, routing *model.RoutingDecision) string {
	// knowledge support must carry at least three bullets
	if respType == model.ResponseKnowledgeSupport {
		if countBullets(text) == 0 {
			bullets := bulletsFromSentences(text, 4)
			if len(bullets) > 0 {
				text = keyPointsHeader + "\n" + strings.Join(bullets, "\n")
			}
		}
		for _, d := range defaultKnowledgeBullets {
			if countBullets(text) >= 3 {
				break
			}
			if strings.Contains(text, d) {
				continue
			}
			text = insertAfterLastBullet(text, d)
		}
	}

	// interventions must carry the three prompts
	if respType == model.ResponseCognitiveIntervention && !strings.Contains(text, "- ") {
		var b strings.Builder
		b.WriteString(text)
		b.WriteString("\n\n")
		for _, bullet := range defaultCognitivePrompts {
			b.WriteString("- ")
			b.WriteString(bullet)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(cognitiveCloser)
		text = b.String()
	}

	// question-bearing types must ask something; same guard covers the
	// study-mode rule for the first meaningful turn on non-technical routes.
	needsQuestion := respType == model.ResponseSocraticPrimary ||
		respType == model.ResponseSynthesis ||
		respType == model.ResponseKnowledgeSupport
	if !needsQuestion && userTurns <= 1 && !isTechnicalRoute(routing) {
		needsQuestion = true
	}
	if needsQuestion && !hasQuestion(text) {
		q := defaultQuestions[respType]
		if q == "" {
			q = defaultQuestions[model.ResponseSocraticPrimary]
		}
		text = strings.TrimRight(text, "\n ") + "\n\n" + q
	}
	return text
}

func isTechnicalRoute(routing *model.RoutingDecision) bool {
	return routing != nil && routing.Route == model.RouteTechnicalGuidance
}
