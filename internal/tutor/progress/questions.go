package progress

import (
	"context"
	"fmt"
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
	"github.com/cloudwego/eino/schema"
)

// questionTemplate is one deterministic entry of the question bank.
type questionTemplate struct {
	text     string
	keywords []string
	criteria []string
}

// questionBankTemplates holds the deterministic per-phase, per-step question
// templates used when no generator is configured or its output is unusable.
var questionBankTemplates = map[model.Phase]map[model.SocraticStep]questionTemplate{
	model.PhaseIdeation: {
		model.StepInitialContextReasoning: {
			text:     "What aspects of the site and its context feel most important for your project, and why?",
			keywords: []string{"site", "context", "community", "climate", "culture"},
			criteria: []string{"names concrete site factors", "connects context to intent"},
		},
		model.StepKnowledgeSynthesisTrigger: {
			text:     "Which precedents or principles are shaping your early thinking, and what are you taking from them?",
			keywords: []string{"precedent", "principle", "reference", "concept", "idea"},
			criteria: []string{"cites influences", "explains what transfers"},
		},
		model.StepSocraticQuestioning: {
			text:     "How does your program organize the relationships between the main activities you imagine?",
			keywords: []string{"program", "activity", "relationship", "zoning", "adjacency"},
			criteria: []string{"articulates programmatic structure"},
		},
		model.StepMetacognitivePrompt: {
			text:     "Looking back at your concept so far, which assumption are you least certain about?",
			keywords: []string{"assumption", "uncertain", "question", "revisit", "doubt"},
			criteria: []string{"reflects on own reasoning"},
		},
		model.StepContextualExploration: {
			text:     "How would your concept change if the site or community around it were different?",
			keywords: []string{"site", "community", "change", "adapt"},
			criteria: []string{"explores contextual variation"},
		},
		model.StepDeeperInquiry: {
			text:     "What tension or conflict in your concept deserves more attention before you move on?",
			keywords: []string{"tension", "conflict", "tradeoff", "priority"},
			criteria: []string{"identifies unresolved tensions"},
		},
		model.StepSynthesisCheck: {
			text:     "Can you summarize your design idea in a few sentences that connect context, program, and intent?",
			keywords: []string{"summary", "concept", "intent", "program", "context"},
			criteria: []string{"coherent synthesis"},
		},
		model.StepReadinessAssessment: {
			text:     "What would you need to see or decide before you feel ready to start visualizing this design?",
			keywords: []string{"ready", "decide", "next", "visualize"},
			criteria: []string{"self-assesses readiness"},
		},
	},
	model.PhaseVisualization: {
		model.StepInitialContextReasoning: {
			text:     "How are you translating your concept into plans, sections, or massing studies?",
			keywords: []string{"plan", "section", "massing", "sketch", "diagram"},
			criteria: []string{"describes representational moves"},
		},
		model.StepKnowledgeSynthesisTrigger: {
			text:     "Which spatial qualities matter most in your drawings, and how are you testing them?",
			keywords: []string{"space", "light", "scale", "proportion", "quality"},
			criteria: []string{"links qualities to representations"},
		},
		model.StepSocraticQuestioning: {
			text:     "How does circulation work in your current scheme, and where does it break down?",
			keywords: []string{"circulation", "entry", "movement", "sequence", "flow"},
			criteria: []string{"traces movement through the scheme"},
		},
		model.StepMetacognitivePrompt: {
			text:     "Which drawing has taught you the most so far, and what did it reveal that surprised you?",
			keywords: []string{"drawing", "reveal", "learn", "surprise", "discover"},
			criteria: []string{"reflects on representation as inquiry"},
		},
		model.StepContextualExploration: {
			text:     "How do your visualizations respond to the site conditions you identified earlier?",
			keywords: []string{"site", "orientation", "view", "topography"},
			criteria: []string{"connects drawings to context"},
		},
		model.StepDeeperInquiry: {
			text:     "Where in your scheme is the section doing work the plan cannot show?",
			keywords: []string{"section", "height", "volume", "level"},
			criteria: []string{"thinks three-dimensionally"},
		},
		model.StepSynthesisCheck: {
			text:     "If you had to present one drawing to explain the whole project, which would it be and why?",
			keywords: []string{"present", "explain", "drawing", "key"},
			criteria: []string{"prioritizes representations"},
		},
		model.StepReadinessAssessment: {
			text:     "What remains unresolved in your drawings before you could start detailing materials and structure?",
			keywords: []string{"unresolved", "detail", "material", "structure"},
			criteria: []string{"identifies gaps before materialization"},
		},
	},
	model.PhaseMaterialization: {
		model.StepInitialContextReasoning: {
			text:     "What materials and structural approach are you considering, and how do they serve your concept?",
			keywords: []string{"material", "structure", "concrete", "timber", "steel", "system"},
			criteria: []string{"links materials to intent"},
		},
		model.StepKnowledgeSynthesisTrigger: {
			text:     "Which technical constraints — codes, climate, budget — are most likely to reshape your design?",
			keywords: []string{"code", "climate", "budget", "constraint", "regulation"},
			criteria: []string{"anticipates technical pressures"},
		},
		model.StepSocraticQuestioning: {
			text:     "How does your structural system meet the ground, and what does that joint say about the building?",
			keywords: []string{"foundation", "joint", "detail", "ground", "connection"},
			criteria: []string{"reasons at the detail scale"},
		},
		model.StepMetacognitivePrompt: {
			text:     "If a builder challenged your material choices tomorrow, which decision would you defend hardest?",
			keywords: []string{"defend", "choice", "decision", "justify"},
			criteria: []string{"owns material reasoning"},
		},
		model.StepContextualExploration: {
			text:     "How will your envelope perform through the seasons on this site?",
			keywords: []string{"envelope", "thermal", "season", "performance", "energy"},
			criteria: []string{"considers environmental performance"},
		},
		model.StepDeeperInquiry: {
			text:     "Where does assembly sequence constrain your design, and how might you detail around it?",
			keywords: []string{"assembly", "sequence", "construction", "tolerance"},
			criteria: []string{"thinks about constructability"},
		},
		model.StepSynthesisCheck: {
			text:     "How do your material, structural, and environmental decisions reinforce one idea?",
			keywords: []string{"reinforce", "idea", "coherence", "integrate"},
			criteria: []string{"integrates technical decisions"},
		},
		model.StepReadinessAssessment: {
			text:     "What would you document first if this project went to construction next month?",
			keywords: []string{"document", "construction", "drawing", "specification"},
			criteria: []string{"prioritizes documentation"},
		},
	},
}

// phaseFallbackQuestions are the hard-coded last resort per phase.
var phaseFallbackQuestions = map[model.Phase]string{
	model.PhaseIdeation:        "What aspect of your concept would you like to explore further?",
	model.PhaseVisualization:   "Which drawing or model would help you test your ideas next?",
	model.PhaseMaterialization: "Which material or structural decision should we examine next?",
}

// QuestionBank resolves the current Socratic question for a phase and step.
// When a generator is configured it drafts a contextualized variant; on any
// failure or unparseable output the deterministic template fires, and on a
// template miss the hard-coded phase fallback.
type QuestionBank struct {
	generator model.TextGenerator
	modelName string
}

func NewQuestionBank(generator model.TextGenerator, modelName string) *QuestionBank {
	return &QuestionBank{generator: generator, modelName: modelName}
}

// Question resolves the question for phase×step.
func (qb *QuestionBank) Question(ctx context.Context, state *model.ConversationState, phase model.Phase, step model.SocraticStep) model.SocraticQuestion {
	tpl, ok := questionBankTemplates[phase][step]
	if !ok {
		return model.SocraticQuestion{
			Step:         step,
			QuestionText: phaseFallbackQuestions[phase],
			Phase:        phase,
			QuestionID:   questionID(phase, step),
		}
	}

	q := model.SocraticQuestion{
		Step:               step,
		QuestionText:       tpl.text,
		Keywords:           tpl.keywords,
		AssessmentCriteria: tpl.criteria,
		Phase:              phase,
		QuestionID:         questionID(phase, step),
	}

	if qb.generator != nil {
		if text, err := qb.draft(ctx, state, q); err == nil && usableQuestion(text) {
			q.QuestionText = text
		} else if err != nil {
			logx.Warn().Err(err).
				Str("phase", string(phase)).
				Str("step", string(step)).
				Msg("question draft failed; using template")
		}
	}

	return q
}

// draft asks the generator for a contextualized variant of the template.
func (qb *QuestionBank) draft(ctx context.Context, state *model.ConversationState, q model.SocraticQuestion) (string, error) {
	brief := ""
	if state != nil {
		brief = state.DesignBrief
	}
	prompt := fmt.Sprintf(
		"You are a Socratic architecture tutor. Rephrase the following question so it references the student's project. "+
			"Reply with the question only, one or two sentences, ending with a question mark.\n"+
			"Project brief: %s\nQuestion: %s", brief, q.QuestionText)

	out, err := qb.generator.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", fmt.Errorf("empty generator output")
	}
	return strings.TrimSpace(out.Content), nil
}

// usableQuestion guards against unparseable generator output.
func usableQuestion(text string) bool {
	if text == "" || len(text) > 600 {
		return false
	}
	return strings.HasSuffix(strings.TrimSpace(text), "?")
}

func questionID(phase model.Phase, step model.SocraticStep) string {
	return string(phase) + ":" + string(step)
}
