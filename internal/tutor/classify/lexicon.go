package classify

// Keyword families driving each classification axis. Matching is
// case-insensitive substring matching over the normalized user turn.

var feedbackKeywords = []string{
	"feedback", "what do you think", "is this good", "is this right",
	"review my", "thoughts on my", "how is my", "rate my", "evaluate my",
	"am i on the right track",
}

var technicalKeywords = []string{
	"what are the", "requirements for", "codes", "standards", "guidelines",
}

var exampleKeywords = []string{
	"example", "precedent", "case study", "case studies", "project", "reference",
}

var confusionKeywords = []string{
	"confused", "confusing", "don't understand", "do not understand",
	"unclear", "i'm lost", "i am lost", "makes no sense", "don't get",
}

var knowledgeSeekingKeywords = []string{
	"what is", "what are", "definition", "define", "meaning of",
}

var designGuidanceKeywords = []string{
	"how can i", "how do i", "how might", "how could i", "how should i",
	"approaches to", "incorporate",
}

var designDecisionKeywords = []string{
	"should i", "which is better", "which one is better", "recommend",
	"suggest", "what would you choose", "or should",
}

var overconfidentKeywords = []string{
	"obviously", "clearly", "definitely", "perfect", "best", "optimal",
	"this is the",
}

var uncertainKeywords = []string{
	"maybe", "might", "i guess", "perhaps", "not sure",
}

// singleWordAffirmations force engagement to low regardless of anything else.
var singleWordAffirmations = map[string]bool{
	"ok": true, "okay": true, "sure": true, "yes": true, "yeah": true,
	"yep": true, "fine": true, "right": true, "cool": true, "thanks": true,
}

// aspectKeywords map a design aspect name to its trigger words. A shift to a
// new aspect defeats the repetitive-dependency offloading signal.
var aspectKeywords = map[string][]string{
	"circulation": {"circulation", "flow", "movement", "wayfinding"},
	"lighting":    {"lighting", "daylight", "light", "shadow", "illumination"},
	"structure":   {"structure", "structural", "column", "beam", "cantilever", "load"},
	"materials":   {"material", "materials", "concrete", "timber", "steel", "brick", "glass"},
	"program":     {"program", "programming", "function", "use", "activity", "zoning"},
	"context":     {"context", "site", "surrounding", "neighborhood", "climate", "urban"},
}

// architecturalTerms is the fixed lexicon scored for understanding_level.
var architecturalTerms = []string{
	"facade", "massing", "parti", "fenestration", "circulation", "threshold",
	"daylighting", "egress", "setback", "datum", "tectonic", "vernacular",
	"adjacency", "program", "section", "elevation", "axonometric", "plan",
	"envelope", "courtyard", "atrium", "mezzanine", "cantilever",
	"load-bearing", "span", "grid", "module", "zoning", "site", "context",
	"sustainability", "passive", "thermal", "acoustic", "spatial",
	"proportion", "scale", "hierarchy", "axis", "typology", "precedent",
	"accessibility", "structure", "structural",
}
