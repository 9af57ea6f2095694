package agents

import (
	"context"
	"strings"

	"github.com/atelier-mentor/server/internal/tutor/model"
)

// Context bundles what an agent may look at: session state, the turn's
// classification and routing, and the outputs of agents that ran before it
// in the canonical sequence.
type Context struct {
	State          *model.ConversationState
	Classification *model.Classification
	Routing        *model.RoutingDecision
	UserText       string
	Attachments    []string
	Upstream       []model.AgentResult
}

// Agent is the narrow protocol every specialist implements. Failures are
// returned as not-OK results, never as panics or errors: the synthesizer
// branches on presence, not on exceptions.
type Agent interface {
	Name() model.AgentName
	Process(ctx context.Context, in Context) model.AgentResult
}

// UpstreamResult returns the result of a named upstream agent, if present
// and usable.
func (c Context) UpstreamResult(name model.AgentName) (model.AgentResult, bool) {
	for _, r := range c.Upstream {
		if r.Agent == name && r.OK && strings.TrimSpace(r.ResponseText) != "" {
			return r, true
		}
	}
	return model.AgentResult{}, false
}

// knownBuildingTypes are scanned against the design brief, most specific
// first, to contextualize challenges and searches.
var knownBuildingTypes = []string{
	"community center", "cultural center", "visitor center", "health center",
	"library", "museum", "school", "kindergarten", "housing", "apartment",
	"pavilion", "theater", "gallery", "market", "church", "mosque", "office",
	"hospital", "hotel", "stadium",
}

// BuildingType extracts the project's building type from the brief.
func BuildingType(state *model.ConversationState) string {
	if state == nil {
		return "project"
	}
	brief := strings.ToLower(state.DesignBrief)
	for _, bt := range knownBuildingTypes {
		if strings.Contains(brief, bt) {
			return bt
		}
	}
	return "project"
}

// recentTranscript renders the last n transcript turns for prompt context.
func recentTranscript(state *model.ConversationState, n int) string {
	if state == nil || len(state.Messages) == 0 {
		return ""
	}
	msgs := state.Messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	var b strings.Builder
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
