package nodes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/atelier-mentor/server/internal/tutor/agents"
	"github.com/atelier-mentor/server/internal/tutor/classify"
	"github.com/atelier-mentor/server/internal/tutor/model"
	"github.com/atelier-mentor/server/internal/tutor/progress"
	"github.com/atelier-mentor/server/internal/tutor/routing"
	"github.com/atelier-mentor/server/internal/tutor/synth"
	logx "github.com/atelier-mentor/server/pkg/logger"
)

// Node names used when wiring the graph.
const (
	NodeInputConverter = "input_converter"
	NodeClassifier     = "classifier"
	NodeRouter         = "router"
	NodeProgress       = "phase_progress"
	NodeOpening        = "opening"
	NodeAgentExecutor  = "agent_executor"
	NodeSynthesizer    = "synthesizer"
)

// NewInputConverterPreHandler seeds the per-turn state before anything runs.
func NewInputConverterPreHandler() func(context.Context, model.TurnInput, *model.AppState) (model.TurnInput, error) {
	return func(ctx context.Context, in model.TurnInput, s *model.AppState) (model.TurnInput, error) {
		s.SessionID = in.SessionID
		s.UserText = in.UserText
		s.Attachments = in.Attachments
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputConverterNode loads or creates the session, appends the user turn
// to the transcript and stores the session in graph state.
func NewInputConverterNode(repo model.SessionRepository) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.TurnInput) (model.TurnInput, error) {
		now := time.Now().UTC()

		session, err := repo.LoadState(ctx, input.SessionID)
		if err != nil {
			return input, fmt.Errorf("load session state: %w", err)
		}
		if session == nil {
			session = model.NewConversationState(input.SessionID, input.DesignBrief, now)
			logx.Info().Str("session_id", input.SessionID).Msg("new tutoring session")
		} else if session.DesignBrief == "" && input.DesignBrief != "" {
			session.DesignBrief = input.DesignBrief
			session.AppendMessage(model.RoleBrief, input.DesignBrief, now)
		}

		if strings.TrimSpace(input.UserText) != "" {
			session.AppendMessage(model.RoleUser, input.UserText, now)
		}
		if len(input.Attachments) > 0 {
			session.VisualArtifacts[session.CurrentPhase] += len(input.Attachments)
		}

		err = compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			state.Session = session
			return nil
		})
		if err != nil {
			return input, fmt.Errorf("failed to access state: %w", err)
		}
		return input, nil
	})
}

// NewClassifierNode classifies the user turn against the transcript. The
// input converter has already appended the turn being classified, so it is
// trimmed back off: the classifier's history contract excludes the current
// turn.
func NewClassifierNode(classifier *classify.Classifier) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.TurnInput) (*model.Classification, error) {
		var history []model.Message
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			if state.Session == nil {
				return fmt.Errorf("missing session in state")
			}
			history = historyBeforeTurn(state.Session.Messages, input.UserText)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return classifier.Classify(input.UserText, history), nil
	})
}

// NewClassifierPostHandler persists the classification on state and session.
func NewClassifierPostHandler() func(context.Context, *model.Classification, *model.AppState) (*model.Classification, error) {
	return func(ctx context.Context, out *model.Classification, state *model.AppState) (*model.Classification, error) {
		state.Classification = out
		if state.Session != nil {
			state.Session.ConversationContext = out
		}
		logx.Debug().
			Str("session_id", state.SessionID).
			Str("interaction_type", string(out.InteractionType)).
			Str("engagement", string(out.EngagementLevel)).
			Str("offloading", string(out.OffloadingType)).
			Msg("turn classified")
		return out, nil
	}
}

// NewRouterNode runs the routing decision tree.
func NewRouterNode(tree *routing.Tree) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, cls *model.Classification) (*model.RoutingDecision, error) {
		var in routing.Input
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			if state.Session == nil {
				return fmt.Errorf("missing session in state")
			}
			in = routing.Input{
				Classification: cls,
				State:          state.Session,
				UserTurns:      len(state.Session.UserMessages()),
				AssistantTurns: countAssistant(state.Session),
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return tree.Decide(in), nil
	})
}

// NewRouterPostHandler saves the routing decision into graph state.
func NewRouterPostHandler() func(context.Context, *model.RoutingDecision, *model.AppState) (*model.RoutingDecision, error) {
	return func(ctx context.Context, out *model.RoutingDecision, state *model.AppState) (*model.RoutingDecision, error) {
		state.Routing = out
		logx.Debug().
			Str("session_id", state.SessionID).
			Str("route", string(out.Route)).
			Str("rule", out.RuleApplied).
			Float64("confidence", out.Confidence).
			Msg("route decided")
		return out, nil
	}
}

// NewProgressNode grades the turn and advances the phase state machine. It
// runs on every route so rubric state never depends on which agents fire.
func NewProgressNode(engine *progress.Engine) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision *model.RoutingDecision) (*model.RoutingDecision, error) {
		err := compose.ProcessState(ctx, func(sctx context.Context, state *model.AppState) error {
			if state.Session == nil {
				return fmt.Errorf("missing session in state")
			}
			if strings.TrimSpace(state.UserText) == "" {
				return nil
			}
			state.Progress = engine.ProcessUserMessage(sctx, state.Session, state.UserText, time.Now().UTC())
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return decision, nil
	})
}

// NewOpeningCondition routes the first meaningful turns to the scripted
// opening instead of the agent roster.
func NewOpeningCondition() func(context.Context, *model.RoutingDecision) (string, error) {
	return func(ctx context.Context, decision *model.RoutingDecision) (string, error) {
		if decision != nil && decision.Route == model.RouteProgressiveOpening {
			return NodeOpening, nil
		}
		return NodeAgentExecutor, nil
	}
}

// NewOpeningNode emits the progressive opening: acknowledge the brief, then
// pose the first Socratic question. No agents run.
func NewOpeningNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision *model.RoutingDecision) ([]model.AgentResult, error) {
		var text string
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			buildingType := agents.BuildingType(state.Session)
			question := "What matters most to you about this project, and why?"
			if state.Progress != nil && state.Progress.NextQuestion != "" {
				question = state.Progress.NextQuestion
			}
			text = fmt.Sprintf(
				"A %s is a rich brief to work with. Before we get into solutions, let's establish where you're starting from. %s",
				buildingType, question,
			)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return []model.AgentResult{{
			Agent:        model.AgentSocratic,
			OK:           true,
			ResponseText: text,
			ResponseType: "progressive_opening",
		}}, nil
	})
}

// NewAgentExecutorNode runs the analysis agent, then the canonical sequence
// for the route, threading each agent's output to the next.
func NewAgentExecutorNode(roster map[model.AgentName]agents.Agent) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, decision *model.RoutingDecision) ([]model.AgentResult, error) {
		var agentCtx agents.Context
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			agentCtx = agents.Context{
				State:          state.Session,
				Classification: state.Classification,
				Routing:        decision,
				UserText:       state.UserText,
				Attachments:    state.Attachments,
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		userTurns := 0
		if agentCtx.State != nil {
			userTurns = len(agentCtx.State.UserMessages())
		}
		sequence := synth.AgentSequence(decision, userTurns)

		// analysis always runs first as context, even off-sequence
		names := sequence
		if !containsAgent(sequence, model.AgentAnalysis) {
			names = append([]model.AgentName{model.AgentAnalysis}, sequence...)
		}

		var results []model.AgentResult
		for _, name := range names {
			agent, ok := roster[name]
			if !ok {
				logx.Warn().Str("agent", string(name)).Msg("agent missing from roster; skipped")
				continue
			}
			agentCtx.Upstream = results
			r := agent.Process(ctx, agentCtx)
			if !r.OK {
				logx.Warn().
					Str("agent", string(name)).
					Str("reason", r.Reason).
					Msg("agent failed; continuing sequence")
			}
			results = append(results, r)
		}
		return results, nil
	})
}

// NewAgentExecutorPostHandler records the agent results on graph state.
func NewAgentExecutorPostHandler() func(context.Context, []model.AgentResult, *model.AppState) ([]model.AgentResult, error) {
	return func(ctx context.Context, out []model.AgentResult, state *model.AppState) ([]model.AgentResult, error) {
		state.AgentResults = out
		return out, nil
	}
}

// NewSynthesizerNode shapes the reply and assembles turn metadata.
func NewSynthesizerNode(s *synth.Synthesizer) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, results []model.AgentResult) (*model.TurnResult, error) {
		var in synth.Input
		var prog *model.ProgressResult
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			in = synth.Input{
				Routing:        state.Routing,
				Classification: state.Classification,
				Results:        results,
				State:          state.Session,
				UserText:       state.UserText,
			}
			prog = state.Progress
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		text, meta := s.Synthesize(ctx, in)
		text = mergeProgress(text, meta, prog)

		return &model.TurnResult{ResponseText: text, Metadata: meta}, nil
	})
}

// mergeProgress folds the phase engine's outcome into the reply and metadata:
// transition messages are prepended, nudges appended, and the progression
// fields copied over.
func mergeProgress(text string, meta *model.TurnMetadata, prog *model.ProgressResult) string {
	if prog == nil {
		return text
	}
	meta.CurrentPhase = prog.CurrentPhase
	meta.NextSocraticStep = prog.CurrentStep
	meta.CompletionPct = prog.CompletionPercent
	meta.Grade = prog.Grade
	meta.ChecklistDelta = prog.ChecklistDelta
	meta.PhaseTransition = prog.PhaseTransition
	meta.PreviousPhase = prog.PreviousPhase
	meta.TransitionMessage = prog.TransitionMessage
	meta.SessionComplete = prog.SessionComplete

	if meta.PhaseAnalysis != nil {
		meta.PhaseAnalysis.CompletionPct = prog.CompletionPercent
		meta.PhaseAnalysis.NextSocraticStep = prog.CurrentStep
	}

	if prog.TransitionMessage != "" {
		text = prog.TransitionMessage + "\n\n" + text
	}
	if prog.Nudge != "" {
		text = text + "\n\n" + prog.Nudge
	}
	// quality describes the emitted text, not the pre-merge draft
	meta.Quality = synth.QualityOf(text)
	return text
}

// NewSynthesizerPostHandler appends the assistant reply to the transcript,
// credits assistant-visible checklist evidence, folds in the turn's LLM cost
// and persists the session.
func NewSynthesizerPostHandler(repo model.SessionRepository, meters ...*MeteredGenerator) func(context.Context, *model.TurnResult, *model.AppState) (*model.TurnResult, error) {
	return func(ctx context.Context, out *model.TurnResult, state *model.AppState) (*model.TurnResult, error) {
		now := time.Now().UTC()

		for _, m := range meters {
			if m != nil {
				state.TotalCostUSD += m.Drain()
			}
		}
		if out.Metadata != nil {
			out.Metadata.TotalCostUSD = state.TotalCostUSD
		}

		if state.Session != nil {
			state.Session.AppendMessage(model.RoleAssistant, out.ResponseText, now)
			evidenceID := fmt.Sprintf("msg-%d", len(state.Session.Messages)-1)
			progress.UpdateChecklist(state.Session, out.ResponseText, evidenceID, now)

			if err := repo.SaveState(ctx, state.Session); err != nil {
				logx.Error().
					Str("session_id", state.SessionID).
					Err(err).
					Msg("Error saving session state after turn")
			}
		}

		logx.Debug().
			Str("session_id", state.SessionID).
			Str("response_type", responseType(out)).
			Float64("total_cost_usd", state.TotalCostUSD).
			Msg("turn synthesized")
		return out, nil
	}
}

func responseType(out *model.TurnResult) string {
	if out == nil || out.Metadata == nil {
		return ""
	}
	return string(out.Metadata.ResponseType)
}

// historyBeforeTurn drops the trailing transcript entry when it is the user
// turn currently being processed.
func historyBeforeTurn(msgs []model.Message, userText string) []model.Message {
	n := len(msgs)
	if n > 0 && msgs[n-1].Role == model.RoleUser && msgs[n-1].Content == userText {
		return msgs[:n-1]
	}
	return msgs
}

func countAssistant(s *model.ConversationState) int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == model.RoleAssistant {
			n++
		}
	}
	return n
}

func containsAgent(seq []model.AgentName, name model.AgentName) bool {
	for _, n := range seq {
		if n == name {
			return true
		}
	}
	return false
}
