package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/atelier-mentor/server/internal/tutor/agents"
	"github.com/atelier-mentor/server/internal/tutor/classify"
	"github.com/atelier-mentor/server/internal/tutor/graph/nodes"
	"github.com/atelier-mentor/server/internal/tutor/graph/observers"
	"github.com/atelier-mentor/server/internal/tutor/knowledge"
	"github.com/atelier-mentor/server/internal/tutor/model"
	"github.com/atelier-mentor/server/internal/tutor/progress"
	"github.com/atelier-mentor/server/internal/tutor/routing"
	"github.com/atelier-mentor/server/internal/tutor/synth"
	logx "github.com/atelier-mentor/server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public TurnInput.
type Runner interface {
	Invoke(ctx context.Context, in model.TurnInput) (*model.TurnResult, error)
}

// Config holds everything needed to compose the full tutoring graph
// end-to-end. This is a convenience layer over GraphConfig that also
// constructs the chat models, search client and agent roster.
type Config struct {
	APIKey  string
	BaseURL string

	Generator model.GeneratorModelConfig
	Question  model.QuestionModelConfig
	Budget    model.BudgetConfig
	Search    model.SearchConfig
	Session   model.SessionConfig

	SessionRepo model.SessionRepository
	Images      model.ImageGenerator
}

// GraphConfig holds all constructed components needed to build the graph.
type GraphConfig struct {
	ChatModels  *nodes.ChatModels
	SessionRepo model.SessionRepository
	Classifier  *classify.Classifier
	Tree        *routing.Tree
	Engine      *progress.Engine
	Roster      map[model.AgentName]agents.Agent
	Synthesizer *synth.Synthesizer
}

// GraphBuilder handles the construction of the tutoring conversation graph.
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.TurnInput, *model.TurnResult]
}

type graphRunner struct {
	runnable compose.Runnable[model.TurnInput, *model.TurnResult]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.TurnInput) (*model.TurnResult, error) {
	return r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
}

// BuildTutorGraph composes the chat models, agents, phase engine and
// synthesizer, builds the graph, and returns a Runner.
func BuildTutorGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.SessionRepo == nil {
		return nil, fmt.Errorf("session repo is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		Generator: &cfg.Generator,
		Question:  &cfg.Question,
	})
	if err != nil {
		return nil, err
	}

	var search knowledge.Source
	if cfg.Search.APIKey != "" {
		search = knowledge.NewClient(cfg.Search)
	} else {
		logx.Warn().Msg("no search API key configured; domain expert runs without sources")
	}

	roster := map[model.AgentName]agents.Agent{
		model.AgentAnalysis:  agents.NewAnalysisAgent(),
		model.AgentDomain:    agents.NewDomainExpertAgent(cms.Generator, search, cfg.Budget),
		model.AgentSocratic:  agents.NewSocraticTutorAgent(cms.Generator, cfg.Budget),
		model.AgentCognitive: agents.NewCognitiveEnhancementAgent(cms.Generator, cfg.Budget),
	}

	bank := progress.NewQuestionBank(cms.Question, cfg.Question.Model)
	engine := progress.NewEngine(bank, cfg.Images)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:  cms,
		SessionRepo: cfg.SessionRepo,
		Classifier:  classify.NewClassifierWithWindow(cfg.Session.Context.MaxTurns),
		Tree:        routing.NewTree(),
		Engine:      engine,
		Roster:      roster,
		Synthesizer: synth.NewSynthesizer(cms.Generator, cfg.Budget),
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Tutor graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled tutoring graph.
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.SessionRepo == nil {
		return nil, fmt.Errorf("session repo is nil")
	}
	if config.Classifier == nil || config.Tree == nil || config.Engine == nil || config.Synthesizer == nil {
		return nil, fmt.Errorf("graph components are not properly initialized")
	}
	if len(config.Roster) == 0 {
		return nil, fmt.Errorf("agent roster is empty")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.TurnInput, *model.TurnResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	meters := []*nodes.MeteredGenerator{b.config.ChatModels.Generator, b.config.ChatModels.Question}

	b.graph.AddLambdaNode(nodes.NodeInputConverter,
		nodes.NewInputConverterNode(b.config.SessionRepo),
		compose.WithStatePreHandler(nodes.NewInputConverterPreHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeClassifier,
		nodes.NewClassifierNode(b.config.Classifier),
		compose.WithStatePostHandler(nodes.NewClassifierPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeRouter,
		nodes.NewRouterNode(b.config.Tree),
		compose.WithStatePostHandler(nodes.NewRouterPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeProgress,
		nodes.NewProgressNode(b.config.Engine),
	)

	b.graph.AddLambdaNode(nodes.NodeOpening,
		nodes.NewOpeningNode(),
	)

	b.graph.AddLambdaNode(nodes.NodeAgentExecutor,
		nodes.NewAgentExecutorNode(b.config.Roster),
		compose.WithStatePostHandler(nodes.NewAgentExecutorPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeSynthesizer,
		nodes.NewSynthesizerNode(b.config.Synthesizer),
		compose.WithStatePostHandler(nodes.NewSynthesizerPostHandler(b.config.SessionRepo, meters...)),
	)
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInputConverter},
		{nodes.NodeInputConverter, nodes.NodeClassifier},
		{nodes.NodeClassifier, nodes.NodeRouter},
		{nodes.NodeRouter, nodes.NodeProgress},
		{nodes.NodeOpening, nodes.NodeSynthesizer},
		{nodes.NodeAgentExecutor, nodes.NodeSynthesizer},
		{nodes.NodeSynthesizer, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	openingBranch := compose.NewGraphBranch(
		nodes.NewOpeningCondition(),
		map[string]bool{
			nodes.NodeOpening:       true,
			nodes.NodeAgentExecutor: true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeProgress, openingBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding opening branch")
		return fmt.Errorf("error adding opening branch: %w", err)
	}
	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.TurnInput, *model.TurnResult], error) {
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(20))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
