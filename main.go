package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/atelier-mentor/server/internal/core"
	"github.com/atelier-mentor/server/internal/tutor/graph"
	"github.com/atelier-mentor/server/internal/tutor/images"
	"github.com/atelier-mentor/server/internal/tutor/model"
	"github.com/atelier-mentor/server/internal/tutor/repo"
	logx "github.com/atelier-mentor/server/pkg/logger"
	pkgredis "github.com/atelier-mentor/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the tutoring engine,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Engine configs
	Generator model.GeneratorModelConfig
	Question  model.QuestionModelConfig
	Budget    model.BudgetConfig
	Search    model.SearchConfig
	Session   model.SessionConfig
	Images    images.Config
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	ttl, err := time.ParseDuration(envCfg.Session.TTL)
	if err != nil {
		log.Fatalf("Invalid SESSION_TTL '%s': %v", envCfg.Session.TTL, err)
	}

	var illustrator model.ImageGenerator = images.Noop{}
	if envCfg.Images.APIKey != "" {
		gen, err := images.NewGenerator(ctx, envCfg.Images)
		if err != nil {
			log.Fatalf("Failed to initialise image generator: %v", err)
		}
		illustrator = gen
	}

	runner, err := graph.BuildTutorGraph(ctx, graph.Config{
		APIKey:      envCfg.APIKey,
		BaseURL:     envCfg.BaseURL,
		Generator:   envCfg.Generator,
		Question:    envCfg.Question,
		Budget:      envCfg.Budget,
		Search:      envCfg.Search,
		Session:     envCfg.Session,
		SessionRepo: repo.NewRedisSessionRepository(rdb, ttl),
		Images:      illustrator,
	})
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	brief := "Design a community center for a mid-sized neighborhood with a mix of young families and elderly residents, on a corner site next to a public park."

	turns := []struct {
		description string
		userText    string
	}{
		{
			description: "Opening turn with the design brief",
			userText:    "I want to start working on the community center. Where should I begin?",
		},
		{
			description: "Concept statement",
			userText:    "I'm thinking of organizing the building around a central courtyard so the park flows into the site, with the main hall and cafe facing the corner to draw people in.",
		},
		{
			description: "Example request",
			userText:    "Can you show me examples of community centers with courtyards?",
		},
		{
			description: "Overconfident shortcut",
			userText:    "Obviously a courtyard is the best solution here.",
		},
		{
			description: "Deeper reasoning",
			userText:    "Actually, thinking about circulation: elderly visitors need level access from the street, so the courtyard should sit at grade, and the program splits into a quiet wing for seniors and an active wing for families, connected by a covered walkway with good natural lighting.",
		},
	}

	sessionID := uuid.NewString()
	fmt.Printf("Session: %s\n", sessionID)

	for i, turn := range turns {
		fmt.Printf("\nTurn %d: %s\n", i+1, turn.description)
		fmt.Printf("Student: %s\n", turn.userText)

		result, err := runner.Invoke(ctx, model.TurnInput{
			SessionID:   sessionID,
			UserText:    turn.userText,
			DesignBrief: brief,
		})
		if err != nil {
			log.Fatalf("Failed to process turn %d: %v", i+1, err)
		}

		fmt.Printf("Tutor: %s\n", result.ResponseText)
		if m := result.Metadata; m != nil {
			fmt.Printf("[%s | route=%s | phase=%s | completion=%.0f%% | cost=$%.5f]\n",
				m.ResponseType, m.RoutingPath, m.CurrentPhase, m.CompletionPct, m.TotalCostUSD)
		}

		time.Sleep(500 * time.Millisecond)
	}

	fmt.Println("\nConversation complete.")
}
