package model

// ================ Config ================

type SessionConfig struct {
	TTL string `envconfig:"SESSION_TTL" default:"24h"`
	Context struct {
		MaxTurns int `envconfig:"SESSION_CONTEXT_MAX_TURNS" default:"5"`
	}
}

type GeneratorModelConfig struct {
	Model       string  `envconfig:"GENERATOR_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"GENERATOR_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"GENERATOR_TEMPERATURE" default:"0.4"`
}

type QuestionModelConfig struct {
	Model       string  `envconfig:"QUESTION_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"QUESTION_MAX_TOKENS" default:"800"`
	Temperature float32 `envconfig:"QUESTION_TEMPERATURE" default:"0.6"`
}

// BudgetConfig carries the per-agent word budgets enforced by the shaper.
type BudgetConfig struct {
	DomainWords    int `envconfig:"BUDGET_DOMAIN_WORDS" default:"350"`
	SocraticWords  int `envconfig:"BUDGET_SOCRATIC_WORDS" default:"200"`
	CognitiveWords int `envconfig:"BUDGET_COGNITIVE_WORDS" default:"220"`
}

type SearchConfig struct {
	APIKey         string `envconfig:"SEARCH_API_KEY"`
	BaseURL        string `envconfig:"SEARCH_BASE_URL" default:"https://api.tavily.com/search"`
	MaxResults     int    `envconfig:"SEARCH_MAX_RESULTS" default:"5"`
	TimeoutSeconds int    `envconfig:"SEARCH_TIMEOUT_SECONDS" default:"30"`
	// Comma-separated whitelist of architectural domains; results outside it
	// are discarded client-side.
	IncludeDomains string `envconfig:"SEARCH_INCLUDE_DOMAINS" default:"archdaily.com,dezeen.com,architecturalrecord.com,architecture.com,archello.com"`
}
