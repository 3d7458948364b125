package internal

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Configuration struct {
	ShotgridURL         string        `env:"SG_SERVER_URL,notEmpty"`
	ShotgridScriptName  string        `env:"SG_SCRIPT_NAME,notEmpty"`
	ShotgridAPIKey      string        `env:"SG_API_KEY,notEmpty"`
	ShotgridProjectID   int           `env:"SG_PROJECT_ID,notEmpty"`
	ComponentEntityType string        `env:"SG_COMPONENT_ENTITY_TYPE" envDefault:"CustomNonProjectEntity01"`
	BareBranchRepos     []string      `env:"BARE_BRANCH_REPOS" envDefault:"shotgun" envSeparator:","`
	BackendTimeout      time.Duration `env:"BACKEND_TIMEOUT" envDefault:"30s"`

	GithubWebhookSecret string `env:"GITHUB_WEBHOOK_SECRET"`
	GithubToken         string `env:"GITHUB_TOKEN"`
	GithubAPIURL        string `env:"GITHUB_API_URL"`

	ListenAddr          string        `env:"LISTEN_ADDR" envDefault:"0.0.0.0:8080"`
	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	DeduplicationWindow time.Duration `env:"DEDUPLICATION_WINDOW" envDefault:"1h"`

	Debug       bool   `env:"DEBUG" envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL"`
	SentryDSN   string `env:"SENTRY_DSN"`
	Environment string `env:"ENVIRONMENT" envDefault:"production"`
}

// LoadConfiguration reads the configuration from the environment, after
// loading a .env file from the working directory if there is one.
// Variables already set in the environment win over the file.
func LoadConfiguration() (Configuration, error) {
	_ = godotenv.Load()

	config := Configuration{}
	err := env.Parse(&config)
	if err != nil {
		return config, err
	}
	return config, config.validate()
}

func (c Configuration) validate() error {
	if c.ShotgridProjectID <= 0 {
		return fmt.Errorf("SG_PROJECT_ID must be a positive id, got %d", c.ShotgridProjectID)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}
