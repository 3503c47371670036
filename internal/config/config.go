// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/naka-gawa/release-stats/internal/domain"
)

type Config struct {
	// github access
	Token      string `env:"GITHUB_TOKEN"`
	Owner      string `env:"GITHUB_OWNER"`
	Repo       string `env:"GITHUB_REPO"`
	APIURL     string `env:"GITHUB_API_URL"`
	GraphQLURL string `env:"GITHUB_GRAPHQL_URL"`

	// branches and output
	ProdBranch string `env:"RELEASE_PROD_BRANCH" env-default:"master"`
	UATBranch  string `env:"RELEASE_UAT_BRANCH" env-default:"develop_uat"`
	OutputDir  string `env:"RELEASE_OUTPUT_DIR" env-default:"reports"`

	// http client behaviour
	RequestTimeout time.Duration `env:"GITHUB_REQUEST_TIMEOUT" env-default:"30s"`
	BranchTimeout  time.Duration `env:"GITHUB_BRANCH_TIMEOUT" env-default:"10m"`
	RetryMax       int           `env:"GITHUB_RETRY_MAX" env-default:"3"`
	RetryWaitMin   time.Duration `env:"GITHUB_RETRY_WAIT_MIN" env-default:"1s"`
	RetryWaitMax   time.Duration `env:"GITHUB_RETRY_WAIT_MAX" env-default:"30s"`
	RateLimitSleep time.Duration `env:"GITHUB_RATE_LIMIT_SLEEP" env-default:"1h"`

	// logging configuration
	LogLevel  string `env:"LOG_LEVEL" env-default:"warn"`
	LogFormat string `env:"LOG_FORMAT" env-default:"text"`
}

func New() (*Config, error) {
	var cfg Config

	// read from .env file if exists (optional)
	if err := cleanenv.ReadConfig(".env", &cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read dotenv file: %w", err)
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment variables: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ProdBranch, validation.Required),
		validation.Field(&c.UATBranch, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.RetryMax, validation.Min(0)),
		validation.Field(&c.RequestTimeout, validation.Required),
		validation.Field(&c.BranchTimeout, validation.Required),
		validation.Field(&c.RetryWaitMin, validation.Required),
		validation.Field(&c.RetryWaitMax, validation.Required),
	)
}

// ValidateForFetch additionally requires the repository identity and a credential.
func (c *Config) ValidateForFetch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Token, validation.Required.Error("GITHUB_TOKEN environment variable is not set")),
		validation.Field(&c.Owner, validation.Required),
		validation.Field(&c.Repo, validation.Required),
	)
}

// Branches returns the configured production and pre-production branches.
func (c *Config) Branches() []domain.Branch {
	return []domain.Branch{
		{Name: c.ProdBranch, Kind: domain.BranchProd},
		{Name: c.UATBranch, Kind: domain.BranchUAT},
	}
}
