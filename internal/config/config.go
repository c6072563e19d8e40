package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Primary generation tier: external agent-runner executable.
	RunnerCommand        string `envconfig:"RUNNER_COMMAND" default:"agentrun"`
	RunnerTimeoutSeconds int    `envconfig:"RUNNER_TIMEOUT_SECONDS" default:"120"`

	// Fallback generation tier: hosted model provider.
	LLMProvider     string `envconfig:"LLM_PROVIDER" default:"openai"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `envconfig:"ANTHROPIC_MODEL" default:"claude-sonnet-4-20250514"`

	// Ingestion limits.
	MaxDocumentChars int `envconfig:"MAX_DOCUMENT_CHARS" default:"50000"`

	// Optional raw-document archive.
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"counsel-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Monitoring sweeps across active agents.
	SweepIntervalMinutes int `envconfig:"SWEEP_INTERVAL_MINUTES" default:"0"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("COUNSEL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) RunnerTimeout() time.Duration {
	return time.Duration(c.RunnerTimeoutSeconds) * time.Second
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

// SweepsEnabled reports whether the background sweep worker should run.
func (c *Config) SweepsEnabled() bool {
	return c.SweepIntervalMinutes > 0
}
