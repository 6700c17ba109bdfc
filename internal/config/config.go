package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"investiq/pkg/investiq"
)

// Environment variables read at startup. Provider keys follow the vendors'
// conventional names; everything else is namespaced under INVESTIQ_.
const (
	envHost      = "INVESTIQ_HOST"
	envPort      = "INVESTIQ_PORT"
	envLogDir    = "INVESTIQ_LOG_DIR"
	envWebDir    = "INVESTIQ_WEB_DIR"
	envPrimary   = "INVESTIQ_AI_PRIMARY"
	envSecondary = "INVESTIQ_AI_SECONDARY"

	envPrimaryModel   = "INVESTIQ_AI_PRIMARY_MODEL"
	envSecondaryModel = "INVESTIQ_AI_SECONDARY_MODEL"

	envFetchAttempts = "INVESTIQ_FETCH_ATTEMPTS"
	envFetchBackoff  = "INVESTIQ_FETCH_BACKOFF"
	envFetchTimeout  = "INVESTIQ_FETCH_TIMEOUT"
	envSessionTTL    = "INVESTIQ_SESSION_TTL"

	envTogetherKey  = "TOGETHER_API_KEY"
	envGroqKey      = "GROQ_API_KEY"
	envGeminiKey    = "GEMINI_API_KEY"
	envAnthropicKey = "ANTHROPIC_API_KEY"
)

const (
	defaultHost      = "127.0.0.1"
	defaultPort      = 8000
	defaultLogDir    = "logs"
	defaultPrimary   = investiq.ProviderTogether
	defaultSecondary = investiq.ProviderGroq
)

// Config is the resolved runtime configuration. Missing provider credentials
// are not an error; the analyzer degrades toward its template fallback.
type Config struct {
	Host   string
	Port   int
	LogDir string
	WebDir string

	FetchAttempts int
	FetchBackoff  time.Duration
	FetchTimeout  time.Duration
	SessionTTL    time.Duration

	Primary   investiq.ProviderConfig
	Secondary investiq.ProviderConfig
}

// Load reads configuration from the environment. Every value has a default;
// Load never fails.
func Load() Config {
	cfg := Config{
		Host:          getString(envHost, defaultHost),
		Port:          getInt(envPort, defaultPort),
		LogDir:        getString(envLogDir, defaultLogDir),
		WebDir:        getString(envWebDir, ""),
		FetchAttempts: getInt(envFetchAttempts, 0),
		FetchBackoff:  getDuration(envFetchBackoff, 0),
		FetchTimeout:  getDuration(envFetchTimeout, 0),
		SessionTTL:    getDuration(envSessionTTL, 0),
	}

	primaryKind := getString(envPrimary, defaultPrimary)
	secondaryKind := getString(envSecondary, defaultSecondary)
	cfg.Primary = providerFor(primaryKind, getString(envPrimaryModel, ""))
	cfg.Secondary = providerFor(secondaryKind, getString(envSecondaryModel, ""))
	return cfg
}

// providerFor binds a provider kind to its vendor credential variable.
func providerFor(kind, model string) investiq.ProviderConfig {
	kind = strings.ToLower(strings.TrimSpace(kind))
	cfg := investiq.ProviderConfig{Kind: kind, Model: model}
	switch kind {
	case investiq.ProviderTogether:
		cfg.APIKey = os.Getenv(envTogetherKey)
	case investiq.ProviderGroq:
		cfg.APIKey = os.Getenv(envGroqKey)
	case investiq.ProviderGemini:
		cfg.APIKey = os.Getenv(envGeminiKey)
	case investiq.ProviderAnthropic:
		cfg.APIKey = os.Getenv(envAnthropicKey)
	}
	return cfg
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
