// Package config loads the song-scout YAML configuration and holds the scoring presets.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/song-scout/internal/filter"
	"github.com/jonathan/song-scout/internal/types"
)

// Config is the full application configuration. Every field is optional in the file.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Search  SearchConfig  `yaml:"search"`
	Ranking RankingConfig `yaml:"ranking"`
	Filter  FilterConfig  `yaml:"filter"`
	Logging LoggingConfig `yaml:"logging"`
	HTTP    HTTPConfig    `yaml:"http"`
}

// LLMConfig selects the language model provider.
type LLMConfig struct {
	Provider    string   `yaml:"provider" validate:"oneof=openai gemini"`
	Model       string   `yaml:"model"` // overrides the standard tier model
	BaseURL     string   `yaml:"base_url" validate:"omitempty,url"`
	APIKey      string   `yaml:"api_key"`
	Temperature *float32 `yaml:"temperature" validate:"omitempty,gte=0,lte=2"`
	TimeoutSec  int      `yaml:"timeout_sec" validate:"gte=0"`
}

// SearchConfig selects and configures the web search backend.
type SearchConfig struct {
	Backend    string        `yaml:"backend" validate:"oneof=duckduckgo google spotify"`
	Region     string        `yaml:"region"`
	SafeSearch string        `yaml:"safesearch" validate:"oneof=off moderate strict"`
	TimeoutSec int           `yaml:"timeout_sec" validate:"gte=0"`
	Google     GoogleConfig  `yaml:"google"`
	Spotify    SpotifyConfig `yaml:"spotify"`
}

// GoogleConfig holds Programmable Search credentials.
type GoogleConfig struct {
	APIKey string `yaml:"api_key"`
	CX     string `yaml:"cx"`
}

// SpotifyConfig holds client-credentials for the Spotify Web API.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Market       string `yaml:"market"`
}

// RankingConfig holds the scoring preferences.
type RankingConfig struct {
	Preset  string                `yaml:"preset"`
	Weights types.WeightOverrides `yaml:"weights"`
	TopN    int                   `yaml:"top_n" validate:"gte=5,lte=30"`
	Mode    string                `yaml:"mode" validate:"oneof=strict loose"`
}

// FilterConfig holds the playable-link preferences.
type FilterConfig struct {
	PlayableOnly   *bool    `yaml:"playable_only"`
	AllowedDomains []string `yaml:"allowed_domains" validate:"dive,playable_domain"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env" validate:"oneof=prod dev local"`
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port" validate:"gte=1,lte=65535"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// Defaults used by ApplyDefaults.
const (
	DefaultTopN          = 12
	DefaultMode          = "strict"
	DefaultBackend       = "duckduckgo"
	DefaultRegion        = "wt-wt"
	DefaultSafeSearch    = "off"
	DefaultPort          = 8080
	DefaultLLMTimeoutSec = 90
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// LoadConfig reads a YAML configuration file, expands ${VAR} / ${VAR:-default} references,
// applies defaults and environment fallbacks and validates the result.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML configuration content. See LoadConfig.
func Parse(data []byte) (*Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	cfg.ApplyDefaults()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = DefaultLLMTimeoutSec
	}
	if c.Search.Backend == "" {
		c.Search.Backend = DefaultBackend
	}
	if c.Search.Region == "" {
		c.Search.Region = DefaultRegion
	}
	if c.Search.SafeSearch == "" {
		c.Search.SafeSearch = DefaultSafeSearch
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 20
	}
	if c.Ranking.Preset == "" {
		c.Ranking.Preset = PresetBalanced
	}
	if c.Ranking.TopN == 0 {
		c.Ranking.TopN = DefaultTopN
	}
	if c.Ranking.Mode == "" {
		c.Ranking.Mode = DefaultMode
	}
	c.Ranking.Mode = strings.ToLower(c.Ranking.Mode)
	if c.Filter.PlayableOnly == nil {
		playable := true
		c.Filter.PlayableOnly = &playable
	}
	if len(c.Filter.AllowedDomains) == 0 {
		c.Filter.AllowedDomains = append([]string(nil), filter.DefaultAllowedDomains...)
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "dev"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultPort
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// a full search run streams for as long as the model and the backend take
		c.HTTP.WriteTimeoutSec = 180
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"*"}
	}
}

// ApplyEnv fills missing credentials from the conventional environment variables.
func (c *Config) ApplyEnv() {
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "gemini":
			c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if c.LLM.BaseURL == "" && c.LLM.Provider == "openai" {
		c.LLM.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if c.LLM.Model == "" && c.LLM.Provider == "openai" {
		c.LLM.Model = os.Getenv("OPENAI_MODEL")
	}
	setIfEmpty(&c.Search.Google.APIKey, "GOOGLE_CSE_API_KEY")
	setIfEmpty(&c.Search.Google.CX, "GOOGLE_CSE_CX")
	setIfEmpty(&c.Search.Spotify.ClientID, "SPOTIFY_ID")
	setIfEmpty(&c.Search.Spotify.ClientSecret, "SPOTIFY_SECRET")
}

func setIfEmpty(dst *string, envVar string) {
	if *dst == "" {
		*dst = os.Getenv(envVar)
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return toValidationError(err)
	}
	if _, err := c.Weights(); err != nil {
		return &ValidationError{Field: "ranking", Message: err.Error()}
	}
	return nil
}

// Weights resolves the configured preset and applies the per-factor overrides.
func (c *Config) Weights() (types.Weights, error) {
	base, err := PresetWeights(c.Ranking.Preset)
	if err != nil {
		return types.Weights{}, err
	}
	w := c.Ranking.Weights.Apply(base)
	if err := w.Validate(); err != nil {
		return types.Weights{}, fmt.Errorf("weights out of range: %w", err)
	}
	return w, nil
}

// PlayableOnly reports the effective playable-only flag.
func (c *Config) PlayableOnly() bool {
	return c.Filter.PlayableOnly == nil || *c.Filter.PlayableOnly
}

// ValidationError describes one invalid configuration value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("playable_domain", func(fl validator.FieldLevel) bool {
		return filter.IsKnownDomain(fl.Field().String())
	})
	return v
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
			Message: describe(fe),
		}
	}
	return &ValidationError{Field: "(config)", Message: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be <= %s, got %v", fe.Param(), fe.Value())
	case "playable_domain":
		return fmt.Sprintf("%v is not a known playable domain (%s)", fe.Value(), strings.Join(filter.KnownPlayableDomains, ", "))
	default:
		return fmt.Sprintf("failed %q check, got %v", fe.Tag(), fe.Value())
	}
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
