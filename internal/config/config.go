package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultCalBaseURL    = "https://api.cal.com/v1"
	DefaultModel         = "gpt-4"
	DefaultTemperature   = 0.1
	DefaultHTTPAddr      = ":8080"
	DefaultMetricsAddr   = ":9090"
	DefaultOwnerEmail    = "song.wd@icloud.com"
)

// Config holds all runtime configuration for the assistant.
// Three secrets are required; their absence is a fatal startup condition.
type Config struct {
	// LLM settings
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string
	Temperature   float64

	// Cal.com settings
	CalAPIKey      string
	CalBaseURL     string
	CalEventTypeID int

	// DefaultOwnerEmail is the calendar owner identity used when listing
	// events. Optional; has a development default.
	DefaultOwnerEmail string

	// Server settings
	HTTPAddr       string
	MetricsAddr    string
	MetricsEnabled bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present (it never overrides real environment
// variables). Load does not validate; call Validate before use.
func Load() (*Config, error) {
	// Ignore the error: a missing .env file is the normal production case.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("OPENAI_BASE_URL", DefaultOpenAIBaseURL)
	v.SetDefault("OPENAI_MODEL", DefaultModel)
	v.SetDefault("OPENAI_TEMPERATURE", DefaultTemperature)
	v.SetDefault("CAL_BASE_URL", DefaultCalBaseURL)
	v.SetDefault("DEFAULT_USER_EMAIL", DefaultOwnerEmail)
	v.SetDefault("HTTP_ADDR", DefaultHTTPAddr)
	v.SetDefault("METRICS_ADDR", DefaultMetricsAddr)
	v.SetDefault("METRICS_ENABLED", true)

	cfg := &Config{
		OpenAIAPIKey:      v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:     strings.TrimRight(v.GetString("OPENAI_BASE_URL"), "/"),
		Model:             v.GetString("OPENAI_MODEL"),
		Temperature:       v.GetFloat64("OPENAI_TEMPERATURE"),
		CalAPIKey:         v.GetString("CAL_API_KEY"),
		CalBaseURL:        strings.TrimRight(v.GetString("CAL_BASE_URL"), "/"),
		CalEventTypeID:    v.GetInt("CAL_EVENT_TYPE_ID"),
		DefaultOwnerEmail: v.GetString("DEFAULT_USER_EMAIL"),
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		MetricsAddr:       v.GetString("METRICS_ADDR"),
		MetricsEnabled:    v.GetBool("METRICS_ENABLED"),
	}

	return cfg, nil
}

// Validate checks that all required settings are present. It reports every
// missing variable in a single error so the operator can fix them at once.
func (c *Config) Validate() error {
	var missing []string

	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.CalAPIKey == "" {
		missing = append(missing, "CAL_API_KEY")
	}
	if c.CalEventTypeID == 0 {
		missing = append(missing, "CAL_EVENT_TYPE_ID")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
