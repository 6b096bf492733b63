package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

type Config struct {
	// Server settings
	APIPort      string        `json:"api_port"`
	UIPort       string        `json:"ui_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`
	Env          string        `json:"env"`

	// Application paths
	LogDir string `json:"log_dir"`

	Middleware MiddlewareConfig `json:"middleware"`
	CORS       CORSConfig       `json:"cors"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`

	LLM     LLMConfig     `json:"llm"`
	YouTube YouTubeConfig `json:"youtube"`
	UI      UIConfig      `json:"ui"`

	Version string `json:"version"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `json:"enable_recover"`
	EnableRequestID bool `json:"enable_request_id"`
	EnableLogger    bool `json:"enable_logger"`
	EnableTimeout   bool `json:"enable_timeout"`
	EnableCORS      bool `json:"enable_cors"`
	EnableRateLimit bool `json:"enable_rate_limit"`
	EnableCompress  bool `json:"enable_compress"`
}

type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

// LLMConfig points at any OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	APIKey  string        `json:"-"`
	BaseURL string        `json:"base_url"`
	Model   string        `json:"model"`
	Timeout time.Duration `json:"timeout"`
}

type YouTubeConfig struct {
	OEmbedURL    string        `json:"oembed_url"`
	ThumbnailURL string        `json:"thumbnail_url"`
	Languages    []string      `json:"languages"`
	HTTPTimeout  time.Duration `json:"http_timeout"`
}

type UIConfig struct {
	// Backend selects how the UI reaches the summarizer: in-process or over HTTP.
	Backend     string        `json:"backend"`
	APIURL      string        `json:"api_url"`
	SessionTTL  time.Duration `json:"session_ttl"`
	RevealStep  int           `json:"reveal_step"`
	RevealDelay time.Duration `json:"reveal_delay"`
}

func defaultDevConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   false, // Disabled for easier debugging
		EnableCORS:      true,
		EnableRateLimit: false,
		EnableCompress:  false,
	}
}

func defaultProdConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableTimeout:   true,
		EnableCORS:      true,
		EnableRateLimit: true,
		EnableCompress:  true,
	}
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first without overriding variables already set.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{
		APIPort:      getEnv("API_PORT", "8000"),
		UIPort:       getEnv("UI_PORT", "8501"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 2*time.Minute),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),
		Env:          getEnv("ENV", "development"),

		LogDir:  getEnv("LOG_DIR", "./logs"),
		Version: getEnv("VERSION", "1.0.0"),

		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 2*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		CORS: CORSConfig{
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"*"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		LLM: LLMConfig{
			APIKey:  getEnv("GROQ_API_KEY", ""),
			BaseURL: getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
			Model:   getEnv("LLM_MODEL", "llama3-8b-8192"),
			Timeout: getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
		},

		YouTube: YouTubeConfig{
			OEmbedURL:    getEnv("YOUTUBE_OEMBED_URL", "https://www.youtube.com/oembed"),
			ThumbnailURL: getEnv("YOUTUBE_THUMBNAIL_URL", "https://img.youtube.com/vi"),
			Languages:    getEnvAsStringSlice("TRANSCRIPT_LANGUAGES", []string{"en"}),
			HTTPTimeout:  getEnvAsDuration("HTTP_TIMEOUT", 15*time.Second),
		},

		UI: UIConfig{
			Backend:     getEnv("UI_BACKEND", BackendLocal),
			APIURL:      getEnv("API_URL", "http://localhost:8000"),
			SessionTTL:  getEnvAsDuration("SESSION_TTL", 2*time.Hour),
			RevealStep:  getEnvAsInt("REVEAL_STEP", 5),
			RevealDelay: getEnvAsDuration("REVEAL_DELAY", 5*time.Millisecond),
		},

		Middleware: defaultDevConfig(),
	}

	if cfg.IsProduction() {
		cfg.Middleware = defaultProdConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	if err := validatePorts(c); err != nil {
		return err
	}

	if err := validateTimeouts(c); err != nil {
		return err
	}

	if err := validateServices(c); err != nil {
		return err
	}

	return nil
}

// RequireLLM reports whether the configuration can reach the language model.
// Only processes that run the summarizer in-process need a key.
func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("GROQ_API_KEY is required")
	}
	if c.LLM.BaseURL == "" {
		return errors.New("llm base url is required")
	}
	return nil
}

func validatePorts(c *Config) error {
	if c.APIPort == "" {
		return errors.New("api port is required")
	}
	if c.UIPort == "" {
		return errors.New("ui port is required")
	}
	return nil
}

func validateTimeouts(c *Config) error {
	timeouts := []struct {
		value time.Duration
		name  string
	}{
		{c.ReadTimeout, "read timeout"},
		{c.WriteTimeout, "write timeout"},
		{c.IdleTimeout, "idle timeout"},
		{c.RequestTimeout, "request timeout"},
		{c.ShutdownTimeout, "shutdown timeout"},
		{c.LLM.Timeout, "llm timeout"},
		{c.YouTube.HTTPTimeout, "http timeout"},
	}

	for _, t := range timeouts {
		if t.value <= 0 {
			return errors.Errorf("%s must be positive", t.name)
		}
	}
	return nil
}

func validateServices(c *Config) error {
	switch c.UI.Backend {
	case BackendLocal, BackendRemote:
	default:
		return errors.Errorf("unknown ui backend %q", c.UI.Backend)
	}
	if c.UI.Backend == BackendRemote && c.UI.APIURL == "" {
		return errors.New("api url is required for the remote backend")
	}
	if c.UI.RevealStep <= 0 {
		return errors.New("reveal step must be positive")
	}
	if c.UI.RevealDelay < 0 {
		return errors.New("reveal delay cannot be negative")
	}
	if len(c.YouTube.Languages) == 0 {
		return errors.New("at least one transcript language is required")
	}
	return nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		warnInvalid(key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		warnInvalid(key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		warnInvalid(key, value, defaultValue)
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
	}
	return defaultValue
}

func warnInvalid(key, value string, defaultValue interface{}) {
	logrus.WithFields(logrus.Fields{
		"key":          key,
		"value":        value,
		"defaultValue": defaultValue,
	}).Warn("Invalid value, using default")
}
