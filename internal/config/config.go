package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Supported upstream providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config is the root configuration for scgen.
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Client  ClientConfig
	Tracing TracingConfig
	Log     LogConfig
}

// ServerConfig controls the generation endpoint.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	MaxBodyBytes    int64
}

// AIConfig selects and authenticates the upstream LLM provider.
type AIConfig struct {
	Provider string        // "openai" or "gemini"
	BaseURL  string        // defaults to https://api.openai.com/v1 for openai
	Model    string        // e.g. "gpt-4"
	APIKey   string        // expanded from env var by Load; empty means unconfigured
	Timeout  time.Duration // per-request timeout on the upstream HTTP client
}

// ClientConfig controls how the form talks to the generation endpoint.
type ClientConfig struct {
	Endpoint  string        // base URL of a running `scgen serve`
	Timeout   time.Duration // zero means no client-side timeout
	ExportDir string
}

// TracingConfig controls OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string // OTLP gRPC collector, host:port
	SampleRate  float64
	ServiceName string
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4"
	defaultGeminiModel   = "gemini-2.5-flash"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Server  rawServerConfig  `yaml:"server"`
	AI      rawAIConfig      `yaml:"ai"`
	Client  rawClientConfig  `yaml:"client"`
	Tracing rawTracingConfig `yaml:"tracing"`
	Log     rawLogConfig     `yaml:"log"`
}

type rawServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     string   `yaml:"read_timeout"`
	WriteTimeout    string   `yaml:"write_timeout"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	CORSOrigins     []string `yaml:"cors_origins"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes"`
}

type rawAIConfig struct {
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
}

type rawClientConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Timeout   string `yaml:"timeout"`
	ExportDir string `yaml:"export_dir"`
}

type rawTracingConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Endpoint    string   `yaml:"endpoint"`
	SampleRate  *float64 `yaml:"sample_rate"`
	ServiceName string   `yaml:"service_name"`
}

type rawLogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error; variables already set are not overridden.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg, err := Parse(nil)
	if err != nil {
		// The built-in defaults always validate.
		panic(err)
	}
	return cfg
}

// Parse builds a Config from YAML bytes. Environment variables in data are
// expanded before parsing.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	readTimeout, err := parseDuration("server.read_timeout", raw.Server.ReadTimeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := parseDuration("server.write_timeout", raw.Server.WriteTimeout, 90*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("server.shutdown_timeout", raw.Server.ShutdownTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	aiTimeout, err := parseDuration("ai.timeout", raw.AI.Timeout, 60*time.Second)
	if err != nil {
		return nil, err
	}
	clientTimeout, err := parseDuration("client.timeout", raw.Client.Timeout, 2*time.Minute)
	if err != nil {
		return nil, err
	}

	provider := raw.AI.Provider
	if provider == "" {
		provider = ProviderOpenAI
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" && provider == ProviderOpenAI {
		aiBaseURL = defaultOpenAIBaseURL
	}

	aiModel := raw.AI.Model
	if aiModel == "" {
		switch provider {
		case ProviderGemini:
			aiModel = defaultGeminiModel
		default:
			aiModel = defaultOpenAIModel
		}
	}

	apiKey := raw.AI.APIKey
	if apiKey == "" {
		apiKey = apiKeyFromEnv(provider)
	}

	corsOrigins := raw.Server.CORSOrigins
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	maxBody := raw.Server.MaxBodyBytes
	if maxBody == 0 {
		maxBody = 1 << 20
	}

	sampleRate := 1.0
	if raw.Tracing.SampleRate != nil {
		sampleRate = *raw.Tracing.SampleRate
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:            withDefault(raw.Server.Addr, ":3000"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			CORSOrigins:     corsOrigins,
			MaxBodyBytes:    maxBody,
		},
		AI: AIConfig{
			Provider: provider,
			BaseURL:  aiBaseURL,
			Model:    aiModel,
			APIKey:   apiKey,
			Timeout:  aiTimeout,
		},
		Client: ClientConfig{
			Endpoint:  withDefault(raw.Client.Endpoint, "http://localhost:3000"),
			Timeout:   clientTimeout,
			ExportDir: withDefault(raw.Client.ExportDir, "."),
		},
		Tracing: TracingConfig{
			Enabled:     raw.Tracing.Enabled,
			Endpoint:    raw.Tracing.Endpoint,
			SampleRate:  sampleRate,
			ServiceName: withDefault(raw.Tracing.ServiceName, "scgen"),
		},
		Log: LogConfig{
			Level:  withDefault(raw.Log.Level, "info"),
			Format: withDefault(raw.Log.Format, "text"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(field, raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	return d, nil
}

func apiKeyFromEnv(provider string) string {
	switch provider {
	case ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if cfg.Server.ReadTimeout <= 0 || cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read/write timeouts must be positive")
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must not be negative, got %d", cfg.Server.MaxBodyBytes)
	}

	switch cfg.AI.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("ai.provider must be %q or %q, got %q", ProviderOpenAI, ProviderGemini, cfg.AI.Provider)
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}

	if cfg.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative, got %v", cfg.Client.Timeout)
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing.enabled is true")
	}
	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", cfg.Tracing.SampleRate)
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", cfg.Log.Format)
	}

	return nil
}
