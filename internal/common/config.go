package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/spectrumbridge/bridge/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment"` // "development" or "production"
	Server       ServerConfig       `toml:"server"`
	Storage      StorageConfig      `toml:"storage"`
	Logging      LoggingConfig      `toml:"logging"`
	WebSocket    WebSocketConfig    `toml:"websocket"`
	Gemini       GeminiConfig       `toml:"gemini"`
	Claude       ClaudeConfig       `toml:"claude"`
	LLM          LLMConfig          `toml:"llm"`
	Embeddings   EmbeddingsConfig   `toml:"embeddings"`
	Knowledge    KnowledgeConfig    `toml:"knowledge"`
	Image        ImageConfig        `toml:"image"`
	Ingest       IngestConfig       `toml:"ingest"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger     BadgerConfig     `toml:"badger"`
	Filesystem FilesystemConfig `toml:"filesystem"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type FilesystemConfig struct {
	Images  string `toml:"images"`  // Directory for generated images
	Reports string `toml:"reports"` // Directory for generated PDF reports
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// WebSocketConfig contains configuration for WebSocket log and progress streaming
type WebSocketConfig struct {
	MinLevel        string   `toml:"min_level"`        // Minimum log level to broadcast ("debug", "info", "warn", "error")
	ExcludePatterns []string `toml:"exclude_patterns"` // Log message patterns to exclude from broadcasting
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for text generation (default: "gemini-3-flash-preview")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	RateLimit   string  `toml:"rate_limit"`  // Rate limit duration string (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (ANTHROPIC_API_KEY or config)
	Model       string  `toml:"model"`       // Model for text generation (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	RateLimit   string  `toml:"rate_limit"`  // Rate limit duration string (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // Default provider: "gemini" or "claude" (default: "gemini")
}

// EmbeddingsConfig contains configuration for embedding generation
type EmbeddingsConfig struct {
	Model     string `toml:"model"`     // Embedding model (default: "gemini-embedding-001")
	Dimension int    `toml:"dimension"` // Output dimensionality (default: 384)
	Timeout   string `toml:"timeout"`   // Per-call timeout as duration string (default: "1m")
}

// KnowledgeConfig contains configuration for chunking and retrieval
type KnowledgeConfig struct {
	ChunkSize      int `toml:"chunk_size"`       // Target chunk size in characters (default: 500)
	ChunkOverlap   int `toml:"chunk_overlap"`    // Overlap between consecutive chunks (default: 50)
	MinChunkLength int `toml:"min_chunk_length"` // Chunks shorter than this are dropped (default: 50)
	DefaultTopK    int `toml:"default_top_k"`    // Passages returned when the caller gives no top_k (default: 5)
}

// ImageConfig contains configuration for the local image generation endpoint
type ImageConfig struct {
	BaseURL       string  `toml:"base_url"`       // txt2img API base URL (default: "http://localhost:7860")
	Width         int     `toml:"width"`          // Image width in pixels (default: 512)
	Height        int     `toml:"height"`         // Image height in pixels (default: 512)
	Steps         int     `toml:"steps"`          // Diffusion steps (default: 15)
	GuidanceScale float64 `toml:"guidance_scale"` // Classifier-free guidance scale (default: 7.5)
	Timeout       string  `toml:"timeout"`        // HTTP request timeout as duration string (default: "2m")
	RateLimit     string  `toml:"rate_limit"`     // Minimum time between generation requests (default: "1s")
}

// IngestConfig contains configuration for the watched documents directory
type IngestConfig struct {
	Enabled  bool   `toml:"enabled"`  // Enable scheduled rescans of the ingest directory
	Dir      string `toml:"dir"`      // Directory scanned for .txt/.md/.pdf/.html documents
	Schedule string `toml:"schedule"` // Cron schedule for rescans (default: "*/15 * * * *")
}

// OrchestratorConfig contains configuration for multi-task coordination
type OrchestratorConfig struct {
	Workers      int `toml:"workers"`       // Concurrent workers for optional tasks (default: 3)
	ContextLimit int `toml:"context_limit"` // Max characters of retrieved context passed to simplification (default: 1000)
}

// NewDefaultConfig creates a configuration with default values
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in bridge.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
			Filesystem: FilesystemConfig{
				Images:  "./data/generated_images",
				Reports: "./data/reports",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",                     // Info level for production (debug|info|warn|error)
			Format:     "text",                     // Human-readable text format (text|json)
			Output:     []string{"stdout", "file"}, // Log to both console and file
			TimeFormat: "15:04:05",
		},
		WebSocket: WebSocketConfig{
			MinLevel: "info",
			ExcludePatterns: []string{
				"WebSocket client connected",
				"WebSocket client disconnected",
				"HTTP request",
				"HTTP response",
			},
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (no fallback)
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			RateLimit:   "4s", // Default to 4s (15 RPM) for free tier
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "2m",
			RateLimit:   "1s",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Embeddings: EmbeddingsConfig{
			Model:     "gemini-embedding-001",
			Dimension: 384,
			Timeout:   "1m",
		},
		Knowledge: KnowledgeConfig{
			ChunkSize:      500,
			ChunkOverlap:   50,
			MinChunkLength: 50,
			DefaultTopK:    5,
		},
		Image: ImageConfig{
			BaseURL:       "http://localhost:7860",
			Width:         512,
			Height:        512,
			Steps:         15,
			GuidanceScale: 7.5,
			Timeout:       "2m",
			RateLimit:     "1s",
		},
		Ingest: IngestConfig{
			Enabled:  false, // Disabled by default - user must explicitly opt-in
			Dir:      "./documents",
			Schedule: "*/15 * * * *",
		},
		Orchestrator: OrchestratorConfig{
			Workers:      3,
			ContextLimit: 1000,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
// Priority system: CLI flags > Environment variables > Config file > Defaults
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files.
// Example: LoadFromFiles("base.toml", "override.toml") - override.toml settings take precedence over base.toml
func LoadFromFiles(paths ...string) (*Config, error) {
	// Start with defaults
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier files)
	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		// Unmarshal into config (merges with existing values, later values override)
		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Apply environment variables (overrides all file configs)
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Environment configuration (highest priority: BRIDGE_ENV, fallback: GO_ENV)
	if env := os.Getenv("BRIDGE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("BRIDGE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("BRIDGE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if badgerPath := os.Getenv("BRIDGE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if imagesDir := os.Getenv("BRIDGE_IMAGES_DIR"); imagesDir != "" {
		config.Storage.Filesystem.Images = imagesDir
	}
	if reportsDir := os.Getenv("BRIDGE_REPORTS_DIR"); reportsDir != "" {
		config.Storage.Filesystem.Reports = reportsDir
	}

	// Logging configuration
	if level := os.Getenv("BRIDGE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("BRIDGE_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("BRIDGE_LOG_OUTPUT"); output != "" {
		// Split comma-separated output types
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			trimmed := strings.TrimSpace(o)
			if trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// WebSocket configuration
	if minLevel := os.Getenv("BRIDGE_WEBSOCKET_MIN_LEVEL"); minLevel != "" {
		config.WebSocket.MinLevel = minLevel
	}

	// Gemini configuration
	if apiKey := os.Getenv("BRIDGE_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("BRIDGE_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("BRIDGE_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if rateLimit := os.Getenv("BRIDGE_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}
	if temperature := os.Getenv("BRIDGE_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("BRIDGE_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // BRIDGE_ prefix takes priority
	}
	if model := os.Getenv("BRIDGE_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("BRIDGE_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("BRIDGE_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if rateLimit := os.Getenv("BRIDGE_CLAUDE_RATE_LIMIT"); rateLimit != "" {
		config.Claude.RateLimit = rateLimit
	}
	if temperature := os.Getenv("BRIDGE_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("BRIDGE_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	// Embeddings configuration
	if model := os.Getenv("BRIDGE_EMBEDDINGS_MODEL"); model != "" {
		config.Embeddings.Model = model
	}
	if dimension := os.Getenv("BRIDGE_EMBEDDINGS_DIMENSION"); dimension != "" {
		if d, err := strconv.Atoi(dimension); err == nil && d > 0 {
			config.Embeddings.Dimension = d
		}
	}
	if timeout := os.Getenv("BRIDGE_EMBEDDINGS_TIMEOUT"); timeout != "" {
		config.Embeddings.Timeout = timeout
	}

	// Knowledge configuration
	if chunkSize := os.Getenv("BRIDGE_KNOWLEDGE_CHUNK_SIZE"); chunkSize != "" {
		if cs, err := strconv.Atoi(chunkSize); err == nil && cs > 0 {
			config.Knowledge.ChunkSize = cs
		}
	}
	if chunkOverlap := os.Getenv("BRIDGE_KNOWLEDGE_CHUNK_OVERLAP"); chunkOverlap != "" {
		if co, err := strconv.Atoi(chunkOverlap); err == nil && co >= 0 {
			config.Knowledge.ChunkOverlap = co
		}
	}
	if minLength := os.Getenv("BRIDGE_KNOWLEDGE_MIN_CHUNK_LENGTH"); minLength != "" {
		if ml, err := strconv.Atoi(minLength); err == nil && ml >= 0 {
			config.Knowledge.MinChunkLength = ml
		}
	}
	if topK := os.Getenv("BRIDGE_KNOWLEDGE_DEFAULT_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil && k > 0 {
			config.Knowledge.DefaultTopK = k
		}
	}

	// Image configuration
	if baseURL := os.Getenv("BRIDGE_IMAGE_BASE_URL"); baseURL != "" {
		config.Image.BaseURL = baseURL
	}
	if width := os.Getenv("BRIDGE_IMAGE_WIDTH"); width != "" {
		if w, err := strconv.Atoi(width); err == nil && w > 0 {
			config.Image.Width = w
		}
	}
	if height := os.Getenv("BRIDGE_IMAGE_HEIGHT"); height != "" {
		if h, err := strconv.Atoi(height); err == nil && h > 0 {
			config.Image.Height = h
		}
	}
	if steps := os.Getenv("BRIDGE_IMAGE_STEPS"); steps != "" {
		if s, err := strconv.Atoi(steps); err == nil && s > 0 {
			config.Image.Steps = s
		}
	}
	if guidance := os.Getenv("BRIDGE_IMAGE_GUIDANCE_SCALE"); guidance != "" {
		if g, err := strconv.ParseFloat(guidance, 64); err == nil && g > 0 {
			config.Image.GuidanceScale = g
		}
	}
	if timeout := os.Getenv("BRIDGE_IMAGE_TIMEOUT"); timeout != "" {
		config.Image.Timeout = timeout
	}
	if rateLimit := os.Getenv("BRIDGE_IMAGE_RATE_LIMIT"); rateLimit != "" {
		config.Image.RateLimit = rateLimit
	}

	// Ingest configuration
	if enabled := os.Getenv("BRIDGE_INGEST_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Ingest.Enabled = e
		}
	}
	if dir := os.Getenv("BRIDGE_INGEST_DIR"); dir != "" {
		config.Ingest.Dir = dir
	}
	if schedule := os.Getenv("BRIDGE_INGEST_SCHEDULE"); schedule != "" {
		config.Ingest.Schedule = schedule
	}

	// Orchestrator configuration
	if workers := os.Getenv("BRIDGE_ORCHESTRATOR_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			config.Orchestrator.Workers = w
		}
	}
	if contextLimit := os.Getenv("BRIDGE_ORCHESTRATOR_CONTEXT_LIMIT"); contextLimit != "" {
		if cl, err := strconv.Atoi(contextLimit); err == nil && cl > 0 {
			config.Orchestrator.ContextLimit = cl
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ResolveAPIKey resolves an API key by name with environment variable priority
// Resolution order: environment variables → KV store → config fallback → error
// This ensures BRIDGE_* environment variables always take precedence
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	// Map of KV store key names to environment variable names
	// Environment variables have highest priority
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"BRIDGE_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"google_api_key":    {"BRIDGE_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"BRIDGE_CLAUDE_API_KEY"},
		"claude_api_key":    {"BRIDGE_CLAUDE_API_KEY"},
	}

	// For Claude, also check the standard ANTHROPIC_API_KEY env var
	if name == "anthropic_api_key" || name == "claude_api_key" {
		if envValue := os.Getenv("ANTHROPIC_API_KEY"); envValue != "" {
			return envValue, nil
		}
	}

	// Check environment variables (highest priority)
	if envVarNames, hasMappedEnv := keyToEnvMapping[name]; hasMappedEnv {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Try to resolve from KV store (medium priority - file-based variables)
	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Fallback to config value (lowest priority)
	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// ValidateSchedule validates a cron schedule expression and ensures minimum 5-minute interval
func ValidateSchedule(schedule string) error {
	// Parse the cron expression
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(schedule)
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	// Validate minute field (first field in standard cron)
	parts := strings.Fields(schedule)
	if len(parts) < 5 {
		return fmt.Errorf("invalid cron format: expected 5 fields")
	}

	minuteField := parts[0]

	// Check for patterns that violate 5-minute minimum
	if minuteField == "*" {
		return fmt.Errorf("schedule must have minimum 5-minute interval (every minute is not allowed)")
	}

	// Check for */n patterns where n < 5
	if strings.HasPrefix(minuteField, "*/") {
		intervalStr := strings.TrimPrefix(minuteField, "*/")
		interval, err := strconv.Atoi(intervalStr)
		if err == nil && interval < 5 {
			return fmt.Errorf("schedule interval must be at least 5 minutes, got %d", interval)
		}
	}

	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
