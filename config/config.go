package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultMoversURL = "https://www.tradingview.com/markets/stocks-usa/market-movers-large-cap/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`
	StaticDir    string `json:"static_dir"`
	DBPath       string `json:"db_path"`

	ListenAddr string `json:"listen_addr"`

	// Market data
	MarketMoversURL     string `json:"market_movers_url"`
	MoversMaxRows       int    `json:"movers_max_rows"`
	FetchTimeoutSeconds int    `json:"fetch_timeout_seconds"`
	UserAgent           string `json:"user_agent"`
	QuoteProvider       string `json:"quote_provider"`

	// Quote cache
	CacheEnabled    bool   `json:"cache_enabled"`
	CacheBackend    string `json:"cache_backend"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`
	RedisAddr       string `json:"redis_addr"`
	RedisPassword   string `json:"redis_password"`
	RedisDB         int    `json:"redis_db"`

	LLMProvider   string `json:"llm_provider"`
	LLMModel      string `json:"llm_model"`
	BackendURL    string `json:"backend_url"`
	MaxTokens     int    `json:"max_tokens"`
	MaxAgentSteps int    `json:"max_agent_steps"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`

	// Longport API Configuration
	LongportAppKey      string `json:"longport_app_key"`
	LongportAppSecret   string `json:"longport_app_secret"`
	LongportAccessToken string `json:"longport_access_token"`

	// AI Model API Keys
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	OpenAIAPIKey   string `json:"openai_api_key"`

	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
	LogOutput string `json:"log_output"`
	LogFile   string `json:"log_file"`

	Debug bool `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults with every path rooted at dir.
// Environment variables are not consulted.
func DefaultConfigWithRoot(dir string) *Config {
	return &Config{
		ProjectDir:   dir,
		DataDir:      filepath.Join(dir, "data"),
		DataCacheDir: filepath.Join(dir, "data", "cache"),
		StaticDir:    filepath.Join(dir, "static"),
		DBPath:       filepath.Join(dir, "data", "finagent.db"),

		ListenAddr: ":8080",

		MarketMoversURL:     DefaultMoversURL,
		MoversMaxRows:       10,
		FetchTimeoutSeconds: 15,
		UserAgent:           DefaultUserAgent,
		QuoteProvider:       "yahoo",

		CacheEnabled:    true,
		CacheBackend:    "file",
		CacheTTLSeconds: 60,
		RedisAddr:       "localhost:6379",

		LLMProvider:   "deepseek",
		LLMModel:      "deepseek-chat",
		MaxTokens:     8192,
		MaxAgentSteps: 20,

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,

		LogLevel:  "info",
		LogFormat: "text",
		LogOutput: "stdout",
		LogFile:   filepath.Join(dir, "logs", "finagent.log"),
	}
}

// WithEnvOverrides returns a copy of c with environment variables applied on
// top, the same way DefaultConfig applies them to the defaults.
func (c Config) WithEnvOverrides() Config {
	c.loadFromEnv()
	return c
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}
	if val := os.Getenv("STATIC_DIR"); val != "" {
		c.StaticDir = val
	}
	if val := os.Getenv("DB_PATH"); val != "" {
		c.DBPath = val
	}

	if val := os.Getenv("PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.ListenAddr = fmt.Sprintf(":%d", port)
		}
	}
	if val := os.Getenv("LISTEN_ADDR"); val != "" {
		c.ListenAddr = val
	}

	if val := os.Getenv("MARKET_MOVERS_URL"); val != "" {
		c.MarketMoversURL = val
	}
	if val := os.Getenv("MOVERS_MAX_ROWS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MoversMaxRows = v
		}
	}
	if val := os.Getenv("FETCH_TIMEOUT_SECONDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.FetchTimeoutSeconds = v
		}
	}
	if val := os.Getenv("SCRAPER_USER_AGENT"); val != "" {
		c.UserAgent = val
	}
	if val := os.Getenv("QUOTE_PROVIDER"); val != "" {
		c.QuoteProvider = strings.ToLower(val)
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if cache, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = cache
		}
	}
	if val := os.Getenv("CACHE_BACKEND"); val != "" {
		c.CacheBackend = strings.ToLower(val)
	}
	if val := os.Getenv("CACHE_TTL_SECONDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.CacheTTLSeconds = v
		}
	}
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		c.RedisAddr = val
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		c.RedisPassword = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RedisDB = v
		}
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = strings.ToLower(val)
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	if val := os.Getenv("MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}
	if val := os.Getenv("MAX_AGENT_STEPS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxAgentSteps = v
		}
	}

	if val := os.Getenv("FINAGENT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}

	if val := os.Getenv("LONGPORT_APP_KEY"); val != "" {
		c.LongportAppKey = val
	}
	if val := os.Getenv("LONGPORT_APP_SECRET"); val != "" {
		c.LongportAppSecret = val
	}
	if val := os.Getenv("LONGPORT_ACCESS_TOKEN"); val != "" {
		c.LongportAccessToken = val
	}

	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}

	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.LogFormat = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_OUTPUT"); val != "" {
		c.LogOutput = strings.ToLower(val)
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		c.LogFile = val
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.MoversMaxRows < 0 {
		errs = append(errs, fmt.Errorf("movers_max_rows must not be negative, got %d", c.MoversMaxRows))
	}
	if c.FetchTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout_seconds must be positive, got %d", c.FetchTimeoutSeconds))
	}
	switch c.QuoteProvider {
	case "", "yahoo", "longport":
	default:
		errs = append(errs, fmt.Errorf("unknown quote_provider %q", c.QuoteProvider))
	}
	switch c.CacheBackend {
	case "", "file", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown cache_backend %q", c.CacheBackend))
	}
	if c.CacheTTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl_seconds must not be negative, got %d", c.CacheTTLSeconds))
	}
	switch c.LLMProvider {
	case "", "deepseek", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown llm_provider %q", c.LLMProvider))
	}
	if c.MaxAgentSteps < 0 {
		errs = append(errs, fmt.Errorf("max_agent_steps must not be negative, got %d", c.MaxAgentSteps))
	}
	switch c.LogOutput {
	case "", "stdout", "file", "both":
	default:
		errs = append(errs, fmt.Errorf("unknown log_output %q", c.LogOutput))
	}
	return errors.Join(errs...)
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.DataDir, c.DataCacheDir}
	if c.DBPath != "" {
		dirs = append(dirs, filepath.Dir(c.DBPath))
	}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}

func (c *Config) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Redacted returns a copy safe to print: secrets are masked.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		if len(s) <= 4 {
			return "****"
		}
		return s[:2] + "****" + s[len(s)-2:]
	}
	c.DeepSeekAPIKey = mask(c.DeepSeekAPIKey)
	c.OpenAIAPIKey = mask(c.OpenAIAPIKey)
	c.LongportAppKey = mask(c.LongportAppKey)
	c.LongportAppSecret = mask(c.LongportAppSecret)
	c.LongportAccessToken = mask(c.LongportAccessToken)
	c.RedisPassword = mask(c.RedisPassword)
	return c
}
