// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const Version = "1.0.0"

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Logging     LoggingConfig
	Scraper     ScraperConfig
	Discovery   DiscoveryConfig
	LLM         LLMConfig
	AWS         AWSConfig
	Storage     StorageConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type LoggingConfig struct {
	Level  string
	Format string // text or json
}

// ScraperConfig drives the fetcher, the extractors and the catalog reader.
type ScraperConfig struct {
	UserAgent            string
	RequestTimeout       time.Duration
	MaxRedirects         int
	MaxBodySize          int64
	DelayBetweenRequests time.Duration
	RespectRobots        bool

	CatalogPageSize int
	MaxCatalogPages int
	MaxFAQs         int
	MaxLinks        int
	MaxHeroProducts int
	ContextLimit    int
	PolicyTextLimit int
	FAQAnswerLimit  int
	FollowSubpages  bool
	CompetitorPages int
}

type DiscoveryConfig struct {
	Enabled        bool
	MaxCompetitors int
	Workers        int
	SearchEndpoint string
	SeedDomains    []string
	BlockedDomains []string
}

type LLMConfig struct {
	APIKey       string
	Endpoint     string
	Model        string
	Timeout      time.Duration
	MaxTokens    int
	Temperature  float64
	PromptBudget int
}

// Enabled reports whether a summarizer can be called at all.
func (l LLMConfig) Enabled() bool {
	return l.APIKey != ""
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type StorageConfig struct {
	SnapshotsEnabled bool
	LocalPath        string
	BaseURL          string
}

type RateLimitConfig struct {
	AnalyzePerMinute int
	AnalyzeBurst     int
}

var defaultSeedDomains = []string{
	"gymshark.com",
	"allbirds.com",
	"colourpop.com",
	"bombas.com",
	"casper.com",
	"warbyparker.com",
	"glossier.com",
	"away.com",
	"outdoorvoices.com",
	"everlane.com",
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 300),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "shopify_insights"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Scraper: ScraperConfig{
			UserAgent:            getEnv("SCRAPER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),
			RequestTimeout:       getEnvAsDuration("SCRAPER_REQUEST_TIMEOUT", 30*time.Second),
			MaxRedirects:         getEnvAsInt("SCRAPER_MAX_REDIRECTS", 5),
			MaxBodySize:          int64(getEnvAsInt("SCRAPER_MAX_BODY_BYTES", 10<<20)),
			DelayBetweenRequests: getEnvAsDuration("SCRAPER_REQUEST_DELAY", time.Second),
			RespectRobots:        getEnvAsBool("SCRAPER_RESPECT_ROBOTS", false),
			CatalogPageSize:      getEnvAsInt("SCRAPER_CATALOG_PAGE_SIZE", 250),
			MaxCatalogPages:      getEnvAsInt("SCRAPER_MAX_CATALOG_PAGES", 20),
			MaxFAQs:              getEnvAsInt("SCRAPER_MAX_FAQS", 10),
			MaxLinks:             getEnvAsInt("SCRAPER_MAX_LINKS", 25),
			MaxHeroProducts:      getEnvAsInt("SCRAPER_MAX_HERO_PRODUCTS", 10),
			ContextLimit:         getEnvAsInt("SCRAPER_CONTEXT_LIMIT", 1000),
			PolicyTextLimit:      getEnvAsInt("SCRAPER_POLICY_LIMIT", 2000),
			FAQAnswerLimit:       getEnvAsInt("SCRAPER_FAQ_ANSWER_LIMIT", 500),
			FollowSubpages:       getEnvAsBool("SCRAPER_FOLLOW_SUBPAGES", true),
			CompetitorPages:      getEnvAsInt("SCRAPER_COMPETITOR_CATALOG_PAGES", 1),
		},
		Discovery: DiscoveryConfig{
			Enabled:        getEnvAsBool("DISCOVERY_SEARCH_ENABLED", true),
			MaxCompetitors: getEnvAsInt("DISCOVERY_MAX_COMPETITORS", 3),
			Workers:        getEnvAsInt("DISCOVERY_WORKERS", 2),
			SearchEndpoint: getEnv("DISCOVERY_SEARCH_ENDPOINT", "https://html.duckduckgo.com/html/"),
			SeedDomains:    getEnvAsList("DISCOVERY_SEED_DOMAINS", defaultSeedDomains),
			BlockedDomains: getEnvAsList("DISCOVERY_BLOCKED_DOMAINS", nil),
		},
		LLM: LLMConfig{
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			Endpoint:     getEnv("LLM_ENDPOINT", "https://api.openai.com/v1"),
			Model:        getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			MaxTokens:    getEnvAsInt("LLM_MAX_TOKENS", 1000),
			Temperature:  getEnvAsFloat("LLM_TEMPERATURE", 0.3),
			PromptBudget: getEnvAsInt("LLM_PROMPT_BUDGET", 6000),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Storage: StorageConfig{
			SnapshotsEnabled: getEnvAsBool("SNAPSHOTS_ENABLED", false),
			LocalPath:        getEnv("SNAPSHOTS_LOCAL_PATH", "./snapshots"),
			BaseURL:          getEnv("SNAPSHOTS_BASE_URL", "/snapshots"),
		},
		RateLimit: RateLimitConfig{
			AnalyzePerMinute: getEnvAsInt("RATE_LIMIT_ANALYZE_PER_MINUTE", 6),
			AnalyzeBurst:     getEnvAsInt("RATE_LIMIT_ANALYZE_BURST", 3),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Scraper.RequestTimeout <= 0 {
		return fmt.Errorf("scraper request timeout must be positive")
	}

	if c.Scraper.MaxRedirects < 0 {
		return fmt.Errorf("scraper max redirects cannot be negative")
	}

	if c.Discovery.MaxCompetitors < 0 {
		return fmt.Errorf("discovery max competitors cannot be negative")
	}

	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive")
	}

	if c.Storage.SnapshotsEnabled && c.AWS.S3Bucket == "" && c.Storage.LocalPath == "" {
		return fmt.Errorf("snapshots need either an S3 bucket or a local path")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// bare integers are seconds
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
