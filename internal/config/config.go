package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	OpenAI     OpenAIConfig
	RentCast   RentCastConfig
	Agent      AgentConfig
	Cache      CacheConfig
	PostgreSQL PostgreSQLConfig
	Logging    LoggingConfig
	Transcript TranscriptConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// OpenAIConfig holds the model API configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	Model           string
	MaxOutputTokens int
	Timeout         int // seconds
	Enabled         bool
}

// RentCastConfig holds listings API configuration
type RentCastConfig struct {
	APIKey    string
	BaseURL   string
	PageSize  int
	CallAPI   bool // false sends a zeroed key, for offline testing
	Timeout   int  // seconds
	RateLimit float64
	RateBurst int
}

// FieldsConfig switches the filter groups advertised to the model
type FieldsConfig struct {
	ZipCode       bool `yaml:"zip_code"`
	Price         bool `yaml:"price"`
	SquareFootage bool `yaml:"square_footage"`
	Bedrooms      bool `yaml:"bedrooms"`
	PropertyType  bool `yaml:"property_type"`
}

// AgentConfig holds conversation driver configuration
type AgentConfig struct {
	ToolCallLimit      int
	StrictSchema       bool
	AnswerPhase        bool
	DroppedCallPolicy  string // omit | reject
	Fields             FieldsConfig
	ToolInstructions   string
	AnswerInstructions string
	ProfileFile        string
}

// CacheConfig holds listings cache configuration
type CacheConfig struct {
	Backend       string // none | memory | redis | postgres
	TTL           time.Duration
	MaxEntries    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	LogToolCalls       bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string
	Verbosity int // -1 when unset; otherwise overrides Level
	Format    string
	File      string
}

// TranscriptConfig holds CLI transcript output configuration
type TranscriptConfig struct {
	Dir string
}

// Cache backends
const (
	CacheNone     = "none"
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Dropped call policies
const (
	DropOmit   = "omit"
	DropReject = "reject"
)

// Load reads configuration from environment variables and the optional
// agent profile file
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         strings.TrimRight(getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"), "/"),
			Model:           getEnv("OPENAI_MODEL", "gpt-5-mini"),
			MaxOutputTokens: getEnvAsInt("OPENAI_MAX_OUTPUT_TOKENS", 0),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 120),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
		RentCast: RentCastConfig{
			APIKey:    getEnv("RENT_CAST_API_KEY", ""),
			BaseURL:   getEnv("RENT_CAST_BASE_URL", "https://api.rentcast.io/v1/listings/sale"),
			PageSize:  getEnvAsInt("RENT_CAST_PAGE_SIZE", 500),
			CallAPI:   getEnvAsBool("RENT_CAST_CALL_API", true),
			Timeout:   getEnvAsInt("RENT_CAST_TIMEOUT", 30),
			RateLimit: getEnvAsFloat("RENT_CAST_RATE_LIMIT", 0),
			RateBurst: getEnvAsInt("RENT_CAST_RATE_BURST", 1),
		},
		Agent: AgentConfig{
			ToolCallLimit:     getEnvAsInt("TOOL_CALL_LIMIT", 1),
			StrictSchema:      getEnvAsBool("AGENT_STRICT_SCHEMA", false),
			AnswerPhase:       getEnvAsBool("AGENT_ANSWER_PHASE", true),
			DroppedCallPolicy: strings.ToLower(getEnv("AGENT_DROPPED_CALL_POLICY", DropOmit)),
			Fields: FieldsConfig{
				ZipCode:       getEnvAsBool("TOOL_FIELD_ZIP_CODE", true),
				Price:         getEnvAsBool("TOOL_FIELD_PRICE", true),
				SquareFootage: getEnvAsBool("TOOL_FIELD_SQUARE_FOOTAGE", true),
				Bedrooms:      getEnvAsBool("TOOL_FIELD_BEDROOMS", true),
				PropertyType:  getEnvAsBool("TOOL_FIELD_PROPERTY_TYPE", true),
			},
			ProfileFile: getEnv("AGENT_PROFILE_FILE", ""),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(getEnv("CACHE_BACKEND", CacheNone)),
			TTL:           getEnvAsDuration("CACHE_TTL", 10*time.Minute),
			MaxEntries:    getEnvAsInt("CACHE_MAX_ENTRIES", 256),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "homesearch"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
			LogToolCalls:       getEnvAsBool("PG_LOG_TOOL_CALLS", false),
		},
		Logging: LoggingConfig{
			Level:     getEnv("LOG_LEVEL", "info"),
			Verbosity: getEnvAsInt("LOG_VERBOSITY", -1),
			Format:    getEnv("LOG_FORMAT", "text"),
			File:      getEnv("LOG_FILE", ""),
		},
		Transcript: TranscriptConfig{
			Dir: getEnv("TRANSCRIPT_DIR", "transcripts"),
		},
	}

	if cfg.Agent.ProfileFile != "" {
		profile, err := LoadProfile(cfg.Agent.ProfileFile)
		if err != nil {
			return nil, err
		}
		profile.Apply(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks settings the components cannot run without
func (c *Config) Validate() error {
	if c.Agent.ToolCallLimit <= 0 {
		return fmt.Errorf("TOOL_CALL_LIMIT must be positive, got %d", c.Agent.ToolCallLimit)
	}
	if c.RentCast.PageSize <= 0 {
		return fmt.Errorf("RENT_CAST_PAGE_SIZE must be positive, got %d", c.RentCast.PageSize)
	}
	switch c.Agent.DroppedCallPolicy {
	case DropOmit, DropReject:
	default:
		return fmt.Errorf("unknown dropped call policy: %s (want %s or %s)", c.Agent.DroppedCallPolicy, DropOmit, DropReject)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheRedis, CachePostgres:
	default:
		return fmt.Errorf("unknown cache backend: %s", c.Cache.Backend)
	}
	return nil
}

// UsesPostgres reports whether any component needs a database connection
func (c *Config) UsesPostgres() bool {
	return c.Cache.Backend == CachePostgres || c.PostgreSQL.LogToolCalls
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
