// Package config loads application configuration. Values are layered:
// built-in defaults, then an optional YAML file, then COGNIQUIZ_
// environment variables. A .env file in the working directory is loaded
// into the environment first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "cogniquiz.yaml"

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Quiz     QuizConfig     `yaml:"quiz"`
	Chunking ChunkingConfig `yaml:"chunking"`
}

// DatabaseConfig selects the persistence backend.
// Driver is "sqlite", "postgres" or "memory". An empty sqlite DSN means
// the default database path.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CacheConfig holds Redis context cache settings. An empty URL disables
// caching.
type CacheConfig struct {
	URL string        `yaml:"url"`
	TTL time.Duration `yaml:"ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// QuizConfig holds quiz defaults.
type QuizConfig struct {
	DefaultQuestions int     `yaml:"default_questions"`
	PassingScore     float64 `yaml:"passing_score"`
}

// ChunkingConfig holds chunk sizing, in bytes.
type ChunkingConfig struct {
	TargetSize int `yaml:"target_size"`
	Overlap    int `yaml:"overlap"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Driver: "sqlite"},
		Cache:    CacheConfig{TTL: time.Hour},
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Log:      LogConfig{Level: "info", Format: "text"},
		Quiz:     QuizConfig{DefaultQuestions: 5, PassingScore: 70},
		Chunking: ChunkingConfig{TargetSize: 500, Overlap: 50},
	}
}

// Load builds the configuration. path may be empty, in which case
// DefaultFile is read if it exists.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Database.Driver = envStr("COGNIQUIZ_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = envStr("COGNIQUIZ_DB_DSN", c.Database.DSN)
	c.Cache.URL = envStr("COGNIQUIZ_CACHE_URL", c.Cache.URL)
	c.Cache.TTL = envDuration("COGNIQUIZ_CACHE_TTL", c.Cache.TTL)
	c.Server.Addr = envStr("COGNIQUIZ_SERVER_ADDR", c.Server.Addr)
	if v := os.Getenv("COGNIQUIZ_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = strings.Split(v, ",")
	}
	c.Log.Level = envStr("COGNIQUIZ_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envStr("COGNIQUIZ_LOG_FORMAT", c.Log.Format)
	c.Quiz.DefaultQuestions = envInt("COGNIQUIZ_QUIZ_QUESTIONS", c.Quiz.DefaultQuestions)
	c.Quiz.PassingScore = envFloat("COGNIQUIZ_QUIZ_PASSING_SCORE", c.Quiz.PassingScore)
	c.Chunking.TargetSize = envInt("COGNIQUIZ_CHUNK_SIZE", c.Chunking.TargetSize)
	c.Chunking.Overlap = envInt("COGNIQUIZ_CHUNK_OVERLAP", c.Chunking.Overlap)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("database.driver must be sqlite, postgres or memory, got %q", c.Database.Driver)
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for postgres")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Quiz.PassingScore <= 0 || c.Quiz.PassingScore > 100 {
		return fmt.Errorf("quiz.passing_score must be in (0, 100], got %v", c.Quiz.PassingScore)
	}
	if c.Chunking.TargetSize <= 0 || c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.TargetSize {
		return fmt.Errorf("chunking: need 0 <= overlap < target_size, got %d/%d", c.Chunking.Overlap, c.Chunking.TargetSize)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
