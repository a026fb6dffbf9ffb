package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all mindcheck configuration.
type Config struct {
	// UserID identifies this installation in the asked-question store.
	// Generated on first run.
	UserID string `yaml:"user_id"`

	// Namespace scopes asked-question records, so several apps can share
	// one document store.
	Namespace string `yaml:"namespace"`

	QuestionCounts []int `yaml:"question_counts"`
	DefaultCount   int   `yaml:"default_count"`

	Store    StoreConfig    `yaml:"store"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`

	ExportDir string `yaml:"export_dir"`
	LogFile   string `yaml:"log_file"`
}

// StoreConfig selects where asked-question records live.
type StoreConfig struct {
	Backend       string `yaml:"backend"` // sqlite, mongo
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// TimeoutsConfig holds per-call deadlines as duration strings ("30s").
type TimeoutsConfig struct {
	Classify  string `yaml:"classify"`
	Generate  string `yaml:"generate"`
	Analyze   string `yaml:"analyze"`
	Stability string `yaml:"stability"`
	Store     string `yaml:"store"`
}

// DefaultConfig returns a Config with default values. UserID is left empty.
func DefaultConfig() *Config {
	return &Config{
		Namespace:      "mindcheck",
		QuestionCounts: []int{5, 15},
		DefaultCount:   5,
		Store: StoreConfig{
			Backend:       "sqlite",
			MongoDatabase: "mindcheck",
		},
		Timeouts: TimeoutsConfig{
			Classify:  "20s",
			Generate:  "60s",
			Analyze:   "90s",
			Stability: "30s",
			Store:     "10s",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/mindcheck/config.yaml, or
// MINDCHECK_CONFIG if set.
func DefaultPath() string {
	if p := os.Getenv("MINDCHECK_CONFIG"); p != "" {
		return p
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if d, err := os.UserConfigDir(); err == nil {
			dir = d
		} else {
			home, _ := os.UserHomeDir()
			dir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(dir, "mindcheck", "config.yaml")
}

// LoadDotEnv loads ./.env into the process environment if present.
// Variables already set are not overridden.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads the config file at path. A missing file yields the defaults.
// Environment overrides are applied afterwards.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadOrInit loads the config and, if it has no user id yet, generates one
// and saves the file back.
func LoadOrInit(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.UserID != "" {
		return cfg, nil
	}

	cfg.UserID = uuid.NewString()
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MINDCHECK_USER_ID"); v != "" {
		c.UserID = v
	}
	if v := os.Getenv("MINDCHECK_NAMESPACE"); v != "" {
		c.Namespace = v
	}
	if v := os.Getenv("MINDCHECK_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("MINDCHECK_MONGO_URI"); v != "" {
		c.Store.MongoURI = v
		if os.Getenv("MINDCHECK_STORE") == "" {
			c.Store.Backend = "mongo"
		}
	}
	if v := os.Getenv("MINDCHECK_MONGO_DATABASE"); v != "" {
		c.Store.MongoDatabase = v
	}
	if v := os.Getenv("MINDCHECK_EXPORT_DIR"); v != "" {
		c.ExportDir = v
	}
	if v := os.Getenv("MINDCHECK_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("MINDCHECK_DEFAULT_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DefaultCount = n
		}
	}
}

// Validate checks the config for values the app cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Namespace) == "" {
		return fmt.Errorf("namespace must not be empty")
	}
	if len(c.QuestionCounts) == 0 {
		return fmt.Errorf("question_counts must not be empty")
	}
	found := false
	for _, n := range c.QuestionCounts {
		if n < 1 {
			return fmt.Errorf("question_counts: %d is not a positive count", n)
		}
		if n == c.DefaultCount {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("default_count %d is not one of question_counts %v", c.DefaultCount, c.QuestionCounts)
	}

	switch c.Store.Backend {
	case "sqlite":
	case "mongo":
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store.mongo_uri is required for the mongo backend")
		}
		if c.Store.MongoDatabase == "" {
			return fmt.Errorf("store.mongo_database is required for the mongo backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %q", c.Store.Backend)
	}

	for name, v := range map[string]string{
		"classify":  c.Timeouts.Classify,
		"generate":  c.Timeouts.Generate,
		"analyze":   c.Timeouts.Analyze,
		"stability": c.Timeouts.Stability,
		"store":     c.Timeouts.Store,
	} {
		if v == "" {
			continue
		}
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("timeouts.%s: %w", name, err)
		}
	}
	return nil
}

// Timeout parses one of the timeout strings, falling back to def when it
// is empty or invalid.
func Timeout(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}

// ClassifyTimeout returns the topic-classification deadline.
func (c *Config) ClassifyTimeout() time.Duration { return Timeout(c.Timeouts.Classify, 20*time.Second) }

// GenerateTimeout returns the question-generation deadline.
func (c *Config) GenerateTimeout() time.Duration { return Timeout(c.Timeouts.Generate, 60*time.Second) }

// AnalyzeTimeout returns the analysis deadline.
func (c *Config) AnalyzeTimeout() time.Duration { return Timeout(c.Timeouts.Analyze, 90*time.Second) }

// StabilityTimeout returns the stability-assessment deadline.
func (c *Config) StabilityTimeout() time.Duration {
	return Timeout(c.Timeouts.Stability, 30*time.Second)
}

// StoreTimeout returns the deadline for asked-record reads and writes.
func (c *Config) StoreTimeout() time.Duration { return Timeout(c.Timeouts.Store, 10*time.Second) }
