package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Reference ReferenceConfig `yaml:"reference"`
	Extract   ExtractConfig   `yaml:"extract"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Telegram  TelegramConfig  `yaml:"telegram"`
}

// ReferenceConfig points at the external data tables. Empty paths fall back to the embedded defaults.
type ReferenceConfig struct {
	CorrectionsFile string `yaml:"corrections_file"` // misrecognized team name -> canonical name
	VocabularyFile  string `yaml:"vocabulary_file"`  // market vocabulary and league header prefixes
}

type ExtractConfig struct {
	Workers int `yaml:"workers"` // parallel document extraction, merge always runs sequentially
}

type OutputConfig struct {
	Dir           string `yaml:"dir"`
	FlatFile      string `yaml:"flat_file"`
	ConflictsFile string `yaml:"conflicts_file"` // empty disables the audit file
	CSVFile       string `yaml:"csv_file"`       // empty disables the CSV copy of the flat extraction
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional JSON log file next to stdout
}

type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// SQLiteConfig selects the local bundle store, used when no postgres DSN is set.
type SQLiteConfig struct {
	Path  string `yaml:"path"` // empty disables the store
	Table string `yaml:"table"`
}

type TelegramConfig struct {
	Enabled      bool          `yaml:"enabled"`
	BotToken     string        `yaml:"bot_token"`
	ChatID       int64         `yaml:"chat_id"`
	SendInterval time.Duration `yaml:"send_interval"`
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Parse decodes YAML bytes and fills defaults for everything left empty.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

func (c *Config) applyDefaults() {
	if c.Extract.Workers <= 0 {
		c.Extract.Workers = 4
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "exports"
	}
	if c.Output.FlatFile == "" {
		c.Output.FlatFile = "matches.json"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Postgres.Table == "" {
		c.Postgres.Table = "day_bundles"
	}
	if c.SQLite.Table == "" {
		c.SQLite.Table = "day_bundles"
	}
	if c.Telegram.SendInterval <= 0 {
		c.Telegram.SendInterval = 2 * time.Second
	}
}

// Validate checks combinations that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}
