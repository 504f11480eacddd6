// Package config provides configuration management for clink.
// It handles loading and parsing of the config.yaml file, environment
// overrides, and the defaults used when no file exists.
package config

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the settings read from config.yaml.
type Config struct {
	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// FuzzyMatch offers candidates that fuzzy-match the typed token instead of
	// only those that start with it.
	FuzzyMatch bool `yaml:"fuzzy_match"`

	// QuoteChar is the character that groups words containing spaces.
	QuoteChar string `yaml:"quote_char"`

	// TreeFiles are extra argument tree files, loaded after the built-in trees
	// and the user's trees.yaml.
	TreeFiles []string `yaml:"tree_files"`

	// HistoryFile is where the interactive session keeps its line history.
	// Empty means the default under the data directory.
	HistoryFile string `yaml:"history_file"`

	// Prompt is shown by the interactive session.
	Prompt string `yaml:"prompt"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		QuoteChar: `"`,
		Prompt:    "clink> ",
	}
}

// Quote returns the configured quote character.
func (c *Config) Quote() rune {
	if c.QuoteChar == "" {
		return '"'
	}
	return []rune(c.QuoteChar)[0]
}

// Level converts LogLevel to a zap level, defaulting to info.
func (c *Config) Level() zap.AtomicLevel {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil {
		level = zapcore.InfoLevel
	}
	return zap.NewAtomicLevelAt(level)
}
