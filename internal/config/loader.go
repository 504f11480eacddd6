package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvLogLevel = "CLINK_LOG_LEVEL"
	EnvFuzzy    = "CLINK_FUZZY"
)

// Loader reads config.yaml and applies environment overrides.
type Loader struct {
	logger *zap.Logger
	getenv func(string) string
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		logger: logger,
		getenv: os.Getenv,
	}
}

// LoadResult contains the result of loading a configuration file.
type LoadResult struct {
	Config *Config
	Errors []error
}

// LoadFromFile loads configuration from path.
// If the file doesn't exist, returns default configuration with no error.
func (l *Loader) LoadFromFile(path string) (*LoadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l.finish(&LoadResult{Config: DefaultConfig()}), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.LoadFromString(string(content))
}

// LoadFromString loads configuration from YAML source. Unknown keys and
// invalid values are reported in LoadResult.Errors and leave the defaults in
// place.
func (l *Loader) LoadFromString(source string) (*LoadResult, error) {
	result := &LoadResult{
		Config: DefaultConfig(),
		Errors: []error{},
	}

	dec := yaml.NewDecoder(bytes.NewBufferString(source))
	dec.KnownFields(true)
	if err := dec.Decode(result.Config); err != nil && !errors.Is(err, io.EOF) {
		result.Errors = append(result.Errors, fmt.Errorf("parse error: %w", err))
		result.Config = DefaultConfig()
	}

	if utf8.RuneCountInString(result.Config.QuoteChar) > 1 {
		result.Errors = append(result.Errors, fmt.Errorf("quote_char must be a single character, got %q", result.Config.QuoteChar))
		result.Config.QuoteChar = DefaultConfig().QuoteChar
	}

	return l.finish(result), nil
}

func (l *Loader) finish(result *LoadResult) *LoadResult {
	if v := l.getenv(EnvLogLevel); v != "" {
		result.Config.LogLevel = v
	}
	if v := l.getenv(EnvFuzzy); v != "" {
		fuzzy, err := strconv.ParseBool(v)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", EnvFuzzy, err))
		} else {
			result.Config.FuzzyMatch = fuzzy
		}
	}

	for _, err := range result.Errors {
		l.logger.Warn("config problem", zap.Error(err))
	}
	return result
}
