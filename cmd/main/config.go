package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// TokenizerConfig holds settings for how corpus files are tokenized.
type TokenizerConfig struct {
	Lowercase bool `json:"lowercase"`
}

// TrainConfig holds settings for model building.
type TrainConfig struct {
	MinBigramCount int `json:"min_bigram_count"`
}

// GenerateConfig holds settings for sentence generation.
type GenerateConfig struct {
	SentenceCount int `json:"sentence_count"`
}

// Config is the top-level configuration struct.
type Config struct {
	LogLevel     string           `json:"log_level"`
	DataDir      string           `json:"data_dir"`
	DatabasePath string           `json:"database_path"`
	Tokenizer    *TokenizerConfig `json:"tokenizer_config"`
	Train        *TrainConfig     `json:"train_config"`
	Generate     *GenerateConfig  `json:"generate_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:     "info",
		DataDir:      "./data",
		DatabasePath: "./data/babbler.db?_journal_mode=WAL&_busy_timeout=5000",
		Tokenizer:    &TokenizerConfig{Lowercase: false},
		Train:        &TrainConfig{MinBigramCount: 0},
		Generate:     &GenerateConfig{SentenceCount: 1},
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Warn instead of failing: the program can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}
