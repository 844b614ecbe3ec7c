// Package config provides environment-driven configuration for the
// application's serve and create-api-key subcommands.
package config

import (
	"fmt"
	"os"
)

// DefaultModel is the chat-completion model used when OPENAI_MODEL is unset.
const DefaultModel = "google/gemma-3-27b-it-qat-q4_0-gguf"

// Options holds the configuration values for the application.
type Options struct {
	// ListenAddr is the server's listening address.
	ListenAddr string

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string

	// OpenAIURL is the base URL of the chat-completion endpoint.
	OpenAIURL string

	// OpenAIModel is the model identifier sent with every completion request.
	OpenAIModel string

	// OpenAIExtraHeaders is a comma-separated list of "Name: Value" pairs
	// attached to every outbound completion call.
	OpenAIExtraHeaders string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Parse reads configuration from the environment. DATABASE_URL is always
// required. OPENAI_URL is required only when forServe is true; the
// create-api-key subcommand never talks to the completion endpoint.
func Parse(forServe bool) (*Options, error) {
	opts := &Options{
		ListenAddr:         getenv("LISTEN_ADDR", "0.0.0.0:3000"),
		DatabaseDSN:        os.Getenv("DATABASE_URL"),
		OpenAIURL:          os.Getenv("OPENAI_URL"),
		OpenAIModel:        getenv("OPENAI_MODEL", DefaultModel),
		OpenAIExtraHeaders: os.Getenv("OPENAI_EXTRA_HEADERS"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
	}

	if opts.DatabaseDSN == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	if forServe && opts.OpenAIURL == "" {
		return nil, fmt.Errorf("OPENAI_URL must be set")
	}

	return opts, nil
}

// getenv returns the value of key, or fallback if unset or empty.
func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
