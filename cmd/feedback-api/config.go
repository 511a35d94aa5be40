// Copyright Hearsay Labs, Inc.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/hearsay-labs/feedback-service/internal/infrastructure/gemini"
	"github.com/hearsay-labs/feedback-service/internal/logging"
)

// flags are the command line flags for the feedback service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the feedback service.
type environment struct {
	Port    string
	NatsURL string
	LiveKit livekitConfig
	Gemini  geminiConfig
}

// livekitConfig holds the LiveKit credentials used for webhook verification
// and join token minting.
type livekitConfig struct {
	APIKey    string
	APISecret string
	ServerURL string
}

// geminiConfig holds the Gemini API configuration.
type geminiConfig struct {
	APIKey string
	Model  string
}

// parseFlags parses command line flags for the feedback service
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the feedback service
func parseEnv() environment {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	return environment{
		Port:    port,
		NatsURL: natsURL,
		LiveKit: parseLiveKitConfig(),
		Gemini:  parseGeminiConfig(),
	}
}

// parseLiveKitConfig parses LiveKit configuration from environment variables
func parseLiveKitConfig() livekitConfig {
	apiKey := os.Getenv("LIVEKIT_API_KEY")
	if apiKey == "" {
		slog.Error("LIVEKIT_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	apiSecret := os.Getenv("LIVEKIT_API_SECRET")
	if apiSecret == "" {
		slog.Error("LIVEKIT_API_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	serverURL := os.Getenv("LIVEKIT_URL")
	if serverURL == "" {
		slog.Error("LIVEKIT_URL environment variable is required but not set")
		os.Exit(1)
	}

	return livekitConfig{
		APIKey:    apiKey,
		APISecret: apiSecret,
		ServerURL: serverURL,
	}
}

// parseGeminiConfig parses Gemini configuration from environment variables
func parseGeminiConfig() geminiConfig {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		slog.Error("GEMINI_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = gemini.DefaultModel
	}

	return geminiConfig{
		APIKey: apiKey,
		Model:  model,
	}
}
