// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Provider names for the generative-image backends.
const (
	ProviderGemini    = "gemini"
	ProviderStability = "stability"
)

// Config holds everything the server reads from the environment. API keys
// are resolved separately by the auth package.
type Config struct {
	// Provider selects the image-generation backend: "gemini" (default)
	// or "stability".
	Provider string
	// GeminiModel overrides the default Gemini image model.
	GeminiModel string
	// WatermarkLabel is stamped onto generated previews. Empty disables
	// watermarking.
	WatermarkLabel string
}

// Load reads configuration, merging a .env file if one is present.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Provider:       os.Getenv("YARDSTAGE_PROVIDER"),
		GeminiModel:    os.Getenv("YARDSTAGE_MODEL"),
		WatermarkLabel: os.Getenv("YARDSTAGE_WATERMARK"),
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	if cfg.WatermarkLabel == "" {
		cfg.WatermarkLabel = "YARDSTAGE PREVIEW"
	}
	return cfg, nil
}
