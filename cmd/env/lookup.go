package env

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/sig-0/bobvalue/lookup"
	"github.com/sig-0/bobvalue/lookup/gemini"
	"github.com/sig-0/bobvalue/server/config"
)

// NewLookup creates the official rate lookup from the environment.
// Without an API key the lookup is still created, but every query fails
// and the official rate has to be entered manually
func NewLookup(
	ctx context.Context,
	cfg *config.Lookup,
	logger *slog.Logger,
) (*lookup.Lookup, error) {
	if cfg == nil {
		cfg = config.DefaultLookupConfig()
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	// Load .env
	if err = godotenv.Load(); err != nil {
		logger.Debug("unable to load .env file")
	}

	var (
		model  = lookup.UnavailableModel()
		source = "unavailable"
		apiKey = os.Getenv(Prefix + GeminiAPIKeySuffix)
	)

	if apiKey == "" {
		logger.Warn(
			"missing Gemini API key, official rate lookups will fail",
			"env", Prefix+GeminiAPIKeySuffix,
		)
	} else {
		gm, err := gemini.New(ctx, apiKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("unable to create Gemini model: %w", err)
		}

		model, source = gm, gm.Name()
	}

	return lookup.New(
		model,
		lookup.WithLogger(logger),
		lookup.WithTimeout(timeout),
		lookup.WithSource(source),
	), nil
}
