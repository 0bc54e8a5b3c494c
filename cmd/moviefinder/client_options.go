package main

import (
	"log/slog"

	"github.com/helixml/moviefinder"
	"github.com/helixml/moviefinder/infrastructure/catalog"
	"github.com/helixml/moviefinder/infrastructure/provider"
	"github.com/helixml/moviefinder/infrastructure/suggestion"
	"github.com/helixml/moviefinder/internal/config"
)

// clientOptions returns the moviefinder.Option slice derived from AppConfig:
// storage, the suggestion provider, the catalog and pipeline tuning.
func clientOptions(cfg config.AppConfig, logger *slog.Logger) []moviefinder.Option {
	opts := storageOptions(cfg)
	opts = append(opts,
		textOption(cfg.Suggestion()),
		catalogOption(cfg.TMDB()),
		moviefinder.WithSuggestionFormat(suggestion.ParseFormat(string(cfg.Suggestion().Format()))),
		moviefinder.WithMaxTokens(cfg.Suggestion().MaxTokens()),
		moviefinder.WithTemperature(cfg.Suggestion().Temperature()),
		moviefinder.WithParallelism(cfg.Parallelism()),
		moviefinder.WithLogger(logger),
	)
	return opts
}

// storageOptions returns the moviefinder.Option for the configured database.
func storageOptions(cfg config.AppConfig) []moviefinder.Option {
	return []moviefinder.Option{moviefinder.WithDatabaseURL(cfg.DatabaseURL())}
}

// textOption returns the text provider selected by SUGGESTION_PROVIDER.
func textOption(s config.SuggestionConfig) moviefinder.Option {
	if s.Provider() == config.ProviderAnthropic {
		return moviefinder.WithAnthropicConfig(provider.AnthropicConfig{
			APIKey:  s.APIKey(),
			BaseURL: s.BaseURL(),
			Model:   s.Model(),
			Timeout: s.Timeout(),
		})
	}
	return moviefinder.WithOpenAIConfig(provider.OpenAIConfig{
		APIKey:    s.APIKey(),
		BaseURL:   s.BaseURL(),
		ChatModel: s.Model(),
		Timeout:   s.Timeout(),
	})
}

func catalogOption(t config.TMDBConfig) moviefinder.Option {
	return moviefinder.WithTMDBConfig(catalog.Config{
		APIKey:       t.APIKey(),
		BaseURL:      t.BaseURL(),
		ImageBaseURL: t.ImageBaseURL(),
		Timeout:      t.Timeout(),
	})
}
