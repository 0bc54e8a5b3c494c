package suggestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/helixml/moviefinder/domain/movie"
	"github.com/helixml/moviefinder/infrastructure/provider"
	"github.com/helixml/moviefinder/internal/metrics"
)

// Generator asks a TextGenerator for movie suggestions.
type Generator struct {
	generator   provider.TextGenerator
	format      Format
	maxTokens   int
	temperature float64
	log         *slog.Logger
}

// NewGenerator creates a Generator answering in JSON format.
func NewGenerator(generator provider.TextGenerator, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		generator:   generator,
		format:      FormatJSON,
		maxTokens:   2048,
		temperature: 0.7,
		log:         log,
	}
}

// WithFormat sets the response format the model is asked for.
func (g *Generator) WithFormat(f Format) *Generator {
	g.format = f
	return g
}

// WithMaxTokens sets the maximum tokens for generation.
func (g *Generator) WithMaxTokens(n int) *Generator {
	g.maxTokens = n
	return g
}

// WithTemperature sets the temperature for generation.
func (g *Generator) WithTemperature(t float64) *Generator {
	g.temperature = t
	return g
}

// Suggest makes one completion call and parses the answer. A failed call
// wraps movie.ErrUpstreamGeneration; an unparseable answer wraps
// movie.ErrMalformedSuggestion. An empty result is not an error here.
func (g *Generator) Suggest(ctx context.Context, request movie.Request) ([]movie.Suggestion, error) {
	prompt := BuildPrompt(request, g.format)

	chatReq := provider.NewChatCompletionRequest([]provider.Message{provider.UserMessage(prompt)}).
		WithMaxTokens(g.maxTokens).
		WithTemperature(g.temperature)

	start := time.Now()
	resp, err := g.generator.ChatCompletion(ctx, chatReq)
	metrics.RecordSuggestion(time.Since(start))
	if err != nil {
		g.log.ErrorContext(ctx, "suggestion call failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", movie.ErrUpstreamGeneration, err)
	}

	suggestions, err := Parse(resp.Content(), g.format)
	if err != nil {
		g.log.ErrorContext(ctx, "suggestion response rejected",
			slog.Any("error", err),
			slog.String("raw", truncate(resp.Content(), 500)),
		)
		return nil, err
	}

	titles := make([]string, len(suggestions))
	for i, s := range suggestions {
		titles[i] = s.Title()
	}
	g.log.InfoContext(ctx, "model suggested titles", slog.Any("titles", titles))

	return suggestions, nil
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

var _ movie.Suggester = (*Generator)(nil)
