package suggestion

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/helixml/moviefinder/domain/movie"
)

var (
	requiredKeys   = []string{"title", "year", "overview"}
	integerLiteral = regexp.MustCompile(`^-?[0-9]+$`)
)

// Parse decodes raw model output in the given format.
func Parse(text string, format Format) ([]movie.Suggestion, error) {
	if format == FormatList {
		return ParseList(text)
	}
	return ParseJSON(text)
}

// ParseJSON decodes a JSON array of {title, year, overview} objects. A
// surrounding code fence is removed first. Every element must carry exactly
// the three keys: a non-empty string title, an integer year and a string
// overview. Failures wrap movie.ErrMalformedSuggestion.
func ParseJSON(text string) ([]movie.Suggestion, error) {
	body := stripFence(text)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", movie.ErrMalformedSuggestion)
	}
	if !strings.HasPrefix(body, "[") {
		return nil, fmt.Errorf("%w: response is not a JSON array", movie.ErrMalformedSuggestion)
	}

	var elements []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &elements); err != nil {
		return nil, fmt.Errorf("%w: decode array: %v", movie.ErrMalformedSuggestion, err)
	}
	if len(elements) > movie.MaxSuggestions {
		return nil, fmt.Errorf("%w: %d items, want at most %d", movie.ErrMalformedSuggestion, len(elements), movie.MaxSuggestions)
	}

	suggestions := make([]movie.Suggestion, 0, len(elements))
	for i, element := range elements {
		s, err := parseElement(element)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", movie.ErrMalformedSuggestion, i, err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

func parseElement(element map[string]json.RawMessage) (movie.Suggestion, error) {
	if element == nil {
		return movie.Suggestion{}, fmt.Errorf("not an object")
	}
	if len(element) != len(requiredKeys) {
		return movie.Suggestion{}, fmt.Errorf("has %d keys, want %s", len(element), strings.Join(requiredKeys, ", "))
	}
	for _, key := range requiredKeys {
		if _, ok := element[key]; !ok {
			return movie.Suggestion{}, fmt.Errorf("missing key %q", key)
		}
	}

	var title string
	if err := decodeStrict(element["title"], &title); err != nil {
		return movie.Suggestion{}, fmt.Errorf("title: %w", err)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return movie.Suggestion{}, fmt.Errorf("title is empty")
	}

	year, err := decodeYear(element["year"])
	if err != nil {
		return movie.Suggestion{}, fmt.Errorf("year: %w", err)
	}

	var overview string
	if err := decodeStrict(element["overview"], &overview); err != nil {
		return movie.Suggestion{}, fmt.Errorf("overview: %w", err)
	}

	return movie.NewDetailedSuggestion(title, year, overview), nil
}

// decodeStrict rejects JSON null, which Unmarshal would otherwise accept as
// the zero value.
func decodeStrict(raw json.RawMessage, v any) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("is null")
	}
	return json.Unmarshal(raw, v)
}

// decodeYear accepts only a bare JSON integer literal.
func decodeYear(raw json.RawMessage) (int, error) {
	lit := string(bytes.TrimSpace(raw))
	if !integerLiteral.MatchString(lit) {
		return 0, fmt.Errorf("%s is not an integer", lit)
	}
	return strconv.Atoi(lit)
}

// ParseList splits plain-text output into titles: one per line, trimmed,
// blank lines dropped. Failures wrap movie.ErrMalformedSuggestion.
func ParseList(text string) ([]movie.Suggestion, error) {
	var suggestions []movie.Suggestion
	for _, line := range strings.Split(stripFence(text), "\n") {
		title := strings.TrimSpace(line)
		if title == "" {
			continue
		}
		suggestions = append(suggestions, movie.NewSuggestion(title))
	}
	if len(suggestions) > movie.MaxSuggestions {
		return nil, fmt.Errorf("%w: %d items, want at most %d", movie.ErrMalformedSuggestion, len(suggestions), movie.MaxSuggestions)
	}
	return suggestions, nil
}

// stripFence removes a surrounding ``` or ```json fence.
func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
