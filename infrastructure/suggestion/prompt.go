// Package suggestion turns a recommendation request into candidate movies
// using a text generation provider.
package suggestion

import (
	"fmt"
	"strings"

	"github.com/helixml/moviefinder/domain/movie"
)

// Format is the layout the model is asked to answer in.
type Format string

// Format values.
const (
	FormatJSON Format = "json"
	FormatList Format = "list"
)

// ParseFormat converts a string to a Format, defaulting to FormatJSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatList)) {
		return FormatList
	}
	return FormatJSON
}

const jsonInstructions = `You MUST return your answer as a valid JSON array.
Each object in the array must have ONLY these three keys: "title", "year", and "overview".
The "year" must be a number. The "overview" should be a short, 1-2 sentence description.
Do not include any text before or after the array.

Example JSON format:
[
  {
    "title": "Movie Title One",
    "year": 1999,
    "overview": "A short, 1-2 sentence overview of the movie."
  },
  {
    "title": "Movie Title Two",
    "year": 2005,
    "overview": "Another short overview for the second movie."
  }
]`

const listInstructions = `Return ONLY the movie titles, one per line.
Do not number the lines and do not add any other text.`

// BuildPrompt renders the prompt for a request. The three request fields are
// embedded verbatim and the output is identical for identical inputs.
func BuildPrompt(request movie.Request, format Format) string {
	instructions := jsonInstructions
	if format == FormatList {
		instructions = listInstructions
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the user's request, give me a list of exactly %d movie recommendations.\n\n", movie.MaxSuggestions)
	fmt.Fprintf(&b, "User's detailed description: \"%s\"\n", request.Description())
	fmt.Fprintf(&b, "Movie Type (region): \"%s\"\n", request.MovieType())
	fmt.Fprintf(&b, "Release Preference: \"%s\"\n\n", request.ReleasePref())
	b.WriteString(instructions)
	return b.String()
}
