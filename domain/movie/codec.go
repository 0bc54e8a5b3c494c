package movie

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ItemJSON is the wire and storage shape of a MovieItem.
type ItemJSON struct {
	Title       string   `json:"title" yaml:"title"`
	Overview    string   `json:"overview" yaml:"overview"`
	PosterURL   string   `json:"poster_url,omitempty" yaml:"poster_url,omitempty"`
	ReleaseDate string   `json:"release_date" yaml:"release_date"`
	Rating      float64  `json:"rating" yaml:"rating"`
	WatchOn     []string `json:"watch_on" yaml:"watch_on"`
}

// ToJSON converts a MovieItem to its wire shape. WatchOn is never nil.
func (m MovieItem) ToJSON() ItemJSON {
	watchOn := m.WatchOn()
	if watchOn == nil {
		watchOn = []string{}
	}
	return ItemJSON{
		Title:       m.title,
		Overview:    m.overview,
		PosterURL:   m.posterURL,
		ReleaseDate: m.releaseDate,
		Rating:      m.rating,
		WatchOn:     watchOn,
	}
}

// ToDomain converts the wire shape back to a MovieItem.
func (j ItemJSON) ToDomain() MovieItem {
	return NewMovieItem(j.Title, j.Overview, j.PosterURL, j.ReleaseDate, j.Rating, j.WatchOn)
}

// ItemsToJSON converts a slice of MovieItems to their wire shape.
func ItemsToJSON(items []MovieItem) []ItemJSON {
	out := make([]ItemJSON, len(items))
	for i, item := range items {
		out[i] = item.ToJSON()
	}
	return out
}

// MarshalItems encodes items as the JSON array text persisted with a recommendation.
func MarshalItems(items []MovieItem) (string, error) {
	data, err := json.Marshal(ItemsToJSON(items))
	if err != nil {
		return "", fmt.Errorf("marshal movie items: %w", err)
	}
	return string(data), nil
}

// UnmarshalItems decodes JSON array text into MovieItems. Items without a
// title are rejected.
func UnmarshalItems(text string) ([]MovieItem, error) {
	var raw []ItemJSON
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal movie items: %w", err)
	}
	items := make([]MovieItem, 0, len(raw))
	for i, r := range raw {
		if r.Title == "" {
			return nil, fmt.Errorf("unmarshal movie items: item %d has no title", i)
		}
		items = append(items, r.ToDomain())
	}
	return items, nil
}
