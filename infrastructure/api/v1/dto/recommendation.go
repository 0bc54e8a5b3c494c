// Package dto holds the request and response bodies of the HTTP API.
package dto

import "time"

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	Description string `json:"description" validate:"required,notblank" example:"A slow-burn sci-fi mystery about memory"`
	MovieType   string `json:"movie_type" validate:"required,notblank" example:"Hollywood"`
	ReleasePref string `json:"release_pref" validate:"required,notblank" example:"any"`
}

// Movie is one enriched recommendation.
type Movie struct {
	Title       string   `json:"title" example:"Arrival"`
	Overview    string   `json:"overview"`
	PosterURL   string   `json:"poster_url,omitempty" example:"https://image.tmdb.org/t/p/w500/x2FJsf1ElAgr63Y3PNPtJrcmpoe.jpg"`
	ReleaseDate string   `json:"release_date" example:"2016-11-10"`
	Rating      float64  `json:"rating" example:"7.6"`
	WatchOn     []string `json:"watch_on"`
}

// RecommendResponse is the body of a successful POST /recommend.
type RecommendResponse struct {
	Preference string  `json:"preference"`
	Movies     []Movie `json:"movies"`
}

// RecommendationRecord is one stored recommendation.
type RecommendationRecord struct {
	ID                int64     `json:"id"`
	UserInput         string    `json:"user_input" example:"Desc: dreams, Type: Hollywood, Pref: any"`
	RecommendedMovies []Movie   `json:"recommended_movies"`
	Timestamp         time.Time `json:"timestamp"`
}

// MessageResponse is the body of GET /.
type MessageResponse struct {
	Message string `json:"message" example:"Smart Movie Finder API is running!"`
}

// StatusResponse is the body of the health endpoints.
type StatusResponse struct {
	Status string `json:"status" example:"healthy"`
}
