package persistence

import "time"

// RecommendationModel represents a stored recommendation row.
type RecommendationModel struct {
	ID                int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserInput         string    `gorm:"column:user_input;type:text;not null"`
	RecommendedMovies string    `gorm:"column:recommended_movies;type:text;not null"`
	Timestamp         time.Time `gorm:"column:timestamp;autoCreateTime;index"`
}

// TableName returns the table name.
func (RecommendationModel) TableName() string { return "recommendations" }
