package models

import "time"

// UserPoints is the one-per-user gamification counter (PostgreSQL)
type UserPoints struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:uuid;uniqueIndex"`
	Points    int64     `json:"points" gorm:"default:0"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberLevel is the display tier derived from points.
type MemberLevel struct {
	Name      string `json:"name"`
	MinPoints int64  `json:"min_points"`
	Icon      string `json:"icon"`
}
