package models

import "time"

// Category groups topics (PostgreSQL)
type Category struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"size:80;uniqueIndex"`
	Slug        string    `json:"slug" gorm:"size:80;uniqueIndex"`
	Description string    `json:"description,omitempty" gorm:"size:300"`
	TopicCount  int64     `json:"topic_count" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
}

// Topic represents a forum thread (PostgreSQL)
type Topic struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	CategoryID   string    `json:"category_id" gorm:"type:uuid;index"`
	UserID       string    `json:"user_id" gorm:"type:uuid;index"`
	Title        string    `json:"title" gorm:"size:200"`
	Content      string    `json:"content"` // markdown
	ViewCount    int64     `json:"view_count" gorm:"default:0"`
	CommentCount int64     `json:"comment_count" gorm:"default:0"`
	LikeCount    int64     `json:"like_count" gorm:"default:0"`
	IsPinned     bool      `json:"is_pinned" gorm:"default:false"`
	IsLocked     bool      `json:"is_locked" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Comment represents a reply on a topic (PostgreSQL)
type Comment struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TopicID   string    `json:"topic_id" gorm:"type:uuid;index"`
	UserID    string    `json:"user_id" gorm:"type:uuid;index"`
	ParentID  *string   `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	Content   string    `json:"content"` // markdown
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Follow represents one user following another (PostgreSQL)
type Follow struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	FollowerID string    `json:"follower_id" gorm:"type:uuid;index;uniqueIndex:idx_follower_followed"`
	FollowedID string    `json:"followed_id" gorm:"type:uuid;index;uniqueIndex:idx_follower_followed"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=80"`
	Slug        string `json:"slug" validate:"required,min=2,max=80"`
	Description string `json:"description,omitempty" validate:"omitempty,max=300"`
}

type CreateTopicRequest struct {
	CategoryID string `json:"category_id" validate:"required,uuid"`
	Title      string `json:"title" validate:"required,min=3,max=200"`
	Content    string `json:"content" validate:"required,min=10"`
}

type UpdateTopicRequest struct {
	Title   string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Content string `json:"content,omitempty" validate:"omitempty,min=10"`
}

type CreateCommentRequest struct {
	Content  string  `json:"content" validate:"required,min=1,max=5000"`
	ParentID *string `json:"parent_id,omitempty" validate:"omitempty,uuid"`
}
