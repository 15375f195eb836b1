package models

import "time"

// LikeType distinguishes the two reaction variants.
type LikeType string

const (
	LikeTypeLike    LikeType = "like"
	LikeTypeDislike LikeType = "dislike"
)

func (t LikeType) Valid() bool {
	return t == LikeTypeLike || t == LikeTypeDislike
}

// ReactionTarget names what a reaction is attached to.
type ReactionTarget string

const (
	TargetTopic   ReactionTarget = "topic"
	TargetComment ReactionTarget = "comment"
)

func (t ReactionTarget) Valid() bool {
	return t == TargetTopic || t == TargetComment
}

// TopicLike represents a user's reaction to a topic.
// At most one row per (user, topic).
type TopicLike struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	TopicID   string    `json:"topic_id" gorm:"type:uuid;index;uniqueIndex:idx_topic_user_like"`
	UserID    string    `json:"user_id" gorm:"type:uuid;index;uniqueIndex:idx_topic_user_like"`
	LikeType  LikeType  `json:"like_type" gorm:"size:10"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentLike represents a user's reaction to a comment.
// At most one row per (user, comment).
type CommentLike struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CommentID string    `json:"comment_id" gorm:"type:uuid;index;uniqueIndex:idx_comment_user_like"`
	UserID    string    `json:"user_id" gorm:"type:uuid;index;uniqueIndex:idx_comment_user_like"`
	LikeType  LikeType  `json:"like_type" gorm:"size:10"`
	CreatedAt time.Time `json:"created_at"`
}

type SetReactionRequest struct {
	LikeType string `json:"like_type" validate:"required,oneof=like dislike"`
}
