package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationKind is the closed category tag of a notification.
type NotificationKind string

const (
	NotificationComment NotificationKind = "comment"
	NotificationLike    NotificationKind = "like"
	NotificationMention NotificationKind = "mention"
	NotificationFollow  NotificationKind = "follow"
	NotificationSystem  NotificationKind = "system"
)

// Valid reports whether k is one of the known notification kinds.
func (k NotificationKind) Valid() bool {
	switch k {
	case NotificationComment, NotificationLike, NotificationMention, NotificationFollow, NotificationSystem:
		return true
	}
	return false
}

// NotificationData is the open-ended payload bag used to build deep links
// (topic id, comment id, actor username and similar). Stored as JSONB.
type NotificationData map[string]interface{}

func (d NotificationData) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *NotificationData) Scan(value interface{}) error {
	if value == nil {
		*d = NotificationData{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported notification data type %T", value)
	}
	return json.Unmarshal(b, d)
}

// Notification represents one event directed at a user (PostgreSQL).
// ReadAt transitions only null -> non-null; EmailSent only false -> true.
type Notification struct {
	ID          string           `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string           `json:"user_id" gorm:"type:uuid;index"`
	Type        NotificationKind `json:"type" gorm:"size:20;index"`
	Title       string           `json:"title" gorm:"size:100"`
	Message     string           `json:"message"`
	Data        NotificationData `json:"data" gorm:"type:jsonb;default:'{}'"`
	ReadAt      *time.Time       `json:"read_at"`
	EmailSent   bool             `json:"email_sent" gorm:"default:false"`
	EmailSentAt *time.Time       `json:"email_sent_at"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// NotificationPreferences is the one-per-user record of delivery toggles.
// An absent row behaves as all-true defaults.
type NotificationPreferences struct {
	ID                   string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID               string    `json:"user_id" gorm:"type:uuid;uniqueIndex"`
	EmailNotifications   bool      `json:"email_notifications" gorm:"default:true"`
	BrowserNotifications bool      `json:"browser_notifications" gorm:"default:true"`
	DesktopNotifications bool      `json:"desktop_notifications" gorm:"default:true"`
	CommentNotifications bool      `json:"comment_notifications" gorm:"default:true"`
	LikeNotifications    bool      `json:"like_notifications" gorm:"default:true"`
	MentionNotifications bool      `json:"mention_notifications" gorm:"default:true"`
	FollowNotifications  bool      `json:"follow_notifications" gorm:"default:true"`
	SystemNotifications  bool      `json:"system_notifications" gorm:"default:true"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DefaultNotificationPreferences returns the all-true defaults used when a
// user has no stored preferences row.
func DefaultNotificationPreferences(userID string) *NotificationPreferences {
	return &NotificationPreferences{
		UserID:               userID,
		EmailNotifications:   true,
		BrowserNotifications: true,
		DesktopNotifications: true,
		CommentNotifications: true,
		LikeNotifications:    true,
		MentionNotifications: true,
		FollowNotifications:  true,
		SystemNotifications:  true,
	}
}

// AllowsKind reports whether the user has notifications of the given kind
// enabled. Checked when a notification is created and again before a
// realtime alert is shown.
func (p *NotificationPreferences) AllowsKind(kind NotificationKind) bool {
	switch kind {
	case NotificationComment:
		return p.CommentNotifications
	case NotificationLike:
		return p.LikeNotifications
	case NotificationMention:
		return p.MentionNotifications
	case NotificationFollow:
		return p.FollowNotifications
	case NotificationSystem:
		return p.SystemNotifications
	}
	return false
}

type UpdatePreferencesRequest struct {
	EmailNotifications   *bool `json:"email_notifications,omitempty"`
	BrowserNotifications *bool `json:"browser_notifications,omitempty"`
	DesktopNotifications *bool `json:"desktop_notifications,omitempty"`
	CommentNotifications *bool `json:"comment_notifications,omitempty"`
	LikeNotifications    *bool `json:"like_notifications,omitempty"`
	MentionNotifications *bool `json:"mention_notifications,omitempty"`
	FollowNotifications  *bool `json:"follow_notifications,omitempty"`
	SystemNotifications  *bool `json:"system_notifications,omitempty"`
}

// NotificationSummary is a derived, read-only aggregate over one user's
// notifications. It is never persisted on its own.
type NotificationSummary struct {
	UserID             string     `json:"user_id"`
	TotalNotifications int64      `json:"total_notifications"`
	UnreadCount        int64      `json:"unread_count"`
	CommentCount       int64      `json:"comment_count"`
	LikeCount          int64      `json:"like_count"`
	MentionCount       int64      `json:"mention_count"`
	FollowCount        int64      `json:"follow_count"`
	SystemCount        int64      `json:"system_count"`
	LatestNotification *time.Time `json:"latest_notification"`
}
