package models

import "time"

// Role names recognized by the role check.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// UserRole grants a user an elevated role (PostgreSQL)
type UserRole struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    string     `json:"user_id" gorm:"type:uuid;index"`
	Role      string     `json:"role" gorm:"size:20;index"`
	GrantedBy string     `json:"granted_by,omitempty" gorm:"type:uuid"`
	GrantedAt time.Time  `json:"granted_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	IsActive  bool       `json:"is_active" gorm:"default:true"`
}

// Report status and type enumerations.
const (
	ReportStatusPending   = "pending"
	ReportStatusResolved  = "resolved"
	ReportStatusDismissed = "dismissed"
)

// UserReport is a moderation report filed by a user (PostgreSQL)
type UserReport struct {
	ID                string     `json:"id" gorm:"type:uuid;primaryKey"`
	ReporterID        string     `json:"reporter_id" gorm:"type:uuid;index"`
	ReportedUserID    *string    `json:"reported_user_id,omitempty" gorm:"type:uuid"`
	ReportedTopicID   *string    `json:"reported_topic_id,omitempty" gorm:"type:uuid"`
	ReportedCommentID *string    `json:"reported_comment_id,omitempty" gorm:"type:uuid"`
	ReportType        string     `json:"report_type" gorm:"size:20"` // spam, inappropriate, harassment, copyright, other
	Reason            string     `json:"reason" gorm:"size:1000"`
	Status            string     `json:"status" gorm:"size:20;default:pending;index"`
	AdminNotes        string     `json:"admin_notes,omitempty" gorm:"size:1000"`
	ResolvedBy        *string    `json:"resolved_by,omitempty" gorm:"type:uuid"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// SystemSetting is a typed key/value configuration row (PostgreSQL)
type SystemSetting struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	SettingKey   string    `json:"setting_key" gorm:"size:80;uniqueIndex"`
	SettingValue string    `json:"setting_value"`
	SettingType  string    `json:"setting_type" gorm:"size:10"` // string, integer, boolean, json
	Description  string    `json:"description,omitempty" gorm:"size:300"`
	IsPublic     bool      `json:"is_public" gorm:"default:false"`
	UpdatedBy    string    `json:"updated_by,omitempty" gorm:"type:uuid"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminAction is one audit-log entry (PostgreSQL)
type AdminAction struct {
	ID         string           `json:"id" gorm:"type:uuid;primaryKey"`
	AdminID    string           `json:"admin_id" gorm:"type:uuid;index"`
	ActionType string           `json:"action_type" gorm:"size:40;index"`
	TargetType string           `json:"target_type,omitempty" gorm:"size:20"`
	TargetID   string           `json:"target_id,omitempty"`
	Details    NotificationData `json:"details,omitempty" gorm:"type:jsonb;default:'{}'"`
	IPAddress  string           `json:"ip_address,omitempty" gorm:"size:45"`
	UserAgent  string           `json:"user_agent,omitempty" gorm:"size:300"`
	CreatedAt  time.Time        `json:"created_at" gorm:"index"`
}

// DashboardStats aggregates the admin landing numbers.
type DashboardStats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalTopics    int64 `json:"total_topics"`
	TotalComments  int64 `json:"total_comments"`
	PendingReports int64 `json:"pending_reports"`
	TopicsToday    int64 `json:"topics_today"`
	CommentsToday  int64 `json:"comments_today"`
	NewUsersToday  int64 `json:"new_users_today"`
}

type CreateReportRequest struct {
	ReportedUserID    *string `json:"reported_user_id,omitempty" validate:"omitempty,uuid"`
	ReportedTopicID   *string `json:"reported_topic_id,omitempty" validate:"omitempty,uuid"`
	ReportedCommentID *string `json:"reported_comment_id,omitempty" validate:"omitempty,uuid"`
	ReportType        string  `json:"report_type" validate:"required,oneof=spam inappropriate harassment copyright other"`
	Reason            string  `json:"reason" validate:"required,min=10,max=1000"`
}

type ResolveReportRequest struct {
	Status     string `json:"status" validate:"required,oneof=resolved dismissed"`
	AdminNotes string `json:"admin_notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateSettingRequest struct {
	SettingValue string `json:"setting_value" validate:"required"`
}
