package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saticiyiz/forum-backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations.
// MarkAsRead and MarkAllAsRead report how many rows actually changed so that
// already-read rows are never counted twice.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	GetSummary(ctx context.Context, userID string) (*models.NotificationSummary, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (bool, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	MarkEmailSent(ctx context.Context, notificationID string) error
	GetPendingEmails(ctx context.Context, limit int) ([]models.Notification, error)
	PruneOldest(ctx context.Context, userID string, keep int) error

	GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error)
	UpsertPreferences(ctx context.Context, prefs *models.NotificationPreferences) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// GetSummary computes the per-kind aggregate in a single grouped query.
func (r *postgresNotificationRepository) GetSummary(ctx context.Context, userID string) (*models.NotificationSummary, error) {
	type kindRow struct {
		Type   models.NotificationKind
		Total  int64
		Unread int64
		Latest *time.Time
	}
	var rows []kindRow
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Select("type, COUNT(*) AS total, COUNT(*) FILTER (WHERE read_at IS NULL) AS unread, MAX(created_at) AS latest").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &models.NotificationSummary{UserID: userID}
	for _, row := range rows {
		summary.TotalNotifications += row.Total
		summary.UnreadCount += row.Unread
		switch row.Type {
		case models.NotificationComment:
			summary.CommentCount = row.Total
		case models.NotificationLike:
			summary.LikeCount = row.Total
		case models.NotificationMention:
			summary.MentionCount = row.Total
		case models.NotificationFollow:
			summary.FollowCount = row.Total
		case models.NotificationSystem:
			summary.SystemCount = row.Total
		}
		if row.Latest != nil && (summary.LatestNotification == nil || row.Latest.After(*summary.LatestNotification)) {
			summary.LatestNotification = row.Latest
		}
	}
	return summary, nil
}

// MarkAsRead sets read_at once; a row that is already read is left untouched.
func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", time.Now())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now())
	return res.RowsAffected, res.Error
}

// MarkEmailSent flips the email bookkeeping fields, independent of read state.
func (r *postgresNotificationRepository) MarkEmailSent(ctx context.Context, notificationID string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND email_sent = false", notificationID).
		Updates(map[string]interface{}{
			"email_sent":    true,
			"email_sent_at": time.Now(),
		}).Error
}

func (r *postgresNotificationRepository) GetPendingEmails(ctx context.Context, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("email_sent = false").
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// PruneOldest deletes a user's rows beyond the newest keep entries.
func (r *postgresNotificationRepository) PruneOldest(ctx context.Context, userID string, keep int) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND id NOT IN (?)", userID,
			r.db.Model(&models.Notification{}).
				Select("id").
				Where("user_id = ?", userID).
				Order("created_at DESC").
				Limit(keep),
		).
		Delete(&models.Notification{}).Error
}

func (r *postgresNotificationRepository) GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// absent row behaves as all-true defaults
			return models.DefaultNotificationPreferences(userID), nil
		}
		return nil, err
	}
	return &prefs, nil
}

func (r *postgresNotificationRepository) UpsertPreferences(ctx context.Context, prefs *models.NotificationPreferences) error {
	var existing models.NotificationPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", prefs.UserID).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if prefs.ID == "" {
			prefs.ID = uuid.NewString()
		}
		return r.db.WithContext(ctx).Create(prefs).Error
	}
	if err != nil {
		return err
	}
	prefs.ID = existing.ID
	prefs.CreatedAt = existing.CreatedAt
	return r.db.WithContext(ctx).Save(prefs).Error
}
