package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/realtime"
	"github.com/saticiyiz/forum-backend/internal/repositories"
	"go.uber.org/zap"
)

// DefaultPageSize is how many notifications a single refresh fetches.
const DefaultPageSize = 20

// retentionCap bounds how many notifications are kept per user; older rows
// are pruned when a new one is created.
const retentionCap = 500

// ErrSelfNotification is returned when the acting user and the recipient are
// the same; likes and comments never notify their own author.
var ErrSelfNotification = errors.New("notification actor and recipient are the same user")

// ErrKindDisabled is returned when the recipient has turned the notification
// kind off, so no row is persisted at all (creation-time gate).
var ErrKindDisabled = errors.New("notification kind disabled by recipient preferences")

// Service owns notification persistence: creation with preference gating,
// listing, read-state transitions, summaries and email bookkeeping. After a
// successful insert the row is pushed onto the realtime feed.
type Service struct {
	repo      repositories.NotificationRepository
	publisher realtime.Publisher
	logger    *zap.Logger
}

func NewService(repo repositories.NotificationRepository, publisher realtime.Publisher, logger *zap.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// Create persists a notification for its recipient. The actor must differ
// from the recipient, and the recipient's per-kind preference flag must allow
// the kind; otherwise nothing is stored. A publish failure after a
// successful insert is logged, not returned: the row exists and will be
// picked up by the next reconcile.
func (s *Service) Create(ctx context.Context, actorID string, n *models.Notification) (string, error) {
	if !n.Type.Valid() {
		return "", fmt.Errorf("unknown notification kind %q", n.Type)
	}
	if actorID != "" && actorID == n.UserID {
		return "", ErrSelfNotification
	}

	prefs, err := s.repo.GetPreferences(ctx, n.UserID)
	if err != nil {
		return "", fmt.Errorf("loading recipient preferences: %w", err)
	}
	if !prefs.AllowsKind(n.Type) {
		s.logger.Debug("notification suppressed by preference",
			zap.String("user_id", n.UserID),
			zap.String("kind", string(n.Type)))
		return "", ErrKindDisabled
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Data == nil {
		n.Data = models.NotificationData{}
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return "", err
	}

	if err := s.repo.PruneOldest(ctx, n.UserID, retentionCap); err != nil {
		s.logger.Warn("notification prune failed", zap.String("user_id", n.UserID), zap.Error(err))
	}

	if s.publisher != nil {
		if err := s.publisher.PublishNotification(ctx, n); err != nil {
			s.logger.Warn("notification publish failed",
				zap.String("notification_id", n.ID),
				zap.Error(err))
		}
	}
	return n.ID, nil
}

// CreateSystem stores a system notification; system events have no actor.
func (s *Service) CreateSystem(ctx context.Context, userID, title, message string, data models.NotificationData) (string, error) {
	return s.Create(ctx, "", &models.Notification{
		UserID:  userID,
		Type:    models.NotificationSystem,
		Title:   title,
		Message: message,
		Data:    data,
	})
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// Summary returns the per-kind aggregate. When the aggregate query fails the
// summary is folded client-side over the notification set instead; only if
// both paths fail is the error returned.
func (s *Service) Summary(ctx context.Context, userID string) (*models.NotificationSummary, error) {
	summary, err := s.repo.GetSummary(ctx, userID)
	if err == nil {
		return summary, nil
	}
	s.logger.Warn("summary aggregate failed, folding client-side",
		zap.String("user_id", userID), zap.Error(err))

	all, listErr := s.repo.GetByUserID(ctx, userID, 50, 0)
	if listErr != nil {
		return nil, err
	}
	return FoldSummary(userID, all), nil
}

// MarkAsRead marks one notification read, reporting whether a row actually
// changed. Marking an already-read notification is a no-op, not an error.
func (s *Service) MarkAsRead(ctx context.Context, notificationID, userID string) (bool, error) {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

// MarkAllAsRead returns the number of rows actually transitioned; zero is a
// valid outcome.
func (s *Service) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *Service) Preferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	return s.repo.GetPreferences(ctx, userID)
}

// UpdatePreferences applies the non-nil toggles from req onto the user's
// stored preferences (creating the row from defaults when absent).
func (s *Service) UpdatePreferences(ctx context.Context, userID string, req *models.UpdatePreferencesRequest) (*models.NotificationPreferences, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&prefs.EmailNotifications, req.EmailNotifications)
	apply(&prefs.BrowserNotifications, req.BrowserNotifications)
	apply(&prefs.DesktopNotifications, req.DesktopNotifications)
	apply(&prefs.CommentNotifications, req.CommentNotifications)
	apply(&prefs.LikeNotifications, req.LikeNotifications)
	apply(&prefs.MentionNotifications, req.MentionNotifications)
	apply(&prefs.FollowNotifications, req.FollowNotifications)
	apply(&prefs.SystemNotifications, req.SystemNotifications)
	prefs.UpdatedAt = time.Now()

	if err := s.repo.UpsertPreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// FoldSummary computes the summary aggregate from a notification slice.
func FoldSummary(userID string, notifications []models.Notification) *models.NotificationSummary {
	summary := &models.NotificationSummary{UserID: userID}
	for i := range notifications {
		n := &notifications[i]
		summary.TotalNotifications++
		if !n.IsRead() {
			summary.UnreadCount++
		}
		switch n.Type {
		case models.NotificationComment:
			summary.CommentCount++
		case models.NotificationLike:
			summary.LikeCount++
		case models.NotificationMention:
			summary.MentionCount++
		case models.NotificationFollow:
			summary.FollowCount++
		case models.NotificationSystem:
			summary.SystemCount++
		}
		if summary.LatestNotification == nil || n.CreatedAt.After(*summary.LatestNotification) {
			t := n.CreatedAt
			summary.LatestNotification = &t
		}
	}
	return summary
}
