package notifications

import (
	"context"
	"time"

	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/repositories"
	"go.uber.org/zap"
)

// Sender delivers one notification email. Implementations are expected to be
// safe for concurrent use.
type Sender interface {
	SendNotificationEmail(ctx context.Context, recipient *models.User, n *models.Notification) error
}

// LogSender is the default Sender: it only logs what would have been sent.
type LogSender struct {
	Logger *zap.Logger
}

func (s *LogSender) SendNotificationEmail(_ context.Context, recipient *models.User, n *models.Notification) error {
	s.Logger.Info("notification email",
		zap.String("to", recipient.Email),
		zap.String("subject", n.Title),
		zap.String("kind", string(n.Type)))
	return nil
}

// EmailDispatcher periodically drains unsent notifications and emails the
// ones whose owners allow the email channel. Email bookkeeping is
// independent of read state: a notification can be emailed without being
// read and vice versa.
type EmailDispatcher struct {
	repo     repositories.NotificationRepository
	users    repositories.UserRepository
	sender   Sender
	interval time.Duration
	logger   *zap.Logger
}

func NewEmailDispatcher(repo repositories.NotificationRepository, users repositories.UserRepository, sender Sender, interval time.Duration, logger *zap.Logger) *EmailDispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &EmailDispatcher{repo: repo, users: users, sender: sender, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled, draining on the configured interval.
func (d *EmailDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.DispatchPending(ctx)
		}
	}
}

// DispatchPending processes one batch. A notification whose owner disabled
// email is marked sent without sending, so it never comes back around.
func (d *EmailDispatcher) DispatchPending(ctx context.Context) {
	pending, err := d.repo.GetPendingEmails(ctx, 50)
	if err != nil {
		d.logger.Warn("pending email fetch failed", zap.Error(err))
		return
	}

	prefCache := make(map[string]bool)
	for i := range pending {
		n := &pending[i]

		allowed, ok := prefCache[n.UserID]
		if !ok {
			prefs, err := d.repo.GetPreferences(ctx, n.UserID)
			if err != nil {
				d.logger.Warn("preference fetch failed, skipping email",
					zap.String("notification_id", n.ID), zap.Error(err))
				continue
			}
			allowed = prefs.EmailNotifications
			prefCache[n.UserID] = allowed
		}

		if allowed {
			user, err := d.users.GetUserByID(ctx, n.UserID)
			if err != nil {
				d.logger.Warn("recipient lookup failed, skipping email",
					zap.String("notification_id", n.ID), zap.Error(err))
				continue
			}
			if err := d.sender.SendNotificationEmail(ctx, user, n); err != nil {
				d.logger.Warn("email send failed",
					zap.String("notification_id", n.ID), zap.Error(err))
				continue
			}
		}

		if err := d.repo.MarkEmailSent(ctx, n.ID); err != nil {
			d.logger.Warn("marking email sent failed",
				zap.String("notification_id", n.ID), zap.Error(err))
		}
	}
}
