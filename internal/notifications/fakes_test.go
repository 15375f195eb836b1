package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/realtime"
)

// fakeNotificationRepo is an in-memory NotificationRepository. Notifications
// are kept newest first, matching the Postgres ordering.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
	prefs         map[string]*models.NotificationPreferences

	listErr    error
	unreadErr  error
	summaryErr error
	createErr  error
	markErr    error
	markAllErr error
	pruneErr   error

	pruneCalls int

	// when set, the next GetByUserID signals listEntered and then waits for
	// listGate before returning
	listGate    chan struct{}
	listEntered chan struct{}
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{prefs: make(map[string]*models.NotificationPreferences)}
}

func (f *fakeNotificationRepo) add(userID string, kind models.NotificationKind, ageAgo time.Duration, read bool) models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		Title:     string(kind),
		CreatedAt: time.Now().Add(-ageAgo),
	}
	if read {
		t := time.Now().Add(-ageAgo)
		n.ReadAt = &t
	}
	f.notifications = append([]models.Notification{n}, f.notifications...)
	return n
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	f.notifications = append([]models.Notification{*n}, f.notifications...)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(_ context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	gate := f.listGate
	f.listGate = nil
	entered := f.listEntered
	f.mu.Unlock()

	// the result is captured before blocking, so a gated call resolves with
	// the data as of its start
	if gate != nil {
		if entered != nil {
			close(entered)
		}
		<-gate
	}

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) GetUnreadCount(_ context.Context, userID string) (int64, error) {
	if f.unreadErr != nil {
		return 0, f.unreadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) GetSummary(_ context.Context, userID string) (*models.NotificationSummary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			mine = append(mine, n)
		}
	}
	return FoldSummary(userID, mine), nil
}

func (f *fakeNotificationRepo) MarkAsRead(_ context.Context, notificationID, userID string) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.ID == notificationID && n.UserID == userID && n.ReadAt == nil {
			now := time.Now()
			n.ReadAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationRepo) MarkAllAsRead(_ context.Context, userID string) (int64, error) {
	if f.markAllErr != nil {
		return 0, f.markAllErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	now := time.Now()
	for i := range f.notifications {
		n := &f.notifications[i]
		if n.UserID == userID && n.ReadAt == nil {
			t := now
			n.ReadAt = &t
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkEmailSent(_ context.Context, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.notifications {
		if f.notifications[i].ID == notificationID {
			now := time.Now()
			f.notifications[i].EmailSent = true
			f.notifications[i].EmailSentAt = &now
		}
	}
	return nil
}

func (f *fakeNotificationRepo) GetPendingEmails(_ context.Context, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if !n.EmailSent {
			out = append(out, n)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) PruneOldest(_ context.Context, userID string, keep int) error {
	f.pruneCalls++
	if f.pruneErr != nil {
		return f.pruneErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []models.Notification
	seen := 0
	for _, n := range f.notifications {
		if n.UserID == userID {
			seen++
			if seen > keep {
				continue
			}
		}
		kept = append(kept, n)
	}
	f.notifications = kept
	return nil
}

func (f *fakeNotificationRepo) GetPreferences(_ context.Context, userID string) (*models.NotificationPreferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.prefs[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return models.DefaultNotificationPreferences(userID), nil
}

func (f *fakeNotificationRepo) UpsertPreferences(_ context.Context, prefs *models.NotificationPreferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *prefs
	f.prefs[prefs.UserID] = &cp
	return nil
}

// fakePublisher records pushed notifications.
type fakePublisher struct {
	mu         sync.Mutex
	published  []models.Notification
	publishErr error
}

func (f *fakePublisher) PublishNotification(_ context.Context, n *models.Notification) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, *n)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

// fakeSubscriber hands the registered callback to the test for direct pushes.
type fakeSubscriber struct {
	mu           sync.Mutex
	fn           func(models.Notification)
	subscribed   int
	unsubscribed int
}

type fakeHandle struct{ sub *fakeSubscriber }

func (h *fakeHandle) Unsubscribe() {
	h.sub.mu.Lock()
	defer h.sub.mu.Unlock()
	h.sub.unsubscribed++
	h.sub.fn = nil
}

func (f *fakeSubscriber) Subscribe(_ context.Context, _ string, fn func(models.Notification)) (realtime.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
	f.subscribed++
	return &fakeHandle{sub: f}, nil
}

func (f *fakeSubscriber) push(n models.Notification) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(n)
	}
}

// recordSink captures coordinator alerts.
type recordSink struct {
	mu     sync.Mutex
	alerts []string
}

func (s *recordSink) Alert(n models.Notification, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, label)
}

func (s *recordSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}
