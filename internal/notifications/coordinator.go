package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/realtime"
	"go.uber.org/zap"
)

// reconcileInterval is how often the unread count is re-fetched to heal from
// missed push events.
const reconcileInterval = 2 * time.Minute

// AlertSink receives the user-visible alert for a pushed notification once
// the delivery-time preference gate has let it through.
type AlertSink interface {
	Alert(n models.Notification, label string)
}

// State is a point-in-time copy of the coordinator's view.
type State struct {
	Notifications []models.Notification
	UnreadCount   int64
	Summary       *models.NotificationSummary
	Loading       bool
	Err           string
	Initialized   bool
}

// Coordinator is the single source of truth, within one client session, for
// which notifications the user has and which are unread. It bridges the
// realtime insert feed into that state and persists read transitions
// store-first: local state only changes after the store accepted the write.
type Coordinator struct {
	userID string
	svc    *Service
	sub    realtime.Subscriber
	sink   AlertSink
	logger *zap.Logger

	mu            sync.Mutex
	notifications []models.Notification
	unreadCount   int64
	summary       *models.NotificationSummary
	loading       bool
	err           string
	initialized   bool
	prefs         *models.NotificationPreferences
	refreshSeq    uint64

	handle  realtime.Handle
	stopCh  chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

func NewCoordinator(userID string, svc *Service, sub realtime.Subscriber, sink AlertSink, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		userID: userID,
		svc:    svc,
		sub:    sub,
		sink:   sink,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Refresh fetches the most recent page, the unread count and the summary.
// List and unread-count failures are fatal to the refresh: the error is
// recorded and the previous state is kept. A summary failure only leaves the
// summary absent. Overlapping refreshes are resolved last-issued-wins: each
// call takes a token and a resolution older than the newest issued token is
// discarded.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.refreshSeq++
	token := c.refreshSeq
	c.loading = true
	c.err = ""
	c.mu.Unlock()

	list, listErr := c.svc.List(ctx, c.userID, DefaultPageSize, 0)
	var unread int64
	var unreadErr error
	if listErr == nil {
		unread, unreadErr = c.svc.UnreadCount(ctx, c.userID)
	}

	var summary *models.NotificationSummary
	if listErr == nil && unreadErr == nil {
		var summaryErr error
		summary, summaryErr = c.svc.Summary(ctx, c.userID)
		if summaryErr != nil {
			c.logger.Warn("summary fetch failed, continuing without",
				zap.String("user_id", c.userID), zap.Error(summaryErr))
			summary = nil
		}
	}

	prefs, prefsErr := c.svc.Preferences(ctx, c.userID)
	if prefsErr != nil {
		prefs = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.refreshSeq {
		// a newer refresh was issued; this result is stale
		return nil
	}
	c.loading = false

	if listErr != nil {
		c.err = fmt.Sprintf("Bildirimler alınamadı: %v", listErr)
		c.initialized = true
		return listErr
	}
	if unreadErr != nil {
		c.err = fmt.Sprintf("Okunmamış sayısı alınamadı: %v", unreadErr)
		c.initialized = true
		return unreadErr
	}

	c.notifications = list
	c.unreadCount = unread
	c.summary = summary
	if prefs != nil {
		c.prefs = prefs
	}
	c.initialized = true
	return nil
}

// MarkAsRead persists the read transition first; local state is updated only
// after the store accepted it. Counts are floored at zero and a notification
// that was already read does not decrement anything.
func (c *Coordinator) MarkAsRead(ctx context.Context, notificationID string) error {
	changed, err := c.svc.MarkAsRead(ctx, notificationID, c.userID)
	if err != nil {
		c.mu.Lock()
		c.err = fmt.Sprintf("Bildirim işaretlenirken hata oluştu: %v", err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = ""
	if !changed {
		return nil
	}

	now := time.Now()
	var kind models.NotificationKind
	for i := range c.notifications {
		if c.notifications[i].ID == notificationID {
			kind = c.notifications[i].Type
			if c.notifications[i].ReadAt == nil {
				c.notifications[i].ReadAt = &now
			}
			break
		}
	}
	if c.unreadCount > 0 {
		c.unreadCount--
	}
	if c.summary != nil {
		if c.summary.UnreadCount > 0 {
			c.summary.UnreadCount--
		}
		decrementKind(c.summary, kind)
	}
	return nil
}

// MarkAllAsRead persists the bulk transition and applies it locally without
// overwriting read timestamps that were already set. Returns the number of
// rows the store actually changed; zero means there was nothing to do.
func (c *Coordinator) MarkAllAsRead(ctx context.Context) (int64, error) {
	count, err := c.svc.MarkAllAsRead(ctx, c.userID)
	if err != nil {
		c.mu.Lock()
		c.err = fmt.Sprintf("Bildirimler işaretlenirken hata oluştu: %v", err)
		c.mu.Unlock()
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = ""
	now := time.Now()
	for i := range c.notifications {
		if c.notifications[i].ReadAt == nil {
			t := now
			c.notifications[i].ReadAt = &t
		}
	}
	c.unreadCount = 0
	if c.summary != nil {
		c.summary.UnreadCount = 0
	}
	return count, nil
}

// Start opens the realtime subscription and the periodic unread reconcile.
// It requires a completed first refresh and holds exactly one subscription
// until Stop; the subscription depends only on the user identity, never on
// the notification list itself.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return fmt.Errorf("coordinator not initialized; call Refresh first")
	}
	if c.handle != nil {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	handle, err := c.sub.Subscribe(ctx, c.userID, c.onInsert)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.handle = handle
	c.mu.Unlock()

	c.wg.Add(1)
	go c.reconcileLoop(ctx)
	return nil
}

// Stop tears the subscription and the reconcile loop down. Idempotent.
func (c *Coordinator) Stop() {
	c.stopped.Do(func() {
		close(c.stopCh)
	})
	c.mu.Lock()
	handle := c.handle
	c.handle = nil
	c.mu.Unlock()
	if handle != nil {
		handle.Unsubscribe()
	}
	c.wg.Wait()
}

// Wake triggers an immediate unread reconcile, used when the client tab
// transitions from hidden to visible.
func (c *Coordinator) Wake(ctx context.Context) {
	c.reconcile(ctx)
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	list := make([]models.Notification, len(c.notifications))
	copy(list, c.notifications)
	var summary *models.NotificationSummary
	if c.summary != nil {
		s := *c.summary
		summary = &s
	}
	return State{
		Notifications: list,
		UnreadCount:   c.unreadCount,
		Summary:       summary,
		Loading:       c.loading,
		Err:           c.err,
		Initialized:   c.initialized,
	}
}

// ClearError resets the surfaced error so the caller can retry.
func (c *Coordinator) ClearError() {
	c.mu.Lock()
	c.err = ""
	c.mu.Unlock()
}

// onInsert handles one pushed insert event: prepend, count, and alert if the
// cached preferences allow delivery. The insert feed carries unique ids and
// only inserts, so no de-duplication is needed.
func (c *Coordinator) onInsert(n models.Notification) {
	c.mu.Lock()
	c.notifications = append([]models.Notification{n}, c.notifications...)
	if len(c.notifications) > DefaultPageSize {
		c.notifications = c.notifications[:DefaultPageSize]
	}
	c.unreadCount++
	if c.summary != nil {
		c.summary.TotalNotifications++
		c.summary.UnreadCount++
		incrementKind(c.summary, n.Type)
		t := n.CreatedAt
		c.summary.LatestNotification = &t
	}
	prefs := c.prefs
	c.mu.Unlock()

	if c.sink == nil {
		return
	}
	// delivery-time gate: the row exists either way, only the alert is
	// suppressed. The kind check covers rows created before the
	// preference was turned off.
	if prefs != nil && !prefs.AllowsKind(n.Type) {
		return
	}
	if prefs != nil && !prefs.BrowserNotifications && !prefs.DesktopNotifications {
		return
	}
	c.sink.Alert(n, KindLabel(n.Type))
}

func (c *Coordinator) reconcileLoop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.reconcile(ctx)
		}
	}
}

// reconcile re-fetches just the unread count; push transports are not
// assumed reliable. Errors are logged, never surfaced.
func (c *Coordinator) reconcile(ctx context.Context) {
	count, err := c.svc.UnreadCount(ctx, c.userID)
	if err != nil {
		c.logger.Warn("unread reconcile failed", zap.String("user_id", c.userID), zap.Error(err))
		return
	}
	c.mu.Lock()
	c.unreadCount = count
	c.mu.Unlock()
}

func decrementKind(s *models.NotificationSummary, kind models.NotificationKind) {
	switch kind {
	case models.NotificationComment:
		if s.CommentCount > 0 {
			s.CommentCount--
		}
	case models.NotificationLike:
		if s.LikeCount > 0 {
			s.LikeCount--
		}
	case models.NotificationMention:
		if s.MentionCount > 0 {
			s.MentionCount--
		}
	case models.NotificationFollow:
		if s.FollowCount > 0 {
			s.FollowCount--
		}
	case models.NotificationSystem:
		if s.SystemCount > 0 {
			s.SystemCount--
		}
	}
}

func incrementKind(s *models.NotificationSummary, kind models.NotificationKind) {
	switch kind {
	case models.NotificationComment:
		s.CommentCount++
	case models.NotificationLike:
		s.LikeCount++
	case models.NotificationMention:
		s.MentionCount++
	case models.NotificationFollow:
		s.FollowCount++
	case models.NotificationSystem:
		s.SystemCount++
	}
}
