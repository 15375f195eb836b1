package notifications

import (
	"fmt"
	"time"

	"github.com/saticiyiz/forum-backend/internal/models"
)

// Groups buckets notifications by calendar age, newest bucket first.
type Groups struct {
	Today     []models.Notification `json:"today"`
	Yesterday []models.Notification `json:"yesterday"`
	ThisWeek  []models.Notification `json:"thisWeek"`
	ThisMonth []models.Notification `json:"thisMonth"`
	Older     []models.Notification `json:"older"`
}

// Group places each notification into a calendar bucket relative to now.
// The today/yesterday split follows calendar-day boundaries, not rolling
// 24-hour windows.
func Group(notifications []models.Notification, now time.Time) Groups {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var groups Groups
	for _, n := range notifications {
		created := n.CreatedAt.In(now.Location())
		switch {
		case !created.Before(todayStart):
			groups.Today = append(groups.Today, n)
		case !created.Before(yesterdayStart):
			groups.Yesterday = append(groups.Yesterday, n)
		case !created.Before(weekStart):
			groups.ThisWeek = append(groups.ThisWeek, n)
		case !created.Before(monthStart):
			groups.ThisMonth = append(groups.ThisMonth, n)
		default:
			groups.Older = append(groups.Older, n)
		}
	}
	return groups
}

// GroupTitle returns the Turkish heading for a group key.
func GroupTitle(group string) string {
	switch group {
	case "today":
		return "Bugün"
	case "yesterday":
		return "Dün"
	case "thisWeek":
		return "Bu Hafta"
	case "thisMonth":
		return "Bu Ay"
	case "older":
		return "Daha Eski"
	}
	return ""
}

// KindLabel returns the Turkish display label for a notification kind.
func KindLabel(kind models.NotificationKind) string {
	switch kind {
	case models.NotificationComment:
		return "💬 Yorum"
	case models.NotificationLike:
		return "❤️ Beğeni"
	case models.NotificationMention:
		return "👤 Etiketleme"
	case models.NotificationFollow:
		return "👥 Takip"
	case models.NotificationSystem:
		return "🔔 Sistem"
	}
	return "📢 Bildirim"
}

// FormatRelativeTime renders a created_at as a short Turkish relative time.
func FormatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Az önce"
	case diff < time.Hour:
		return fmt.Sprintf("%d dk önce", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d sa önce", int(diff.Hours()))
	case diff < 30*24*time.Hour:
		return fmt.Sprintf("%d gün önce", int(diff.Hours()/24))
	}
	return t.Format("2 Jan 2006")
}
