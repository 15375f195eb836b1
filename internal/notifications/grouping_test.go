package notifications

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/saticiyiz/forum-backend/internal/models"
)

func at(t time.Time) models.Notification {
	return models.Notification{CreatedAt: t}
}

func TestGroupCalendarBuckets(t *testing.T) {
	// mid-month, mid-day reference point so every bucket is reachable
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

	list := []models.Notification{
		at(now),                      // today
		at(now.Add(-1 * time.Hour)),  // 11:00 same day -> today
		at(now.Add(-25 * time.Hour)), // 11:00 the day before -> yesterday
		at(now.AddDate(0, 0, -3)),    // this week
		at(now.AddDate(0, 0, -10)),   // March 5 -> this month
		at(now.AddDate(0, 0, -40)),   // February -> older
	}

	groups := Group(list, now)
	assert.Len(t, groups.Today, 2)
	assert.Len(t, groups.Yesterday, 1)
	assert.Len(t, groups.ThisWeek, 1)
	assert.Len(t, groups.ThisMonth, 1)
	assert.Len(t, groups.Older, 1)
}

func TestGroupSplitsOnMidnightNotRollingWindow(t *testing.T) {
	// 00:30: an event from one hour ago happened yesterday by calendar even
	// though it is well inside a rolling 24h window
	now := time.Date(2026, time.March, 15, 0, 30, 0, 0, time.UTC)
	groups := Group([]models.Notification{at(now.Add(-time.Hour))}, now)
	assert.Empty(t, groups.Today)
	assert.Len(t, groups.Yesterday, 1)
}

func TestGroupEmpty(t *testing.T) {
	groups := Group(nil, time.Now())
	assert.Empty(t, groups.Today)
	assert.Empty(t, groups.Older)
}

func TestGroupTitle(t *testing.T) {
	assert.Equal(t, "Bugün", GroupTitle("today"))
	assert.Equal(t, "Dün", GroupTitle("yesterday"))
	assert.Equal(t, "Bu Hafta", GroupTitle("thisWeek"))
	assert.Equal(t, "Bu Ay", GroupTitle("thisMonth"))
	assert.Equal(t, "Daha Eski", GroupTitle("older"))
	assert.Equal(t, "", GroupTitle("unknown"))
}

func TestKindLabel(t *testing.T) {
	assert.Equal(t, "💬 Yorum", KindLabel(models.NotificationComment))
	assert.Equal(t, "❤️ Beğeni", KindLabel(models.NotificationLike))
	assert.Equal(t, "👤 Etiketleme", KindLabel(models.NotificationMention))
	assert.Equal(t, "👥 Takip", KindLabel(models.NotificationFollow))
	assert.Equal(t, "🔔 Sistem", KindLabel(models.NotificationSystem))
	assert.Equal(t, "📢 Bildirim", KindLabel("poke"))
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "Az önce"},
		{"minutes", now.Add(-5 * time.Minute), "5 dk önce"},
		{"hours", now.Add(-3 * time.Hour), "3 sa önce"},
		{"days", now.AddDate(0, 0, -4), "4 gün önce"},
		{"absolute beyond a month", now.AddDate(0, -2, 0), "15 Jan 2026"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRelativeTime(tt.t, now))
		})
	}
}
