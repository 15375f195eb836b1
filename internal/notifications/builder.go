package notifications

import (
	"fmt"

	"github.com/saticiyiz/forum-backend/internal/models"
)

// The builders below reproduce the fixed Turkish payloads used across the
// forum, one per triggering action.

// Truncate shortens s to at most max runes. Payload content is Turkish, so
// cutting on byte offsets would split multibyte characters.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// NewCommentNotification targets the topic owner when someone comments on
// their topic.
func NewCommentNotification(topicOwnerID, commenterUsername, topicTitle, topicID, commentID string) *models.Notification {
	return &models.Notification{
		UserID:  topicOwnerID,
		Type:    models.NotificationComment,
		Title:   "💬 Yorum",
		Message: fmt.Sprintf("@%s başlığınıza yorum yazdı", commenterUsername),
		Data: models.NotificationData{
			"topic_id":           topicID,
			"comment_id":         commentID,
			"commenter_username": commenterUsername,
			"topic_title":        topicTitle,
		},
	}
}

// NewLikeNotification targets the author of a liked topic or comment.
func NewLikeNotification(contentOwnerID, likerUsername string, target models.ReactionTarget, contentTitle, contentID string) *models.Notification {
	what := "başlığınızı"
	if target == models.TargetComment {
		what = "yorumunuzu"
	}
	return &models.Notification{
		UserID:  contentOwnerID,
		Type:    models.NotificationLike,
		Title:   "❤️ Beğeni",
		Message: fmt.Sprintf("@%s %s beğendi", likerUsername, what),
		Data: models.NotificationData{
			"content_type":   string(target),
			"content_id":     contentID,
			"liker_username": likerUsername,
			"content_title":  contentTitle,
		},
	}
}

// NewMentionNotification targets a user referenced with @username in a topic
// or comment body.
func NewMentionNotification(mentionedUserID, mentionerUsername, content, topicID, commentID string) *models.Notification {
	content = Truncate(content, 100)
	data := models.NotificationData{
		"topic_id":           topicID,
		"mentioner_username": mentionerUsername,
		"content":            content,
	}
	if commentID != "" {
		data["comment_id"] = commentID
	}
	return &models.Notification{
		UserID:  mentionedUserID,
		Type:    models.NotificationMention,
		Title:   "👤 Etiketlendiniz",
		Message: fmt.Sprintf("@%s sizi etiketledi", mentionerUsername),
		Data:    data,
	}
}

// NewFollowNotification targets a user who gained a follower.
func NewFollowNotification(followedUserID, followerUsername string) *models.Notification {
	return &models.Notification{
		UserID:  followedUserID,
		Type:    models.NotificationFollow,
		Title:   "👥 Takipçi",
		Message: fmt.Sprintf("@%s sizi takip etti", followerUsername),
		Data: models.NotificationData{
			"follower_username": followerUsername,
		},
	}
}
