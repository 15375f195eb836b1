package reactions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/notifications"
	"github.com/saticiyiz/forum-backend/internal/points"
)

const (
	likerID = "11111111-0000-0000-0000-000000000001"
	ownerID = "11111111-0000-0000-0000-000000000002"
	topicID = "22222222-0000-0000-0000-000000000001"
)

type fixture struct {
	svc        *Service
	likes      *fakeLikeRepo
	topics     *fakeTopicRepo
	comments   *fakeCommentRepo
	notifRepo  *fakeNotificationRepo
	pointsRepo *fakePointsRepo
}

func newFixture() *fixture {
	likes := newFakeLikeRepo()
	topics := newFakeTopicRepo()
	comments := newFakeCommentRepo()
	users := &fakeUserRepo{users: map[string]*models.User{
		likerID: {ID: likerID, Username: "ayse"},
		ownerID: {ID: ownerID, Username: "mehmet"},
	}}
	notifRepo := newFakeNotificationRepo()
	notifier := notifications.NewService(notifRepo, nil, zap.NewNop())
	pointsRepo := &fakePointsRepo{points: make(map[string]int64)}
	awards := points.NewService(pointsRepo, zap.NewNop())

	topics.topics[topicID] = &models.Topic{ID: topicID, UserID: ownerID, Title: "Satış ipuçları"}

	return &fixture{
		svc:        NewService(likes, topics, comments, users, notifier, awards, zap.NewNop()),
		likes:      likes,
		topics:     topics,
		comments:   comments,
		notifRepo:  notifRepo,
		pointsRepo: pointsRepo,
	}
}

func TestSetReactionValidation(t *testing.T) {
	f := newFixture()
	_, err := f.svc.SetReaction(context.Background(), likerID, topicID, "page", models.LikeTypeLike)
	assert.Error(t, err)
	_, err = f.svc.SetReaction(context.Background(), likerID, topicID, models.TargetTopic, "love")
	assert.Error(t, err)
}

func TestToggleCycleAddedRemovedAdded(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	action, err := f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, action)
	likes, _, _ := f.svc.TopicLikeCounts(ctx, topicID)
	assert.Equal(t, int64(1), likes)

	// same kind again removes the row
	action, err = f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Equal(t, ActionRemoved, action)
	likes, _, _ = f.svc.TopicLikeCounts(ctx, topicID)
	assert.Equal(t, int64(0), likes)

	action, err = f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, action)
}

func TestToggleSwitchKindUpdatesSingleRow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)

	action, err := f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeDislike)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, action)

	// still exactly one row, now a dislike
	assert.Len(t, f.likes.topicLikes, 1)
	likes, dislikes, _ := f.svc.TopicLikeCounts(ctx, topicID)
	assert.Equal(t, int64(0), likes)
	assert.Equal(t, int64(1), dislikes)

	current, err := f.svc.TopicReaction(ctx, likerID, topicID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, models.LikeTypeDislike, current.LikeType)
}

func TestAddedLikeNotifiesAuthor(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)

	require.Len(t, f.notifRepo.notifications, 1)
	n := f.notifRepo.notifications[0]
	assert.Equal(t, ownerID, n.UserID)
	assert.Equal(t, models.NotificationLike, n.Type)
	assert.Equal(t, "❤️ Beğeni", n.Title)
	assert.Equal(t, topicID, n.Data["content_id"])
	assert.Equal(t, "ayse", n.Data["liker_username"])
}

func TestDislikeDoesNotNotify(t *testing.T) {
	f := newFixture()
	_, err := f.svc.SetReaction(context.Background(), likerID, topicID, models.TargetTopic, models.LikeTypeDislike)
	require.NoError(t, err)
	assert.Empty(t, f.notifRepo.notifications)
}

func TestRemovedLikeDoesNotNotify(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	require.Len(t, f.notifRepo.notifications, 1)

	_, err = f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Len(t, f.notifRepo.notifications, 1)
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	f := newFixture()
	action, err := f.svc.SetReaction(context.Background(), ownerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	// the reaction itself succeeds; only the notification is skipped
	assert.Equal(t, ActionAdded, action)
	assert.Empty(t, f.notifRepo.notifications)
}

func TestAddedLikeAwardsPointsToAuthor(t *testing.T) {
	f := newFixture()
	_, err := f.svc.SetReaction(context.Background(), likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)

	assert.Equal(t, int64(points.LikeReceived), f.pointsRepo.points[ownerID])
	assert.Zero(t, f.pointsRepo.points[likerID])
}

func TestRemovedLikeTakesPointsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	require.Equal(t, int64(points.LikeReceived), f.pointsRepo.points[ownerID])

	_, err = f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Zero(t, f.pointsRepo.points[ownerID])
}

func TestDislikeAndSelfLikeAwardNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeDislike)
	require.NoError(t, err)
	assert.Empty(t, f.pointsRepo.points)

	_, err = f.svc.SetReaction(ctx, ownerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Empty(t, f.pointsRepo.points)
}

func TestNotificationFailureDoesNotFailReaction(t *testing.T) {
	f := newFixture()
	f.notifRepo.createErr = errors.New("notifications table gone")

	action, err := f.svc.SetReaction(context.Background(), likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, action)
	assert.Len(t, f.likes.topicLikes, 1)
}

func TestAddedLikeSyncsTopicCounter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.topics.likeCounts[topicID])

	_, err = f.svc.SetReaction(ctx, likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.topics.likeCounts[topicID])
}

func TestCommentReactionNotifiesWithTruncatedContent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	long := ""
	for i := 0; i < 20; i++ {
		long += "uzun yorum "
	}
	commentID := "33333333-0000-0000-0000-000000000001"
	f.comments.comments[commentID] = &models.Comment{ID: commentID, TopicID: topicID, UserID: ownerID, Content: long}

	action, err := f.svc.SetReaction(ctx, likerID, commentID, models.TargetComment, models.LikeTypeLike)
	require.NoError(t, err)
	assert.Equal(t, ActionAdded, action)

	require.Len(t, f.notifRepo.notifications, 1)
	n := f.notifRepo.notifications[0]
	assert.Equal(t, "comment", n.Data["content_type"])
	title, _ := n.Data["content_title"].(string)
	assert.Len(t, title, 53) // 50 chars plus ellipsis
}

func TestCommentReactionTruncationKeepsMultibyteContentValid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	long := "a" + strings.Repeat("ş", 60)
	commentID := "33333333-0000-0000-0000-000000000002"
	f.comments.comments[commentID] = &models.Comment{ID: commentID, TopicID: topicID, UserID: ownerID, Content: long}

	_, err := f.svc.SetReaction(ctx, likerID, commentID, models.TargetComment, models.LikeTypeLike)
	require.NoError(t, err)

	require.Len(t, f.notifRepo.notifications, 1)
	title, _ := f.notifRepo.notifications[0].Data["content_title"].(string)
	assert.True(t, utf8.ValidString(title))
	assert.True(t, strings.HasSuffix(title, "..."))
	assert.Equal(t, 53, utf8.RuneCountInString(title))
}

func TestReactionNilWhenNone(t *testing.T) {
	f := newFixture()
	like, err := f.svc.TopicReaction(context.Background(), likerID, topicID)
	require.NoError(t, err)
	assert.Nil(t, like)

	cl, err := f.svc.CommentReaction(context.Background(), likerID, "missing")
	require.NoError(t, err)
	assert.Nil(t, cl)
}

func TestCreateFailureSurfacesTurkishError(t *testing.T) {
	f := newFixture()
	f.likes.createErr = errors.New("disk full")

	_, err := f.svc.SetReaction(context.Background(), likerID, topicID, models.TargetTopic, models.LikeTypeLike)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Beğeni eklenemedi")
}
