package reactions

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/repositories"
)

// fakeLikeRepo is an in-memory LikeRepository. Transaction runs the callback
// against the same store; the locking behavior itself belongs to the
// Postgres implementation.
type fakeLikeRepo struct {
	mu           sync.Mutex
	topicLikes   map[string]models.TopicLike // by row id
	commentLikes map[string]models.CommentLike

	createErr error
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{
		topicLikes:   make(map[string]models.TopicLike),
		commentLikes: make(map[string]models.CommentLike),
	}
}

func (f *fakeLikeRepo) Transaction(_ context.Context, fn func(repositories.LikeRepository) error) error {
	return fn(f)
}

func (f *fakeLikeRepo) GetTopicLike(_ context.Context, topicID, userID string) (*models.TopicLike, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.topicLikes {
		if l.TopicID == topicID && l.UserID == userID {
			cp := l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLikeRepo) CreateTopicLike(_ context.Context, like *models.TopicLike) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if like.ID == "" {
		like.ID = uuid.NewString()
	}
	f.topicLikes[like.ID] = *like
	return nil
}

func (f *fakeLikeRepo) UpdateTopicLike(_ context.Context, like *models.TopicLike) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topicLikes[like.ID] = *like
	return nil
}

func (f *fakeLikeRepo) DeleteTopicLike(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.topicLikes, id)
	return nil
}

func (f *fakeLikeRepo) GetTopicLikeCounts(_ context.Context, topicID string) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var likes, dislikes int64
	for _, l := range f.topicLikes {
		if l.TopicID != topicID {
			continue
		}
		if l.LikeType == models.LikeTypeLike {
			likes++
		} else {
			dislikes++
		}
	}
	return likes, dislikes, nil
}

func (f *fakeLikeRepo) GetCommentLike(_ context.Context, commentID, userID string) (*models.CommentLike, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.commentLikes {
		if l.CommentID == commentID && l.UserID == userID {
			cp := l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLikeRepo) CreateCommentLike(_ context.Context, like *models.CommentLike) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if like.ID == "" {
		like.ID = uuid.NewString()
	}
	f.commentLikes[like.ID] = *like
	return nil
}

func (f *fakeLikeRepo) UpdateCommentLike(_ context.Context, like *models.CommentLike) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentLikes[like.ID] = *like
	return nil
}

func (f *fakeLikeRepo) DeleteCommentLike(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.commentLikes, id)
	return nil
}

func (f *fakeLikeRepo) GetCommentLikeCounts(_ context.Context, commentID string) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var likes, dislikes int64
	for _, l := range f.commentLikes {
		if l.CommentID != commentID {
			continue
		}
		if l.LikeType == models.LikeTypeLike {
			likes++
		} else {
			dislikes++
		}
	}
	return likes, dislikes, nil
}

// fakeTopicRepo covers the lookups and counter writes the reaction flow
// touches; everything else is unused here.
type fakeTopicRepo struct {
	topics     map[string]*models.Topic
	likeCounts map[string]int64
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{
		topics:     make(map[string]*models.Topic),
		likeCounts: make(map[string]int64),
	}
}

func (f *fakeTopicRepo) CreateCategory(context.Context, *models.Category) error { return nil }
func (f *fakeTopicRepo) GetCategories(context.Context) ([]models.Category, error) {
	return nil, nil
}
func (f *fakeTopicRepo) GetCategoryBySlug(context.Context, string) (*models.Category, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTopicRepo) CreateTopic(_ context.Context, t *models.Topic) error {
	f.topics[t.ID] = t
	return nil
}
func (f *fakeTopicRepo) GetTopicByID(_ context.Context, id string) (*models.Topic, error) {
	if t, ok := f.topics[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeTopicRepo) GetTopicsByCategory(context.Context, string, int, int) ([]models.Topic, int64, error) {
	return nil, 0, nil
}
func (f *fakeTopicRepo) GetTopicsByUser(context.Context, string, int, int) ([]models.Topic, int64, error) {
	return nil, 0, nil
}
func (f *fakeTopicRepo) UpdateTopic(context.Context, *models.Topic) error { return nil }
func (f *fakeTopicRepo) DeleteTopic(context.Context, string) error        { return nil }
func (f *fakeTopicRepo) SearchTopics(context.Context, string, int) ([]models.Topic, error) {
	return nil, nil
}
func (f *fakeTopicRepo) IncrementViewCount(context.Context, string) error { return nil }
func (f *fakeTopicRepo) SetLikeCount(_ context.Context, id string, count int64) error {
	f.likeCounts[id] = count
	return nil
}
func (f *fakeTopicRepo) AdjustCommentCount(context.Context, string, int) error { return nil }

type fakeCommentRepo struct {
	comments map[string]*models.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*models.Comment)}
}

func (f *fakeCommentRepo) CreateComment(_ context.Context, c *models.Comment) error {
	f.comments[c.ID] = c
	return nil
}
func (f *fakeCommentRepo) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	if c, ok := f.comments[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeCommentRepo) GetCommentsByTopicID(context.Context, string, int, int) ([]models.Comment, int64, error) {
	return nil, 0, nil
}
func (f *fakeCommentRepo) UpdateComment(context.Context, *models.Comment) error { return nil }
func (f *fakeCommentRepo) DeleteComment(context.Context, string) error          { return nil }

type fakeUserRepo struct {
	users map[string]*models.User
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *models.User) error {
	f.users[u.ID] = u
	return nil
}
func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) GetUserByUsername(context.Context, string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) GetUserByFirebaseUID(context.Context, string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) UpdateUser(context.Context, *models.User) error { return nil }
func (f *fakeUserRepo) SearchUsers(context.Context, string, int) ([]models.User, error) {
	return nil, nil
}

// fakeNotificationRepo backs the notification service the reaction side
// effect talks to. It only needs creation, preferences and pruning.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
	prefs         map[string]*models.NotificationPreferences
	createErr     error
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{prefs: make(map[string]*models.NotificationPreferences)}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeNotificationRepo) GetByUserID(context.Context, string, int, int) ([]models.Notification, error) {
	return nil, nil
}
func (f *fakeNotificationRepo) GetUnreadCount(context.Context, string) (int64, error) {
	return 0, nil
}
func (f *fakeNotificationRepo) GetSummary(_ context.Context, userID string) (*models.NotificationSummary, error) {
	return &models.NotificationSummary{UserID: userID}, nil
}
func (f *fakeNotificationRepo) MarkAsRead(context.Context, string, string) (bool, error) {
	return false, nil
}
func (f *fakeNotificationRepo) MarkAllAsRead(context.Context, string) (int64, error) {
	return 0, nil
}
func (f *fakeNotificationRepo) MarkEmailSent(context.Context, string) error { return nil }
func (f *fakeNotificationRepo) GetPendingEmails(context.Context, int) ([]models.Notification, error) {
	return nil, nil
}
func (f *fakeNotificationRepo) PruneOldest(context.Context, string, int) error { return nil }

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

// fakePointsRepo is an in-memory PointsRepository.
type fakePointsRepo struct {
	mu     sync.Mutex
	points map[string]int64
}

func (f *fakePointsRepo) GetPoints(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.points[userID], nil
}

func (f *fakePointsRepo) AddPoints(_ context.Context, userID string, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points[userID] += delta
	return nil
}
