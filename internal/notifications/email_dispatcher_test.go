package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saticiyiz/forum-backend/internal/models"
)

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

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	for _, u := range f.users {
		if u.FirebaseUID == uid {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) UpdateUser(_ context.Context, u *models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) SearchUsers(_ context.Context, _ string, _ int) ([]models.User, error) {
	return nil, nil
}

type recordSender struct {
	mu      sync.Mutex
	sent    []string // recipient emails
	sendErr error
}

func (s *recordSender) SendNotificationEmail(_ context.Context, recipient *models.User, _ *models.Notification) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, recipient.Email)
	return nil
}

func TestDispatchPendingSendsAndMarks(t *testing.T) {
	repo := newFakeNotificationRepo()
	n := repo.add(testUserID, models.NotificationComment, time.Hour, false)

	users := &fakeUserRepo{users: map[string]*models.User{
		testUserID: {ID: testUserID, Email: "user@example.com"},
	}}
	sender := &recordSender{}
	d := NewEmailDispatcher(repo, users, sender, time.Minute, zap.NewNop())

	d.DispatchPending(context.Background())

	assert.Equal(t, []string{"user@example.com"}, sender.sent)
	got, _ := repo.GetPendingEmails(context.Background(), 10)
	assert.Empty(t, got)

	// email bookkeeping is independent of read state
	list, _ := repo.GetByUserID(context.Background(), testUserID, 10, 0)
	require.Len(t, list, 1)
	assert.Equal(t, n.ID, list[0].ID)
	assert.Nil(t, list[0].ReadAt)
	assert.True(t, list[0].EmailSent)
}

func TestDispatchPendingHonorsEmailPreference(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.add(testUserID, models.NotificationComment, time.Hour, false)

	prefs := models.DefaultNotificationPreferences(testUserID)
	prefs.EmailNotifications = false
	require.NoError(t, repo.UpsertPreferences(context.Background(), prefs))

	users := &fakeUserRepo{users: map[string]*models.User{
		testUserID: {ID: testUserID, Email: "user@example.com"},
	}}
	sender := &recordSender{}
	d := NewEmailDispatcher(repo, users, sender, time.Minute, zap.NewNop())

	d.DispatchPending(context.Background())

	// nothing sent, but the row is marked so it never comes back around
	assert.Empty(t, sender.sent)
	got, _ := repo.GetPendingEmails(context.Background(), 10)
	assert.Empty(t, got)
}

func TestDispatchPendingRetriesOnSendFailure(t *testing.T) {
	repo := newFakeNotificationRepo()
	repo.add(testUserID, models.NotificationComment, time.Hour, false)

	users := &fakeUserRepo{users: map[string]*models.User{
		testUserID: {ID: testUserID, Email: "user@example.com"},
	}}
	sender := &recordSender{sendErr: errors.New("smtp down")}
	d := NewEmailDispatcher(repo, users, sender, time.Minute, zap.NewNop())

	d.DispatchPending(context.Background())

	// the failed notification stays pending for the next batch
	got, _ := repo.GetPendingEmails(context.Background(), 10)
	assert.Len(t, got, 1)
}
