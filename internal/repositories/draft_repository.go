package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/saticiyiz/forum-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DraftRepository defines the interface for markdown draft autosave storage.
// A draft is overwritten in place on every save, one document per
// (user, draft key).
type DraftRepository interface {
	SaveDraft(ctx context.Context, draft *models.Draft) error
	GetDraft(ctx context.Context, userID, draftKey string) (*models.Draft, error)
	DeleteDraft(ctx context.Context, userID, draftKey string) error
	GetDraftsByUser(ctx context.Context, userID string) ([]models.Draft, error)
}

// MongoDraftRepository implements DraftRepository for MongoDB
type MongoDraftRepository struct {
	collection *mongo.Collection
}

// NewMongoDraftRepository creates a new MongoDraftRepository
func NewMongoDraftRepository(db *mongo.Database) *MongoDraftRepository {
	return &MongoDraftRepository{collection: db.Collection("drafts")}
}

// SaveDraft upserts the draft document for (user, draft key)
func (r *MongoDraftRepository) SaveDraft(ctx context.Context, draft *models.Draft) error {
	draft.SavedAt = time.Now()
	filter := bson.M{"user_id": draft.UserID, "draft_key": draft.DraftKey}
	update := bson.M{"$set": draft}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoDraftRepository) GetDraft(ctx context.Context, userID, draftKey string) (*models.Draft, error) {
	var draft models.Draft
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "draft_key": draftKey}).Decode(&draft)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("draft not found")
		}
		return nil, err
	}
	return &draft, nil
}

func (r *MongoDraftRepository) DeleteDraft(ctx context.Context, userID, draftKey string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID, "draft_key": draftKey})
	return err
}

func (r *MongoDraftRepository) GetDraftsByUser(ctx context.Context, userID string) ([]models.Draft, error) {
	var drafts []models.Draft
	findOptions := options.Find().SetSort(bson.D{{Key: "saved_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}
