package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/saticiyiz/forum-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for reaction data operations.
// Transaction runs fn against a repository bound to one database
// transaction; lookups inside it take a row lock, which is what makes the
// read-then-branch reaction toggle safe against concurrent toggles.
type LikeRepository interface {
	Transaction(ctx context.Context, fn func(LikeRepository) error) error

	GetTopicLike(ctx context.Context, topicID, userID string) (*models.TopicLike, error)
	CreateTopicLike(ctx context.Context, like *models.TopicLike) error
	UpdateTopicLike(ctx context.Context, like *models.TopicLike) error
	DeleteTopicLike(ctx context.Context, id string) error
	GetTopicLikeCounts(ctx context.Context, topicID string) (likes, dislikes int64, err error)

	GetCommentLike(ctx context.Context, commentID, userID string) (*models.CommentLike, error)
	CreateCommentLike(ctx context.Context, like *models.CommentLike) error
	UpdateCommentLike(ctx context.Context, like *models.CommentLike) error
	DeleteCommentLike(ctx context.Context, id string) error
	GetCommentLikeCounts(ctx context.Context, commentID string) (likes, dislikes int64, err error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db   *gorm.DB
	inTx bool
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) Transaction(ctx context.Context, fn func(LikeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresLikeRepository{db: tx, inTx: true})
	})
}

func (r *PostgresLikeRepository) GetTopicLike(ctx context.Context, topicID, userID string) (*models.TopicLike, error) {
	var like models.TopicLike
	q := r.db.WithContext(ctx)
	if r.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("topic_id = ? AND user_id = ?", topicID, userID).First(&like).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *PostgresLikeRepository) CreateTopicLike(ctx context.Context, like *models.TopicLike) error {
	if like.ID == "" {
		like.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *PostgresLikeRepository) UpdateTopicLike(ctx context.Context, like *models.TopicLike) error {
	return r.db.WithContext(ctx).Model(&models.TopicLike{}).
		Where("id = ?", like.ID).
		Update("like_type", like.LikeType).Error
}

func (r *PostgresLikeRepository) DeleteTopicLike(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.TopicLike{}, "id = ?", id).Error
}

func (r *PostgresLikeRepository) GetTopicLikeCounts(ctx context.Context, topicID string) (int64, int64, error) {
	var likes, dislikes int64
	if err := r.db.WithContext(ctx).Model(&models.TopicLike{}).
		Where("topic_id = ? AND like_type = ?", topicID, models.LikeTypeLike).
		Count(&likes).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.TopicLike{}).
		Where("topic_id = ? AND like_type = ?", topicID, models.LikeTypeDislike).
		Count(&dislikes).Error; err != nil {
		return 0, 0, err
	}
	return likes, dislikes, nil
}

func (r *PostgresLikeRepository) GetCommentLike(ctx context.Context, commentID, userID string) (*models.CommentLike, error) {
	var like models.CommentLike
	q := r.db.WithContext(ctx)
	if r.inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&like).Error; err != nil {
		return nil, err
	}
	return &like, nil
}

func (r *PostgresLikeRepository) CreateCommentLike(ctx context.Context, like *models.CommentLike) error {
	if like.ID == "" {
		like.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *PostgresLikeRepository) UpdateCommentLike(ctx context.Context, like *models.CommentLike) error {
	return r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("id = ?", like.ID).
		Update("like_type", like.LikeType).Error
}

func (r *PostgresLikeRepository) DeleteCommentLike(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.CommentLike{}, "id = ?", id).Error
}

func (r *PostgresLikeRepository) GetCommentLikeCounts(ctx context.Context, commentID string) (int64, int64, error) {
	var likes, dislikes int64
	if err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("comment_id = ? AND like_type = ?", commentID, models.LikeTypeLike).
		Count(&likes).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("comment_id = ? AND like_type = ?", commentID, models.LikeTypeDislike).
		Count(&dislikes).Error; err != nil {
		return 0, 0, err
	}
	return likes, dislikes, nil
}
