package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saticiyiz/forum-backend/internal/models"
	"gorm.io/gorm"
)

// TopicRepository defines the interface for category and topic operations
type TopicRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)

	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetTopicByID(ctx context.Context, id string) (*models.Topic, error)
	GetTopicsByCategory(ctx context.Context, categoryID string, page, limit int) ([]models.Topic, int64, error)
	GetTopicsByUser(ctx context.Context, userID string, page, limit int) ([]models.Topic, int64, error)
	UpdateTopic(ctx context.Context, topic *models.Topic) error
	DeleteTopic(ctx context.Context, id string) error
	SearchTopics(ctx context.Context, query string, limit int) ([]models.Topic, error)
	IncrementViewCount(ctx context.Context, id string) error
	SetLikeCount(ctx context.Context, id string, count int64) error
	AdjustCommentCount(ctx context.Context, id string, delta int) error
}

type postgresTopicRepository struct {
	db *gorm.DB
}

func NewPostgresTopicRepository(db *gorm.DB) TopicRepository {
	return &postgresTopicRepository{db: db}
}

func (r *postgresTopicRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *postgresTopicRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *postgresTopicRepository) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *postgresTopicRepository) CreateTopic(ctx context.Context, topic *models.Topic) error {
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(topic).Error; err != nil {
			return err
		}
		return tx.Model(&models.Category{}).
			Where("id = ?", topic.CategoryID).
			Update("topic_count", gorm.Expr("topic_count + 1")).Error
	})
}

func (r *postgresTopicRepository) GetTopicByID(ctx context.Context, id string) (*models.Topic, error) {
	var topic models.Topic
	if err := r.db.WithContext(ctx).First(&topic, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *postgresTopicRepository) GetTopicsByCategory(ctx context.Context, categoryID string, page, limit int) ([]models.Topic, int64, error) {
	return r.pagedTopics(ctx, "category_id = ?", categoryID, page, limit)
}

func (r *postgresTopicRepository) GetTopicsByUser(ctx context.Context, userID string, page, limit int) ([]models.Topic, int64, error) {
	return r.pagedTopics(ctx, "user_id = ?", userID, page, limit)
}

func (r *postgresTopicRepository) pagedTopics(ctx context.Context, cond string, arg interface{}, page, limit int) ([]models.Topic, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	var topics []models.Topic
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Topic{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).Where(cond, arg).
		Order("is_pinned DESC, created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&topics).Error
	return topics, total, err
}

func (r *postgresTopicRepository) UpdateTopic(ctx context.Context, topic *models.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

func (r *postgresTopicRepository) DeleteTopic(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var topic models.Topic
		if err := tx.First(&topic, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Topic{}, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Model(&models.Category{}).
			Where("id = ? AND topic_count > 0", topic.CategoryID).
			Update("topic_count", gorm.Expr("topic_count - 1")).Error
	})
}

func (r *postgresTopicRepository) SearchTopics(ctx context.Context, query string, limit int) ([]models.Topic, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var topics []models.Topic
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE LOWER(?) OR LOWER(content) LIKE LOWER(?)", "%"+query+"%", "%"+query+"%").
		Order("created_at DESC").
		Limit(limit).
		Find(&topics).Error
	return topics, err
}

func (r *postgresTopicRepository) IncrementViewCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Topic{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *postgresTopicRepository) SetLikeCount(ctx context.Context, id string, count int64) error {
	return r.db.WithContext(ctx).Model(&models.Topic{}).
		Where("id = ?", id).
		Update("like_count", count).Error
}

func (r *postgresTopicRepository) AdjustCommentCount(ctx context.Context, id string, delta int) error {
	if delta == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Topic{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"comment_count": gorm.Expr("GREATEST(comment_count + ?, 0)", delta),
			"updated_at":    time.Now(),
		}).Error
}
