package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/saticiyiz/forum-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointsRepository defines the interface for gamification point storage
type PointsRepository interface {
	GetPoints(ctx context.Context, userID string) (int64, error)
	AddPoints(ctx context.Context, userID string, delta int64) error
}

// PostgresPointsRepository implements PointsRepository for PostgreSQL
type PostgresPointsRepository struct {
	db *gorm.DB
}

// NewPostgresPointsRepository creates a new PostgresPointsRepository
func NewPostgresPointsRepository(db *gorm.DB) *PostgresPointsRepository {
	return &PostgresPointsRepository{db: db}
}

func (r *PostgresPointsRepository) GetPoints(ctx context.Context, userID string) (int64, error) {
	var row models.UserPoints
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Points, nil
}

// AddPoints upserts the per-user counter, incrementing atomically.
func (r *PostgresPointsRepository) AddPoints(ctx context.Context, userID string, delta int64) error {
	row := &models.UserPoints{
		ID:     uuid.NewString(),
		UserID: userID,
		Points: delta,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"points": gorm.Expr("GREATEST(user_points.points + ?, 0)", delta)}),
	}).Create(row).Error
}
