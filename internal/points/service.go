package points

import (
	"context"

	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/repositories"
	"go.uber.org/zap"
)

// Point awards per triggering action.
const (
	TopicCreated    = 10
	CommentCreated  = 5
	LikeReceived    = 2
	FollowerGained  = 3
	DislikeReceived = 0
)

// Levels are the member tiers in ascending point order.
var Levels = []models.MemberLevel{
	{Name: "Çaylak", MinPoints: 0, Icon: "🌱"},
	{Name: "Üye", MinPoints: 50, Icon: "⭐"},
	{Name: "Aktif Üye", MinPoints: 200, Icon: "🔥"},
	{Name: "Uzman", MinPoints: 500, Icon: "💎"},
	{Name: "Usta", MinPoints: 1500, Icon: "👑"},
}

// LevelFor returns the highest tier the point total reaches.
func LevelFor(points int64) models.MemberLevel {
	level := Levels[0]
	for _, l := range Levels {
		if points >= l.MinPoints {
			level = l
		}
	}
	return level
}

// Service applies gamification arithmetic. Awards are best-effort side
// effects of forum actions and never fail the triggering action.
type Service struct {
	repo   repositories.PointsRepository
	logger *zap.Logger
}

func NewService(repo repositories.PointsRepository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Award adds delta points to the user, logging instead of failing.
func (s *Service) Award(ctx context.Context, userID string, delta int64) {
	if delta == 0 {
		return
	}
	if err := s.repo.AddPoints(ctx, userID, delta); err != nil {
		s.logger.Warn("point award failed",
			zap.String("user_id", userID),
			zap.Int64("delta", delta),
			zap.Error(err))
	}
}

// PointsFor returns the user's current total, zero when no row exists.
func (s *Service) PointsFor(ctx context.Context, userID string) (int64, error) {
	return s.repo.GetPoints(ctx, userID)
}
