package reactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/notifications"
	"github.com/saticiyiz/forum-backend/internal/points"
	"github.com/saticiyiz/forum-backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Action names what SetReaction did to the reaction row.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
	ActionUpdated Action = "updated"
)

// Service toggles a user's reaction on a topic or comment between
// no-reaction, like and dislike, keeping at most one row per (user, target).
// The lookup-then-branch runs inside a row-locked transaction so concurrent
// toggles cannot produce a second row.
type Service struct {
	likes    repositories.LikeRepository
	topics   repositories.TopicRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
	notifier *notifications.Service
	awards   *points.Service
	logger   *zap.Logger
}

func NewService(
	likes repositories.LikeRepository,
	topics repositories.TopicRepository,
	comments repositories.CommentRepository,
	users repositories.UserRepository,
	notifier *notifications.Service,
	awards *points.Service,
	logger *zap.Logger,
) *Service {
	return &Service{
		likes:    likes,
		topics:   topics,
		comments: comments,
		users:    users,
		notifier: notifier,
		awards:   awards,
		logger:   logger,
	}
}

// SetReaction applies the toggle semantics: no row inserts, same kind
// removes, different kind updates. An added like (never a dislike, never
// one's own content) earns the content's author points and a like
// notification; a removed like takes the points back. Both are best-effort:
// their failures are logged and discarded so a reaction can never fail
// because a side effect did.
func (s *Service) SetReaction(ctx context.Context, userID, targetID string, target models.ReactionTarget, kind models.LikeType) (Action, error) {
	if !target.Valid() {
		return "", fmt.Errorf("unknown reaction target %q", target)
	}
	if !kind.Valid() {
		return "", fmt.Errorf("unknown reaction type %q", kind)
	}

	var action Action
	var err error
	switch target {
	case models.TargetTopic:
		action, err = s.setTopicReaction(ctx, userID, targetID, kind)
	case models.TargetComment:
		action, err = s.setCommentReaction(ctx, userID, targetID, kind)
	}
	if err != nil {
		return "", err
	}

	if action == ActionAdded || action == ActionRemoved {
		s.rewardAuthor(ctx, userID, targetID, target, kind, action)
	}
	return action, nil
}

func (s *Service) setTopicReaction(ctx context.Context, userID, topicID string, kind models.LikeType) (Action, error) {
	var action Action
	err := s.likes.Transaction(ctx, func(tx repositories.LikeRepository) error {
		existing, err := tx.GetTopicLike(ctx, topicID, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("Beğeni durumu kontrol edilemedi: %w", err)
		}

		switch {
		case existing == nil:
			action = ActionAdded
			if err := tx.CreateTopicLike(ctx, &models.TopicLike{
				TopicID:  topicID,
				UserID:   userID,
				LikeType: kind,
			}); err != nil {
				return fmt.Errorf("Beğeni eklenemedi: %w", err)
			}
		case existing.LikeType == kind:
			action = ActionRemoved
			if err := tx.DeleteTopicLike(ctx, existing.ID); err != nil {
				return fmt.Errorf("Beğeni kaldırılamadı: %w", err)
			}
		default:
			action = ActionUpdated
			existing.LikeType = kind
			if err := tx.UpdateTopicLike(ctx, existing); err != nil {
				return fmt.Errorf("Beğeni güncellenemedi: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.syncTopicLikeCount(ctx, topicID)
	return action, nil
}

func (s *Service) setCommentReaction(ctx context.Context, userID, commentID string, kind models.LikeType) (Action, error) {
	var action Action
	err := s.likes.Transaction(ctx, func(tx repositories.LikeRepository) error {
		existing, err := tx.GetCommentLike(ctx, commentID, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("Beğeni durumu kontrol edilemedi: %w", err)
		}

		switch {
		case existing == nil:
			action = ActionAdded
			if err := tx.CreateCommentLike(ctx, &models.CommentLike{
				CommentID: commentID,
				UserID:    userID,
				LikeType:  kind,
			}); err != nil {
				return fmt.Errorf("Beğeni eklenemedi: %w", err)
			}
		case existing.LikeType == kind:
			action = ActionRemoved
			if err := tx.DeleteCommentLike(ctx, existing.ID); err != nil {
				return fmt.Errorf("Beğeni kaldırılamadı: %w", err)
			}
		default:
			action = ActionUpdated
			existing.LikeType = kind
			if err := tx.UpdateCommentLike(ctx, existing); err != nil {
				return fmt.Errorf("Beğeni güncellenemedi: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return action, nil
}

// TopicReaction returns the caller's reaction on a topic, nil when none.
func (s *Service) TopicReaction(ctx context.Context, userID, topicID string) (*models.TopicLike, error) {
	like, err := s.likes.GetTopicLike(ctx, topicID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return like, err
}

// CommentReaction returns the caller's reaction on a comment, nil when none.
func (s *Service) CommentReaction(ctx context.Context, userID, commentID string) (*models.CommentLike, error) {
	like, err := s.likes.GetCommentLike(ctx, commentID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return like, err
}

func (s *Service) TopicLikeCounts(ctx context.Context, topicID string) (int64, int64, error) {
	return s.likes.GetTopicLikeCounts(ctx, topicID)
}

func (s *Service) CommentLikeCounts(ctx context.Context, commentID string) (int64, int64, error) {
	return s.likes.GetCommentLikeCounts(ctx, commentID)
}

// rewardAuthor carries the best-effort side effects of a toggled reaction:
// points for the content's author (reversed when the like is taken back) and,
// on an added like, the notification. Every failure path ends in a log line,
// never an error to the caller.
func (s *Service) rewardAuthor(ctx context.Context, likerID, targetID string, target models.ReactionTarget, kind models.LikeType, action Action) {
	var delta int64 = points.LikeReceived
	if kind == models.LikeTypeDislike {
		delta = points.DislikeReceived
	}
	if action == ActionRemoved {
		delta = -delta
	}
	notify := action == ActionAdded && kind == models.LikeTypeLike
	if delta == 0 && !notify {
		return
	}

	ownerID, title, err := s.resolveTarget(ctx, targetID, target)
	if err != nil {
		s.logger.Warn("like side effects skipped: target lookup failed",
			zap.String("target_id", targetID), zap.Error(err))
		return
	}
	if ownerID == likerID {
		return
	}

	s.awards.Award(ctx, ownerID, delta)
	if !notify {
		return
	}

	liker, err := s.users.GetUserByID(ctx, likerID)
	if err != nil {
		s.logger.Warn("like notification skipped: liker lookup failed",
			zap.String("user_id", likerID), zap.Error(err))
		return
	}

	n := notifications.NewLikeNotification(ownerID, liker.Username, target, title, targetID)
	if _, err := s.notifier.Create(ctx, likerID, n); err != nil {
		if errors.Is(err, notifications.ErrKindDisabled) {
			return
		}
		s.logger.Warn("like notification failed",
			zap.String("owner_id", ownerID),
			zap.String("target_id", targetID),
			zap.Error(err))
	}
}

// resolveTarget loads the reacted-to content's author and display title.
func (s *Service) resolveTarget(ctx context.Context, targetID string, target models.ReactionTarget) (string, string, error) {
	switch target {
	case models.TargetTopic:
		topic, err := s.topics.GetTopicByID(ctx, targetID)
		if err != nil {
			return "", "", err
		}
		return topic.UserID, topic.Title, nil
	case models.TargetComment:
		comment, err := s.comments.GetCommentByID(ctx, targetID)
		if err != nil {
			return "", "", err
		}
		title := comment.Content
		if truncated := notifications.Truncate(title, 50); truncated != title {
			title = truncated + "..."
		}
		return comment.UserID, title, nil
	}
	return "", "", fmt.Errorf("unknown reaction target %q", target)
}

// syncTopicLikeCount refreshes the denormalized like counter on the topic.
// Best-effort: the reaction row is the source of truth.
func (s *Service) syncTopicLikeCount(ctx context.Context, topicID string) {
	likes, _, err := s.likes.GetTopicLikeCounts(ctx, topicID)
	if err != nil {
		s.logger.Warn("topic like count sync failed", zap.String("topic_id", topicID), zap.Error(err))
		return
	}
	if err := s.topics.SetLikeCount(ctx, topicID, likes); err != nil {
		s.logger.Warn("topic like count update failed", zap.String("topic_id", topicID), zap.Error(err))
	}
}
