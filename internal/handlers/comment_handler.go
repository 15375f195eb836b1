package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saticiyiz/forum-backend/internal/middleware"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/notifications"
	"github.com/saticiyiz/forum-backend/internal/points"
	"github.com/saticiyiz/forum-backend/internal/repositories"
)

// CommentHandler handles comment HTTP requests
type CommentHandler struct {
	commentRepository   repositories.CommentRepository
	topicRepository     repositories.TopicRepository
	userRepository      repositories.UserRepository
	notificationService *notifications.Service
	pointsService       *points.Service
	logger              *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	topicRepo repositories.TopicRepository,
	userRepo repositories.UserRepository,
	notificationService *notifications.Service,
	pointsService *points.Service,
	logger *zap.Logger,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:   commentRepo,
		topicRepository:     topicRepo,
		userRepository:      userRepo,
		notificationService: notificationService,
		pointsService:       pointsService,
		logger:              logger,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/topics/:id/comments", h.CreateComment)
	g.GET("/topics/:id/comments", h.GetComments)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment creates a comment on a topic and notifies the topic owner
// and any @mentioned users. Notification failures never fail the comment.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	topic, err := h.topicRepository.GetTopicByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Topic not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if topic.IsLocked {
		return echo.NewHTTPError(http.StatusForbidden, "Bu konu kilitli.")
	}

	comment := &models.Comment{
		TopicID:  topic.ID,
		UserID:   claims.UserID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Yorum eklenemedi: "+err.Error())
	}

	if err := h.topicRepository.AdjustCommentCount(ctx, topic.ID, 1); err != nil {
		h.logger.Warn("comment count adjust failed", zap.String("topic_id", topic.ID), zap.Error(err))
	}

	h.pointsService.Award(ctx, claims.UserID, points.CommentCreated)
	h.notifyOnComment(c, topic, comment, claims.Username)

	return c.JSON(http.StatusCreated, comment)
}

// notifyOnComment emits the topic-owner comment notification and one mention
// notification per @mentioned user, all best-effort.
func (h *CommentHandler) notifyOnComment(c echo.Context, topic *models.Topic, comment *models.Comment, commenterUsername string) {
	ctx := c.Request().Context()

	n := notifications.NewCommentNotification(topic.UserID, commenterUsername, topic.Title, topic.ID, comment.ID)
	if _, err := h.notificationService.Create(ctx, comment.UserID, n); err != nil {
		h.logger.Debug("comment notification skipped", zap.String("topic_id", topic.ID), zap.Error(err))
	}

	for _, username := range notifications.ExtractMentions(comment.Content) {
		mentioned, err := h.userRepository.GetUserByUsername(ctx, username)
		if err != nil {
			continue
		}
		if mentioned.ID == topic.UserID {
			// the owner already got the comment notification
			continue
		}
		m := notifications.NewMentionNotification(mentioned.ID, commenterUsername, comment.Content, topic.ID, comment.ID)
		if _, err := h.notificationService.Create(ctx, comment.UserID, m); err != nil {
			h.logger.Debug("mention notification skipped", zap.String("username", username), zap.Error(err))
		}
	}
}

// GetComments lists a topic's comments, oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	page, limit := pagination(c)
	comments, total, err := h.commentRepository.GetCommentsByTopicID(c.Request().Context(), c.Param("id"), page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments, "total": total, "page": page})
}

// UpdateComment edits a comment's content. Author only.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if comment.UserID != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "Bu yorumu düzenleme yetkiniz yok.")
	}

	comment.Content = req.Content
	if err := h.commentRepository.UpdateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment and decrements the topic's count. Author only.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if comment.UserID != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "Bu yorumu silme yetkiniz yok.")
	}

	if err := h.commentRepository.DeleteComment(ctx, comment.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.topicRepository.AdjustCommentCount(ctx, comment.TopicID, -1); err != nil {
		h.logger.Warn("comment count adjust failed", zap.String("topic_id", comment.TopicID), zap.Error(err))
	}

	return c.NoContent(http.StatusNoContent)
}
