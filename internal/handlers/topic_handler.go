package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/saticiyiz/forum-backend/internal/middleware"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/points"
	"github.com/saticiyiz/forum-backend/internal/repositories"
)

// TopicHandler handles category and topic HTTP requests
type TopicHandler struct {
	topicRepository repositories.TopicRepository
	userRepository  repositories.UserRepository
	pointsService   *points.Service
}

// NewTopicHandler creates a new TopicHandler
func NewTopicHandler(topicRepo repositories.TopicRepository, userRepo repositories.UserRepository, pointsService *points.Service) *TopicHandler {
	return &TopicHandler{
		topicRepository: topicRepo,
		userRepository:  userRepo,
		pointsService:   pointsService,
	}
}

// RegisterTopicRoutes registers topic and category routes
func (h *TopicHandler) RegisterTopicRoutes(g *echo.Group) {
	g.GET("/categories", h.GetCategories)
	g.GET("/categories/:slug/topics", h.GetTopicsByCategory)
	g.POST("/topics", h.CreateTopic)
	g.GET("/topics/search", h.SearchTopics)
	g.GET("/topics/:id", h.GetTopic)
	g.PUT("/topics/:id", h.UpdateTopic)
	g.DELETE("/topics/:id", h.DeleteTopic)
	g.GET("/users/:id/topics", h.GetTopicsByUser)
}

// GetCategories lists all categories
func (h *TopicHandler) GetCategories(c echo.Context) error {
	categories, err := h.topicRepository.GetCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory creates a category. Mounted behind the admin role guard.
func (h *TopicHandler) CreateCategory(c echo.Context) error {
	var req models.CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := h.topicRepository.CreateCategory(c.Request().Context(), category); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, category)
}

// GetTopicsByCategory lists a category's topics, pinned first
func (h *TopicHandler) GetTopicsByCategory(c echo.Context) error {
	ctx := c.Request().Context()

	category, err := h.topicRepository.GetCategoryBySlug(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Category not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	page, limit := pagination(c)
	topics, total, err := h.topicRepository.GetTopicsByCategory(ctx, category.ID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"category": category,
		"topics":   topics,
		"total":    total,
		"page":     page,
	})
}

// CreateTopic creates a new topic and awards points to the author
func (h *TopicHandler) CreateTopic(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.CreateTopicRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	topic := &models.Topic{
		CategoryID: req.CategoryID,
		UserID:     claims.UserID,
		Title:      req.Title,
		Content:    req.Content,
	}
	if err := h.topicRepository.CreateTopic(c.Request().Context(), topic); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Konu oluşturulamadı: "+err.Error())
	}

	h.pointsService.Award(c.Request().Context(), claims.UserID, points.TopicCreated)

	return c.JSON(http.StatusCreated, topic)
}

// GetTopic returns a topic and counts the view
func (h *TopicHandler) GetTopic(c echo.Context) error {
	ctx := c.Request().Context()

	topic, err := h.topicRepository.GetTopicByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Topic not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// view counting is best-effort
	_ = h.topicRepository.IncrementViewCount(ctx, topic.ID)

	return c.JSON(http.StatusOK, topic)
}

// UpdateTopic edits a topic's title or content. Author only; locked topics
// reject edits.
func (h *TopicHandler) UpdateTopic(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.UpdateTopicRequest
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

	if topic.UserID != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "Bu konuyu düzenleme yetkiniz yok.")
	}
	if topic.IsLocked {
		return echo.NewHTTPError(http.StatusForbidden, "Bu konu kilitli.")
	}

	if req.Title != "" {
		topic.Title = req.Title
	}
	if req.Content != "" {
		topic.Content = req.Content
	}
	if err := h.topicRepository.UpdateTopic(ctx, topic); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, topic)
}

// DeleteTopic removes a topic. Author only.
func (h *TopicHandler) DeleteTopic(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	ctx := c.Request().Context()
	topic, err := h.topicRepository.GetTopicByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Topic not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if topic.UserID != claims.UserID {
		return echo.NewHTTPError(http.StatusForbidden, "Bu konuyu silme yetkiniz yok.")
	}

	if err := h.topicRepository.DeleteTopic(ctx, topic.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// SearchTopics searches topics by title or content
func (h *TopicHandler) SearchTopics(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing query parameter 'q'")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	topics, err := h.topicRepository.SearchTopics(c.Request().Context(), query, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, topics)
}

// GetTopicsByUser lists topics created by a user
func (h *TopicHandler) GetTopicsByUser(c echo.Context) error {
	page, limit := pagination(c)
	topics, total, err := h.topicRepository.GetTopicsByUser(c.Request().Context(), c.Param("id"), page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"topics": topics, "total": total, "page": page})
}

// pagination reads page/limit query params with sane bounds.
func pagination(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return page, limit
}
