package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saticiyiz/forum-backend/internal/middleware"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/notifications"
	"github.com/saticiyiz/forum-backend/internal/points"
	"github.com/saticiyiz/forum-backend/internal/repositories"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository    repositories.FollowRepository
	userRepository      repositories.UserRepository
	notificationService *notifications.Service
	pointsService       *points.Service
	logger              *zap.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(
	followRepo repositories.FollowRepository,
	userRepo repositories.UserRepository,
	notificationService *notifications.Service,
	pointsService *points.Service,
	logger *zap.Logger,
) *FollowHandler {
	return &FollowHandler{
		followRepository:    followRepo,
		userRepository:      userRepo,
		notificationService: notificationService,
		pointsService:       pointsService,
		logger:              logger,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.Follow)
	g.DELETE("/users/:id/follow", h.Unfollow)
	g.GET("/users/:id/followers", h.GetFollowers)
}

// Follow makes the caller follow the target user and notifies the target.
// The notification and point award are best-effort side effects.
func (h *FollowHandler) Follow(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	followedID := c.Param("id")
	if followedID == claims.UserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Kendinizi takip edemezsiniz.")
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, followedID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	following, err := h.followRepository.IsFollowing(ctx, claims.UserID, followedID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if following {
		return echo.NewHTTPError(http.StatusConflict, "Bu kullanıcıyı zaten takip ediyorsunuz.")
	}

	follow := &models.Follow{FollowerID: claims.UserID, FollowedID: followedID}
	if err := h.followRepository.CreateFollow(ctx, follow); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.pointsService.Award(ctx, followedID, points.FollowerGained)

	n := notifications.NewFollowNotification(followedID, claims.Username)
	if _, err := h.notificationService.Create(ctx, claims.UserID, n); err != nil {
		h.logger.Debug("follow notification skipped", zap.String("followed_id", followedID), zap.Error(err))
	}

	return c.JSON(http.StatusCreated, follow)
}

// Unfollow removes the follow edge
func (h *FollowHandler) Unfollow(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	if err := h.followRepository.DeleteFollow(c.Request().Context(), claims.UserID, c.Param("id")); err != nil {
		if err.Error() == "follow not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Follow not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// GetFollowers lists a user's followers
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	follows, err := h.followRepository.GetFollowers(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, follows)
}
