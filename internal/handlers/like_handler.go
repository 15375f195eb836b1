package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/saticiyiz/forum-backend/internal/middleware"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/reactions"
)

// LikeHandler handles reaction HTTP requests for topics and comments
type LikeHandler struct {
	reactionService *reactions.Service
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(reactionService *reactions.Service) *LikeHandler {
	return &LikeHandler{reactionService: reactionService}
}

// RegisterLikeRoutes registers reaction-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.PUT("/topics/:id/reaction", h.SetTopicReaction)
	g.GET("/topics/:id/reaction", h.GetTopicReaction)
	g.PUT("/comments/:id/reaction", h.SetCommentReaction)
	g.GET("/comments/:id/reaction", h.GetCommentReaction)
}

// SetTopicReaction toggles the caller's reaction on a topic
func (h *LikeHandler) SetTopicReaction(c echo.Context) error {
	return h.setReaction(c, models.TargetTopic)
}

// SetCommentReaction toggles the caller's reaction on a comment
func (h *LikeHandler) SetCommentReaction(c echo.Context) error {
	return h.setReaction(c, models.TargetComment)
}

func (h *LikeHandler) setReaction(c echo.Context, target models.ReactionTarget) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.SetReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	action, err := h.reactionService.SetReaction(ctx, claims.UserID, c.Param("id"), target, models.LikeType(req.LikeType))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var likes, dislikes int64
	if target == models.TargetTopic {
		likes, dislikes, _ = h.reactionService.TopicLikeCounts(ctx, c.Param("id"))
	} else {
		likes, dislikes, _ = h.reactionService.CommentLikeCounts(ctx, c.Param("id"))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"action":   action,
		"likes":    likes,
		"dislikes": dislikes,
	})
}

// GetTopicReaction returns the caller's current reaction plus counts
func (h *LikeHandler) GetTopicReaction(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	ctx := c.Request().Context()
	like, err := h.reactionService.TopicReaction(ctx, claims.UserID, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	likes, dislikes, err := h.reactionService.TopicLikeCounts(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := echo.Map{"likes": likes, "dislikes": dislikes}
	if like != nil {
		resp["like_type"] = like.LikeType
	}
	return c.JSON(http.StatusOK, resp)
}

// GetCommentReaction returns the caller's current reaction plus counts
func (h *LikeHandler) GetCommentReaction(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	ctx := c.Request().Context()
	like, err := h.reactionService.CommentReaction(ctx, claims.UserID, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	likes, dislikes, err := h.reactionService.CommentLikeCounts(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := echo.Map{"likes": likes, "dislikes": dislikes}
	if like != nil {
		resp["like_type"] = like.LikeType
	}
	return c.JSON(http.StatusOK, resp)
}
