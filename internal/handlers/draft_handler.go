package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/saticiyiz/forum-backend/internal/middleware"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/repositories"
)

// DraftHandler handles markdown draft autosave HTTP requests
type DraftHandler struct {
	draftRepository repositories.DraftRepository
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(draftRepo repositories.DraftRepository) *DraftHandler {
	return &DraftHandler{draftRepository: draftRepo}
}

// RegisterDraftRoutes registers draft-related routes
func (h *DraftHandler) RegisterDraftRoutes(g *echo.Group) {
	g.PUT("/drafts", h.SaveDraft)
	g.GET("/drafts", h.GetDrafts)
	g.GET("/drafts/:key", h.GetDraft)
	g.DELETE("/drafts/:key", h.DeleteDraft)
}

// SaveDraft overwrites the caller's draft for the given key
func (h *DraftHandler) SaveDraft(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.SaveDraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	draft := &models.Draft{
		UserID:   claims.UserID,
		DraftKey: req.DraftKey,
		Content:  req.Content,
	}
	if err := h.draftRepository.SaveDraft(c.Request().Context(), draft); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, draft)
}

// GetDraft returns one draft by key
func (h *DraftHandler) GetDraft(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	draft, err := h.draftRepository.GetDraft(c.Request().Context(), claims.UserID, c.Param("key"))
	if err != nil {
		if err.Error() == "draft not found" {
			return echo.NewHTTPError(http.StatusNotFound, "Draft not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, draft)
}

// GetDrafts lists the caller's drafts, most recently saved first
func (h *DraftHandler) GetDrafts(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	drafts, err := h.draftRepository.GetDraftsByUser(c.Request().Context(), claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, drafts)
}

// DeleteDraft removes a draft, typically after its content was published
func (h *DraftHandler) DeleteDraft(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	if err := h.draftRepository.DeleteDraft(c.Request().Context(), claims.UserID, c.Param("key")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
