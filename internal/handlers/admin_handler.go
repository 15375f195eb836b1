package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saticiyiz/forum-backend/internal/middleware"
	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/notifications"
	"github.com/saticiyiz/forum-backend/internal/repositories"
)

// AdminHandler handles moderation and administration HTTP requests
type AdminHandler struct {
	adminRepository     repositories.AdminRepository
	topicRepository     repositories.TopicRepository
	notificationService *notifications.Service
	logger              *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	adminRepo repositories.AdminRepository,
	topicRepo repositories.TopicRepository,
	notificationService *notifications.Service,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		adminRepository:     adminRepo,
		topicRepository:     topicRepo,
		notificationService: notificationService,
		logger:              logger,
	}
}

// RegisterReportRoutes registers the user-facing report endpoint
func (h *AdminHandler) RegisterReportRoutes(g *echo.Group) {
	g.POST("/reports", h.CreateReport)
}

// RegisterAdminRoutes registers routes that require the moderator or admin
// role. The role guard is applied by the router.
func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/reports", h.GetReports)
	g.PUT("/reports/:id/resolve", h.ResolveReport)
	g.GET("/dashboard", h.GetDashboard)
	g.GET("/actions", h.GetAdminActions)
	g.PUT("/topics/:id/pin", h.PinTopic)
	g.PUT("/topics/:id/lock", h.LockTopic)
	g.POST("/notifications/system", h.SendSystemNotification)
}

// RegisterSettingsRoutes registers setting endpoints. Reads of public
// settings are open to any signed-in user; writes go behind the admin guard.
func (h *AdminHandler) RegisterSettingsRoutes(public, admin *echo.Group) {
	public.GET("/settings", h.GetPublicSettings)
	admin.GET("/settings", h.GetAllSettings)
	admin.PUT("/settings/:key", h.UpdateSetting)
	admin.POST("/roles", h.GrantRole)
	admin.DELETE("/roles/:userId/:role", h.RevokeRole)
}

// CreateReport files a moderation report
func (h *AdminHandler) CreateReport(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.CreateReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ReportedUserID == nil && req.ReportedTopicID == nil && req.ReportedCommentID == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Report must target a user, topic or comment")
	}

	report := &models.UserReport{
		ReporterID:        claims.UserID,
		ReportedUserID:    req.ReportedUserID,
		ReportedTopicID:   req.ReportedTopicID,
		ReportedCommentID: req.ReportedCommentID,
		ReportType:        req.ReportType,
		Reason:            req.Reason,
		Status:            models.ReportStatusPending,
	}
	if err := h.adminRepository.CreateReport(c.Request().Context(), report); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, report)
}

// GetReports lists reports, optionally filtered by status
func (h *AdminHandler) GetReports(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	reports, err := h.adminRepository.GetReports(c.Request().Context(), c.QueryParam("status"), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reports)
}

// ResolveReport closes a pending report as resolved or dismissed
func (h *AdminHandler) ResolveReport(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.ResolveReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	report, err := h.adminRepository.GetReportByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Report not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if report.Status != models.ReportStatusPending {
		return echo.NewHTTPError(http.StatusConflict, "Report already resolved")
	}

	now := time.Now()
	report.Status = req.Status
	report.AdminNotes = req.AdminNotes
	report.ResolvedBy = &claims.UserID
	report.ResolvedAt = &now
	if err := h.adminRepository.ResolveReport(ctx, report); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.audit(c, claims.UserID, "report_"+req.Status, "report", report.ID, models.NotificationData{"notes": req.AdminNotes})
	return c.JSON(http.StatusOK, report)
}

// GetDashboard returns the admin landing aggregates
func (h *AdminHandler) GetDashboard(c echo.Context) error {
	stats, err := h.adminRepository.GetDashboardStats(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

// GetAdminActions returns the audit log, newest first
func (h *AdminHandler) GetAdminActions(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	actions, err := h.adminRepository.GetAdminActions(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, actions)
}

// PinTopic toggles a topic's pinned state
func (h *AdminHandler) PinTopic(c echo.Context) error {
	return h.toggleTopicFlag(c, "pin")
}

// LockTopic toggles a topic's locked state
func (h *AdminHandler) LockTopic(c echo.Context) error {
	return h.toggleTopicFlag(c, "lock")
}

func (h *AdminHandler) toggleTopicFlag(c echo.Context, flag string) error {
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

	switch flag {
	case "pin":
		topic.IsPinned = !topic.IsPinned
	case "lock":
		topic.IsLocked = !topic.IsLocked
	}
	if err := h.topicRepository.UpdateTopic(ctx, topic); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.audit(c, claims.UserID, "topic_"+flag, "topic", topic.ID, models.NotificationData{
		"pinned": topic.IsPinned,
		"locked": topic.IsLocked,
	})
	return c.JSON(http.StatusOK, topic)
}

// SystemNotificationRequest defines the body for a manual system notification
type SystemNotificationRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	Title   string `json:"title" validate:"required,min=1,max=100"`
	Message string `json:"message" validate:"required,min=1"`
}

// SendSystemNotification delivers a system notification to one user
func (h *AdminHandler) SendSystemNotification(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req SystemNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	id, err := h.notificationService.CreateSystem(ctx, req.UserID, req.Title, req.Message, models.NotificationData{"sent_by": claims.UserID})
	if err != nil {
		if errors.Is(err, notifications.ErrKindDisabled) {
			return echo.NewHTTPError(http.StatusConflict, "Kullanıcı sistem bildirimlerini kapatmış.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.audit(c, claims.UserID, "system_notification", "user", req.UserID, models.NotificationData{"title": req.Title})
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// GetPublicSettings returns the settings flagged public
func (h *AdminHandler) GetPublicSettings(c echo.Context) error {
	settings, err := h.adminRepository.GetSettings(c.Request().Context(), true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, settings)
}

// GetAllSettings returns every setting
func (h *AdminHandler) GetAllSettings(c echo.Context) error {
	settings, err := h.adminRepository.GetSettings(c.Request().Context(), false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSetting changes a setting's value by key
func (h *AdminHandler) UpdateSetting(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req models.UpdateSettingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	setting, err := h.adminRepository.GetSettingByKey(ctx, c.Param("key"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Setting not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	setting.SettingValue = req.SettingValue
	setting.UpdatedBy = claims.UserID
	if err := h.adminRepository.UpdateSetting(ctx, setting); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.audit(c, claims.UserID, "setting_update", "setting", setting.SettingKey, models.NotificationData{"value": req.SettingValue})
	return c.JSON(http.StatusOK, setting)
}

// GrantRoleRequest defines the body for granting a role
type GrantRoleRequest struct {
	UserID    string     `json:"user_id" validate:"required,uuid"`
	Role      string     `json:"role" validate:"required,oneof=admin moderator user"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// GrantRole gives a user an elevated role
func (h *AdminHandler) GrantRole(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	var req GrantRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role := &models.UserRole{
		UserID:    req.UserID,
		Role:      req.Role,
		GrantedBy: claims.UserID,
		ExpiresAt: req.ExpiresAt,
		IsActive:  true,
	}
	if err := h.adminRepository.GrantRole(c.Request().Context(), role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.audit(c, claims.UserID, "role_grant", "user", req.UserID, models.NotificationData{"role": req.Role})
	return c.JSON(http.StatusCreated, role)
}

// RevokeRole deactivates a user's role
func (h *AdminHandler) RevokeRole(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
	}

	userID, role := c.Param("userId"), c.Param("role")
	if err := h.adminRepository.RevokeRole(c.Request().Context(), userID, role); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.audit(c, claims.UserID, "role_revoke", "user", userID, models.NotificationData{"role": role})
	return c.NoContent(http.StatusNoContent)
}

// audit records one audit-log row; failures are logged, never surfaced.
func (h *AdminHandler) audit(c echo.Context, adminID, actionType, targetType, targetID string, details models.NotificationData) {
	entry := &models.AdminAction{
		AdminID:    adminID,
		ActionType: actionType,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
		IPAddress:  c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
	}
	if err := h.adminRepository.LogAdminAction(c.Request().Context(), entry); err != nil {
		h.logger.Warn("audit log write failed", zap.String("action", actionType), zap.Error(err))
	}
}
