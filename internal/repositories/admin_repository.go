package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saticiyiz/forum-backend/internal/models"
	"gorm.io/gorm"
)

// AdminRepository defines the interface for role, report, setting and
// audit-log operations. HasActiveRole is the server-evaluated role check
// behind is_admin / is_moderator.
type AdminRepository interface {
	HasActiveRole(ctx context.Context, userID string, roles ...string) (bool, error)
	GrantRole(ctx context.Context, role *models.UserRole) error
	RevokeRole(ctx context.Context, userID, role string) error
	GetRoles(ctx context.Context, userID string) ([]models.UserRole, error)

	LogAdminAction(ctx context.Context, action *models.AdminAction) error
	GetAdminActions(ctx context.Context, limit int) ([]models.AdminAction, error)

	CreateReport(ctx context.Context, report *models.UserReport) error
	GetReports(ctx context.Context, status string, limit int) ([]models.UserReport, error)
	GetReportByID(ctx context.Context, id string) (*models.UserReport, error)
	ResolveReport(ctx context.Context, report *models.UserReport) error

	GetSettings(ctx context.Context, publicOnly bool) ([]models.SystemSetting, error)
	GetSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	UpdateSetting(ctx context.Context, setting *models.SystemSetting) error

	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
}

type postgresAdminRepository struct {
	db *gorm.DB
}

func NewPostgresAdminRepository(db *gorm.DB) AdminRepository {
	return &postgresAdminRepository{db: db}
}

// HasActiveRole checks for an active, unexpired role row.
func (r *postgresAdminRepository) HasActiveRole(ctx context.Context, userID string, roles ...string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role IN ? AND is_active = true", userID, roles).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Count(&count).Error
	return count > 0, err
}

func (r *postgresAdminRepository) GrantRole(ctx context.Context, role *models.UserRole) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	if role.GrantedAt.IsZero() {
		role.GrantedAt = time.Now()
	}
	role.IsActive = true
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *postgresAdminRepository) RevokeRole(ctx context.Context, userID, role string) error {
	return r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ? AND is_active = true", userID, role).
		Update("is_active", false).Error
}

func (r *postgresAdminRepository) GetRoles(ctx context.Context, userID string) ([]models.UserRole, error) {
	var roles []models.UserRole
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = true", userID).
		Find(&roles).Error
	return roles, err
}

func (r *postgresAdminRepository) LogAdminAction(ctx context.Context, action *models.AdminAction) error {
	if action.ID == "" {
		action.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(action).Error
}

func (r *postgresAdminRepository) GetAdminActions(ctx context.Context, limit int) ([]models.AdminAction, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var actions []models.AdminAction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&actions).Error
	return actions, err
}

func (r *postgresAdminRepository) CreateReport(ctx context.Context, report *models.UserReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	report.Status = models.ReportStatusPending
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *postgresAdminRepository) GetReports(ctx context.Context, status string, limit int) ([]models.UserReport, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reports []models.UserReport
	err := q.Find(&reports).Error
	return reports, err
}

func (r *postgresAdminRepository) GetReportByID(ctx context.Context, id string) (*models.UserReport, error) {
	var report models.UserReport
	if err := r.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *postgresAdminRepository) ResolveReport(ctx context.Context, report *models.UserReport) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *postgresAdminRepository) GetSettings(ctx context.Context, publicOnly bool) ([]models.SystemSetting, error) {
	q := r.db.WithContext(ctx).Order("setting_key ASC")
	if publicOnly {
		q = q.Where("is_public = true")
	}
	var settings []models.SystemSetting
	err := q.Find(&settings).Error
	return settings, err
}

func (r *postgresAdminRepository) GetSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	var setting models.SystemSetting
	if err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *postgresAdminRepository) UpdateSetting(ctx context.Context, setting *models.SystemSetting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}

func (r *postgresAdminRepository) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &models.DashboardStats{}
	counts := []struct {
		dst   *int64
		model interface{}
		cond  string
		args  []interface{}
	}{
		{&stats.TotalUsers, &models.User{}, "", nil},
		{&stats.TotalTopics, &models.Topic{}, "", nil},
		{&stats.TotalComments, &models.Comment{}, "", nil},
		{&stats.PendingReports, &models.UserReport{}, "status = ?", []interface{}{models.ReportStatusPending}},
		{&stats.TopicsToday, &models.Topic{}, "created_at >= ?", []interface{}{todayStart}},
		{&stats.CommentsToday, &models.Comment{}, "created_at >= ?", []interface{}{todayStart}},
		{&stats.NewUsersToday, &models.User{}, "created_at >= ?", []interface{}{todayStart}},
	}
	for _, c := range counts {
		q := r.db.WithContext(ctx).Model(c.model)
		if c.cond != "" {
			q = q.Where(c.cond, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}
