package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saticiyiz/forum-backend/internal/models"
)

func signToken(t *testing.T, userID string) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID:   userID,
		Username: "ayse",
		Email:    "ayse@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("supersecretjwtkey"))
	require.NoError(t, err)
	return token
}

func okHandler(c echo.Context) error {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "no claims")
	}
	return c.String(http.StatusOK, claims.UserID)
}

func TestJWTAuthMiddleware(t *testing.T) {
	e := echo.New()
	handler := JWTAuthMiddleware()(okHandler)

	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "u1"))
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		require.NoError(t, err)
		assert.Equal(t, "u1", rec.Body.String())
	})

	t.Run("query param fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/?token="+signToken(t, "u2"), nil)
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		require.NoError(t, err)
		assert.Equal(t, "u2", rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		rec := httptest.NewRecorder()

		err := handler(e.NewContext(req, rec))
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}

type fakeAdminRepo struct {
	roles   map[string][]string
	roleErr error
}

func (f *fakeAdminRepo) HasActiveRole(_ context.Context, userID string, roles ...string) (bool, error) {
	if f.roleErr != nil {
		return false, f.roleErr
	}
	for _, held := range f.roles[userID] {
		for _, want := range roles {
			if held == want {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeAdminRepo) GrantRole(context.Context, *models.UserRole) error  { return nil }
func (f *fakeAdminRepo) RevokeRole(context.Context, string, string) error   { return nil }
func (f *fakeAdminRepo) GetRoles(context.Context, string) ([]models.UserRole, error) {
	return nil, nil
}
func (f *fakeAdminRepo) LogAdminAction(context.Context, *models.AdminAction) error { return nil }
func (f *fakeAdminRepo) GetAdminActions(context.Context, int) ([]models.AdminAction, error) {
	return nil, nil
}
func (f *fakeAdminRepo) CreateReport(context.Context, *models.UserReport) error { return nil }
func (f *fakeAdminRepo) GetReports(context.Context, string, int) ([]models.UserReport, error) {
	return nil, nil
}
func (f *fakeAdminRepo) GetReportByID(context.Context, string) (*models.UserReport, error) {
	return nil, nil
}
func (f *fakeAdminRepo) ResolveReport(context.Context, *models.UserReport) error { return nil }
func (f *fakeAdminRepo) GetSettings(context.Context, bool) ([]models.SystemSetting, error) {
	return nil, nil
}
func (f *fakeAdminRepo) GetSettingByKey(context.Context, string) (*models.SystemSetting, error) {
	return nil, nil
}
func (f *fakeAdminRepo) UpdateSetting(context.Context, *models.SystemSetting) error { return nil }
func (f *fakeAdminRepo) GetDashboardStats(context.Context) (*models.DashboardStats, error) {
	return nil, nil
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	repo := &fakeAdminRepo{roles: map[string][]string{
		"mod-user":   {"moderator"},
		"admin-user": {"admin"},
	}}

	run := func(t *testing.T, userID string, mw echo.MiddlewareFunc) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, userID))
		rec := httptest.NewRecorder()
		chained := JWTAuthMiddleware()(mw(okHandler))
		return chained(e.NewContext(req, rec))
	}

	t.Run("moderator allowed", func(t *testing.T) {
		err := run(t, "mod-user", RequireRole(repo, "admin", "moderator"))
		assert.NoError(t, err)
	})

	t.Run("admin only rejects moderator", func(t *testing.T) {
		err := run(t, "mod-user", RequireRole(repo, "admin"))
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
		assert.Equal(t, "Bu işlem için yetkiniz yok.", httpErr.Message)
	})

	t.Run("no role", func(t *testing.T) {
		err := run(t, "plain-user", RequireRole(repo, "admin", "moderator"))
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusForbidden, httpErr.Code)
	})

	t.Run("repo failure", func(t *testing.T) {
		broken := &fakeAdminRepo{roleErr: errors.New("connection refused")}
		err := run(t, "admin-user", RequireRole(broken, "admin"))
		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	})
}
