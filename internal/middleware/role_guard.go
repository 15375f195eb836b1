package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/saticiyiz/forum-backend/internal/models"
	"github.com/saticiyiz/forum-backend/internal/repositories"
)

// ClaimsFromContext returns the JWT claims stored by JWTAuthMiddleware.
func ClaimsFromContext(c echo.Context) (*models.JwtCustomClaims, bool) {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	return claims, ok
}

// RequireRole allows the request through only if the authenticated user
// holds at least one of the given roles. Must run after JWTAuthMiddleware.
func RequireRole(adminRepo repositories.AdminRepository, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing user claims")
			}

			allowed, err := adminRepo.HasActiveRole(c.Request().Context(), claims.UserID, roles...)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify role")
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusForbidden, "Bu işlem için yetkiniz yok.")
			}

			return next(c)
		}
	}
}
