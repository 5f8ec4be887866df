package cache

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/shaderl/internship-service/internal/models"
)

// SafeInvalidatePattern invalidates a pattern and only logs failures
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes keys and only logs failures
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// DashboardKey names one user's cached dashboard. Admins share a single entry.
func DashboardKey(role models.UserRole, userID int64) string {
	if role == models.RoleAdmin {
		return string(role)
	}
	return string(role) + ":" + strconv.FormatInt(userID, 10)
}

// InvalidateDashboardKeys drops the listed dashboards and leaves the rest cached.
func InvalidateDashboardKeys(ctx context.Context, cm *CacheManager, keys ...string) {
	if cm == nil {
		return
	}
	SafeDelete(ctx, cm.Dashboard, keys...)
}

// InvalidateDashboards drops every cached dashboard counter set.
func InvalidateDashboards(ctx context.Context, cm *CacheManager) {
	if cm == nil {
		return
	}
	SafeInvalidatePattern(ctx, cm.Dashboard, "*")
}

// InvalidateInternships drops cached internship listings and the dashboards
// that count them.
func InvalidateInternships(ctx context.Context, cm *CacheManager) {
	if cm == nil {
		return
	}
	SafeInvalidatePattern(ctx, cm.Internship, "*")
	InvalidateDashboards(ctx, cm)
}
