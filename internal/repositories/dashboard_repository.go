package repositories

import (
	"context"

	"gorm.io/gorm"
)

// DashboardRepository answers the counter queries behind each role's dashboard
type DashboardRepository interface {
	// Admin
	CountPendingInterns(ctx context.Context, tx *gorm.DB) (int64, error)
	CountInternships(ctx context.Context, tx *gorm.DB) (int64, error)
	CountApplicationsByStatus(ctx context.Context, tx *gorm.DB, status string) (int64, error)
	CountReportsByStatus(ctx context.Context, tx *gorm.DB, status string) (int64, error)

	// Supervisor
	CountAssignedInternships(ctx context.Context, tx *gorm.DB, supervisorID int64) (int64, error)
	CountSupervisorReports(ctx context.Context, tx *gorm.DB, supervisorID int64, status string) (int64, error)

	// Intern
	CountInternApplications(ctx context.Context, tx *gorm.DB, internID int64) (int64, error)
	CountInternReports(ctx context.Context, tx *gorm.DB, internID int64) (int64, error)
}
