package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
)

type dashboardRepository struct {
	db *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) repositories.DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// ===== ADMIN =====

func (r *dashboardRepository) CountPendingInterns(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_approved = ?", models.RoleIntern, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count pending interns: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountInternships(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Internship{}).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count internships: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountApplicationsByStatus(ctx context.Context, tx *gorm.DB, status string) (int64, error) {
	var count int64
	query := r.getDB(tx).WithContext(ctx).Model(&models.Application{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountReportsByStatus(ctx context.Context, tx *gorm.DB, status string) (int64, error) {
	var count int64
	query := r.getDB(tx).WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

// ===== SUPERVISOR =====

func (r *dashboardRepository) CountAssignedInternships(ctx context.Context, tx *gorm.DB, supervisorID int64) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.InternshipAssignment{}).
		Where("supervisor_id = ?", supervisorID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count assigned internships: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountSupervisorReports(ctx context.Context, tx *gorm.DB, supervisorID int64, status string) (int64, error) {
	var count int64
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.Report{}).
		Joins("JOIN internship_assignments ia ON ia.internship_id = reports.internship_id").
		Where("ia.supervisor_id = ?", supervisorID)
	if status != "" {
		query = query.Where("reports.status = ?", status)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count supervisor reports: %w", err)
	}
	return count, nil
}

// ===== INTERN =====

func (r *dashboardRepository) CountInternApplications(ctx context.Context, tx *gorm.DB, internID int64) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Application{}).
		Where("intern_id = ?", internID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count intern applications: %w", err)
	}
	return count, nil
}

func (r *dashboardRepository) CountInternReports(ctx context.Context, tx *gorm.DB, internID int64) (int64, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.Report{}).
		Where("intern_id = ?", internID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count intern reports: %w", err)
	}
	return count, nil
}
