package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
)

type ReportPostgreSQL struct {
	db *gorm.DB
}

func NewReportPostgreSQL(db *gorm.DB) repositories.ReportRepository {
	return &ReportPostgreSQL{db: db}
}

func (r *ReportPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ReportPostgreSQL) Create(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	if err := r.getDB(tx).WithContext(ctx).Omit("Intern", "Internship").Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *ReportPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error) {
	var report models.Report
	err := r.getDB(tx).WithContext(ctx).
		Preload("Intern").
		Preload("Internship").
		First(&report, id).Error
	if err != nil {
		return nil, notFoundOr(err, "get report")
	}
	return &report, nil
}

func (r *ReportPostgreSQL) ListByIntern(ctx context.Context, tx *gorm.DB, internID int64, filters repositories.ReportFilters) ([]*models.Report, error) {
	query := r.baseQuery(ctx, tx, filters).Where("reports.intern_id = ?", internID)
	return r.find(query, filters, "list intern reports")
}

// ListForSupervisor returns reports filed against internships the supervisor is assigned to.
func (r *ReportPostgreSQL) ListForSupervisor(ctx context.Context, tx *gorm.DB, supervisorID int64, filters repositories.ReportFilters) ([]*models.Report, error) {
	query := r.baseQuery(ctx, tx, filters).
		Joins("JOIN internship_assignments ia ON ia.internship_id = reports.internship_id").
		Where("ia.supervisor_id = ?", supervisorID)
	return r.find(query, filters, "list supervisor reports")
}

func (r *ReportPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.Report, error) {
	return r.find(r.baseQuery(ctx, tx, filters), filters, "list reports")
}

func (r *ReportPostgreSQL) MarkReviewed(ctx context.Context, tx *gorm.DB, id uint, reviewerID int64, reviewedAt time.Time) error {
	res := r.getDB(tx).WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      models.ReportReviewed,
			"reviewed_at": reviewedAt,
			"reviewed_by": reviewerID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to mark report reviewed: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *ReportPostgreSQL) baseQuery(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) *gorm.DB {
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.Report{}).
		Preload("Intern").
		Preload("Internship")

	if filters.Status != nil {
		query = query.Where("reports.status = ?", *filters.Status)
	}
	if filters.InternshipID != nil {
		query = query.Where("reports.internship_id = ?", *filters.InternshipID)
	}
	return query
}

func (r *ReportPostgreSQL) find(query *gorm.DB, filters repositories.ReportFilters, op string) ([]*models.Report, error) {
	query = applyPagination(query, "reports", "submitted_at DESC", filters.Limit, filters.Offset)

	var reports []*models.Report
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return reports, nil
}
