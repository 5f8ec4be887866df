package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
)

type ApplicationPostgreSQL struct {
	db *gorm.DB
}

func NewApplicationPostgreSQL(db *gorm.DB) repositories.ApplicationRepository {
	return &ApplicationPostgreSQL{db: db}
}

func (a *ApplicationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create relies on the (intern_id, internship_id) unique index so a repeated
// apply is a no-op even under concurrent submissions.
func (a *ApplicationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, application *models.Application) (bool, error) {
	res := a.getDB(tx).WithContext(ctx).
		Omit("Intern", "Internship").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "intern_id"}, {Name: "internship_id"}},
			DoNothing: true,
		}).
		Create(application)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create application: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (a *ApplicationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Application, error) {
	var application models.Application
	err := a.getDB(tx).WithContext(ctx).
		Preload("Intern").
		Preload("Internship").
		First(&application, id).Error
	if err != nil {
		return nil, notFoundOr(err, "get application")
	}
	return &application, nil
}

func (a *ApplicationPostgreSQL) GetByInternAndInternship(ctx context.Context, tx *gorm.DB, internID int64, internshipID uint) (*models.Application, error) {
	var application models.Application
	err := a.getDB(tx).WithContext(ctx).
		Where("intern_id = ? AND internship_id = ?", internID, internshipID).
		First(&application).Error
	if err != nil {
		return nil, notFoundOr(err, "get application")
	}
	return &application, nil
}

func (a *ApplicationPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ApplicationFilters) ([]*models.Application, error) {
	query := a.getDB(tx).WithContext(ctx).
		Model(&models.Application{}).
		Preload("Intern").
		Preload("Internship")

	if filters.Status != nil {
		query = query.Where("applications.status = ?", *filters.Status)
	}
	if filters.InternshipID != nil {
		query = query.Where("applications.internship_id = ?", *filters.InternshipID)
	}
	if filters.InternID != nil {
		query = query.Where("applications.intern_id = ?", *filters.InternID)
	}

	query = applyPagination(query, "applications", "submitted_at DESC", filters.Limit, filters.Offset)

	var applications []*models.Application
	if err := query.Find(&applications).Error; err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

func (a *ApplicationPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ApplicationStatus, decidedAt time.Time) error {
	res := a.getDB(tx).WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_at": decidedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update application status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (a *ApplicationPostgreSQL) ActiveInternships(ctx context.Context, tx *gorm.DB, internID int64) ([]*models.Internship, error) {
	var internships []*models.Internship
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Internship{}).
		Joins("JOIN applications ON applications.internship_id = internships.id").
		Where("applications.intern_id = ? AND applications.status IN ?", internID,
			[]models.ApplicationStatus{models.ApplicationPending, models.ApplicationAccepted}).
		Order("internships.title ASC").
		Find(&internships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active internships: %w", err)
	}
	return internships, nil
}
