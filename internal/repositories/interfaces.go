package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/shaderl/internship-service/internal/models"
)

// ===== FILTER STRUCTS =====

type InternshipFilters struct {
	SupervisorID *int64 `json:"supervisor_id"`
	Limit        int    `json:"limit"`
	Offset       int    `json:"offset"`
}

type ApplicationFilters struct {
	Status       *models.ApplicationStatus `json:"status"`
	InternshipID *uint                     `json:"internship_id"`
	InternID     *int64                    `json:"intern_id"`
	Limit        int                       `json:"limit"`
	Offset       int                       `json:"offset"`
}

type ReportFilters struct {
	Status       *models.ReportStatus `json:"status"`
	InternshipID *uint                `json:"internship_id"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
}

// ===== DOMAIN REPOSITORIES =====

type InternshipRepository interface {
	Create(ctx context.Context, tx *gorm.DB, internship *models.Internship) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Internship, error)
	List(ctx context.Context, tx *gorm.DB, filters InternshipFilters) ([]*models.Internship, error)

	// AddSupervisor links a supervisor; reports false when the link already existed.
	AddSupervisor(ctx context.Context, tx *gorm.DB, internshipID uint, supervisorID int64) (bool, error)
	IsSupervisor(ctx context.Context, tx *gorm.DB, internshipID uint, supervisorID int64) (bool, error)
}

type ApplicationRepository interface {
	// Create inserts a pending application; reports false when one already existed.
	Create(ctx context.Context, tx *gorm.DB, application *models.Application) (bool, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Application, error)
	GetByInternAndInternship(ctx context.Context, tx *gorm.DB, internID int64, internshipID uint) (*models.Application, error)
	List(ctx context.Context, tx *gorm.DB, filters ApplicationFilters) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ApplicationStatus, decidedAt time.Time) error

	// ActiveInternships lists internships the intern may file reports for.
	ActiveInternships(ctx context.Context, tx *gorm.DB, internID int64) ([]*models.Internship, error)
}

type ReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.Report) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Report, error)
	ListByIntern(ctx context.Context, tx *gorm.DB, internID int64, filters ReportFilters) ([]*models.Report, error)
	ListForSupervisor(ctx context.Context, tx *gorm.DB, supervisorID int64, filters ReportFilters) ([]*models.Report, error)
	List(ctx context.Context, tx *gorm.DB, filters ReportFilters) ([]*models.Report, error)
	MarkReviewed(ctx context.Context, tx *gorm.DB, id uint, reviewerID int64, reviewedAt time.Time) error
}
