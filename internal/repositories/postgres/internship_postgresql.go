package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
)

type InternshipPostgreSQL struct {
	db *gorm.DB
}

func NewInternshipPostgreSQL(db *gorm.DB) repositories.InternshipRepository {
	return &InternshipPostgreSQL{db: db}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (i *InternshipPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return i.db
}

func (i *InternshipPostgreSQL) Create(ctx context.Context, tx *gorm.DB, internship *models.Internship) error {
	if err := i.getDB(tx).WithContext(ctx).Omit("Assignments").Create(internship).Error; err != nil {
		return fmt.Errorf("failed to create internship: %w", err)
	}
	return nil
}

func (i *InternshipPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Internship, error) {
	var internship models.Internship
	err := i.getDB(tx).WithContext(ctx).
		Preload("Assignments.Supervisor").
		First(&internship, id).Error
	if err != nil {
		return nil, notFoundOr(err, "get internship")
	}
	return &internship, nil
}

func (i *InternshipPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.InternshipFilters) ([]*models.Internship, error) {
	query := i.getDB(tx).WithContext(ctx).
		Model(&models.Internship{}).
		Preload("Assignments.Supervisor")

	if filters.SupervisorID != nil {
		query = query.Where("internships.id IN (?)",
			i.getDB(tx).Model(&models.InternshipAssignment{}).
				Select("internship_id").
				Where("supervisor_id = ?", *filters.SupervisorID))
	}

	query = applyPagination(query, "internships", "created_at DESC", filters.Limit, filters.Offset)

	var internships []*models.Internship
	if err := query.Find(&internships).Error; err != nil {
		return nil, fmt.Errorf("failed to list internships: %w", err)
	}
	return internships, nil
}

func (i *InternshipPostgreSQL) AddSupervisor(ctx context.Context, tx *gorm.DB, internshipID uint, supervisorID int64) (bool, error) {
	assignment := models.InternshipAssignment{
		InternshipID: internshipID,
		SupervisorID: supervisorID,
	}
	res := i.getDB(tx).WithContext(ctx).
		Omit("Supervisor").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "internship_id"}, {Name: "supervisor_id"}},
			DoNothing: true,
		}).
		Create(&assignment)
	if res.Error != nil {
		return false, fmt.Errorf("failed to assign supervisor: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (i *InternshipPostgreSQL) IsSupervisor(ctx context.Context, tx *gorm.DB, internshipID uint, supervisorID int64) (bool, error) {
	var count int64
	err := i.getDB(tx).WithContext(ctx).
		Model(&models.InternshipAssignment{}).
		Where("internship_id = ? AND supervisor_id = ?", internshipID, supervisorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check assignment: %w", err)
	}
	return count > 0, nil
}
