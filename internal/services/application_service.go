package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/shaderl/internship-service/internal/cache"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
)

type applicationService struct {
	repo   repositories.Repository
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewApplicationService(repo repositories.Repository, logger *slog.Logger, cm *cache.CacheManager) ApplicationService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &applicationService{
		repo:   repo,
		logger: logger,
		cache:  cm,
	}
}

// Apply records a pending application. Applying twice leaves the first one
// untouched, whatever its status.
func (s *applicationService) Apply(ctx context.Context, internID int64, internshipID uint) (bool, error) {
	if _, err := s.repo.Internship().GetByID(ctx, nil, internshipID); err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrInternshipNotFound
		}
		return false, fmt.Errorf("failed to get internship: %w", err)
	}

	application := &models.Application{
		InternID:     internID,
		InternshipID: internshipID,
		Status:       models.ApplicationPending,
		SubmittedAt:  time.Now().UTC(),
	}
	created, err := s.repo.Application().Create(ctx, nil, application)
	if err != nil {
		return false, fmt.Errorf("failed to apply: %w", err)
	}

	if created {
		s.invalidateDashboards(ctx, internID)
		s.logger.Info("Application submitted", "intern_id", internID, "internship_id", internshipID)
	} else {
		s.logger.Debug("Repeated application ignored", "intern_id", internID, "internship_id", internshipID)
	}
	return created, nil
}

func (s *applicationService) ListForIntern(ctx context.Context, internID int64) ([]*models.Application, error) {
	applications, err := s.repo.Application().List(ctx, nil, repositories.ApplicationFilters{InternID: &internID})
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

func (s *applicationService) ListForInternship(ctx context.Context, internshipID uint) ([]*models.Application, error) {
	applications, err := s.repo.Application().List(ctx, nil, repositories.ApplicationFilters{InternshipID: &internshipID})
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

func (s *applicationService) List(ctx context.Context, status *models.ApplicationStatus) ([]*models.Application, error) {
	applications, err := s.repo.Application().List(ctx, nil, repositories.ApplicationFilters{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return applications, nil
}

// Decide accepts or rejects an application. A decision can be revised.
func (s *applicationService) Decide(ctx context.Context, id uint, decision models.ApplicationStatus) error {
	if decision != models.ApplicationAccepted && decision != models.ApplicationRejected {
		return ErrInvalidDecision
	}

	var internID int64
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		application, err := s.repo.Application().GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		internID = application.InternID
		return s.repo.Application().UpdateStatus(ctx, tx, id, decision, time.Now().UTC())
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrApplicationNotFound
		}
		return fmt.Errorf("failed to decide application: %w", err)
	}

	s.invalidateDashboards(ctx, internID)
	s.logger.Info("Application decided", "application_id", id, "decision", decision)
	return nil
}

// Applications only show up on the admin counters and the applicant's own.
func (s *applicationService) invalidateDashboards(ctx context.Context, internID int64) {
	cache.InvalidateDashboardKeys(ctx, s.cache,
		cache.DashboardKey(models.RoleAdmin, 0),
		cache.DashboardKey(models.RoleIntern, internID))
}
