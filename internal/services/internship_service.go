package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"github.com/shaderl/internship-service/internal/cache"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
	"github.com/shaderl/internship-service/internal/validator"
)

const internshipListKey = "list"

type internshipService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
}

func NewInternshipService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, cm *cache.CacheManager) InternshipService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &internshipService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cm,
	}
}

func (s *internshipService) Create(ctx context.Context, adminID int64, req *CreateInternshipRequest) (*models.Internship, error) {
	if errs := s.validator.GetBusinessValidator().ValidateInternshipCreate(req); errs.HasErrors() {
		return nil, errs
	}

	internship := &models.Internship{
		Title:            req.Title,
		Description:      req.Description,
		StartDate:        parseDate(req.StartDate),
		EndDate:          parseDate(req.EndDate),
		CreatedByAdminID: adminID,
	}
	if err := s.repo.Internship().Create(ctx, nil, internship); err != nil {
		return nil, fmt.Errorf("failed to create internship: %w", err)
	}

	cache.InvalidateInternships(ctx, s.cache)
	s.logger.Info("Internship created", "internship_id", internship.ID, "admin_id", adminID)
	return internship, nil
}

func (s *internshipService) GetByID(ctx context.Context, id uint) (*models.Internship, error) {
	internship, err := s.repo.Internship().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInternshipNotFound
		}
		return nil, fmt.Errorf("failed to get internship: %w", err)
	}
	return internship, nil
}

// List returns every posting, newest first. The result is cached.
func (s *internshipService) List(ctx context.Context) ([]*models.Internship, error) {
	var internships []*models.Internship
	err := s.cache.Internship.CacheOrExecute(ctx, internshipListKey, &internships, cache.InternshipCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Internship().List(ctx, nil, repositories.InternshipFilters{})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list internships: %w", err)
	}
	return internships, nil
}

func (s *internshipService) ListForSupervisor(ctx context.Context, supervisorID int64) ([]*models.Internship, error) {
	var internships []*models.Internship
	key := "supervisor:" + strconv.FormatInt(supervisorID, 10)
	err := s.cache.Internship.CacheOrExecute(ctx, key, &internships, cache.InternshipCacheConfig.TTL, func() (interface{}, error) {
		return s.repo.Internship().List(ctx, nil, repositories.InternshipFilters{SupervisorID: &supervisorID})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list supervisor internships: %w", err)
	}
	return internships, nil
}

// AssignSupervisor links a supervisor account to a posting. Repeating an
// assignment is a no-op.
func (s *internshipService) AssignSupervisor(ctx context.Context, internshipID uint, supervisorID int64) (bool, error) {
	if _, err := s.GetByID(ctx, internshipID); err != nil {
		return false, err
	}

	supervisor, err := s.repo.User().GetByID(ctx, supervisorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to get supervisor: %w", err)
	}
	if supervisor.Role != models.RoleSupervisor {
		return false, ErrNotASupervisor
	}

	added, err := s.repo.Internship().AddSupervisor(ctx, nil, internshipID, supervisorID)
	if err != nil {
		return false, fmt.Errorf("failed to assign supervisor: %w", err)
	}
	if added {
		cache.InvalidateInternships(ctx, s.cache)
		s.logger.Info("Supervisor assigned", "internship_id", internshipID, "supervisor_id", supervisorID)
	}
	return added, nil
}

// parseDate expects input already checked by the validator; blank means unset.
func parseDate(raw string) *datatypes.Date {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(validator.DateLayout, raw)
	if err != nil {
		return nil
	}
	d := datatypes.Date(t)
	return &d
}
