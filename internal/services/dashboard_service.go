package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/cache"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
)

// ===== SERVICE IMPLEMENTATION =====

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger, cm *cache.CacheManager) DashboardService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &dashboardService{
		repo:   repo,
		logger: logger,
		cache:  cm,
	}
}

// Stats returns the counters for the user's role. Results are cached briefly
// per role and user.
func (s *dashboardService) Stats(ctx context.Context, user *auth.UserSnapshot) (*DashboardStats, error) {
	if user == nil {
		return nil, fmt.Errorf("dashboard requires a user")
	}

	key := cache.DashboardKey(user.Role, user.ID)

	var stats DashboardStats
	err := s.cache.Dashboard.CacheOrExecute(ctx, key, &stats, cache.DashboardCacheConfig.TTL, func() (interface{}, error) {
		s.logger.Debug("Computing dashboard stats", "role", user.Role, "user_id", user.ID)
		switch user.Role {
		case models.RoleAdmin:
			return s.adminStats(ctx)
		case models.RoleSupervisor:
			return s.supervisorStats(ctx, user.ID)
		case models.RoleIntern:
			return s.internStats(ctx, user.ID)
		}
		return nil, fmt.Errorf("unknown role %q", user.Role)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *dashboardService) adminStats(ctx context.Context) (*DashboardStats, error) {
	dash := s.repo.Dashboard()

	pending, err := dash.CountPendingInterns(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending interns: %w", err)
	}

	internships, err := dash.CountInternships(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count internships: %w", err)
	}

	applications, err := dash.CountApplicationsByStatus(ctx, nil, string(models.ApplicationPending))
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	reports, err := dash.CountReportsByStatus(ctx, nil, string(models.ReportSubmitted))
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	return &DashboardStats{
		Role:                models.RoleAdmin,
		PendingInterns:      pending,
		Internships:         internships,
		PendingApplications: applications,
		SubmittedReports:    reports,
	}, nil
}

func (s *dashboardService) supervisorStats(ctx context.Context, supervisorID int64) (*DashboardStats, error) {
	dash := s.repo.Dashboard()

	toReview, err := dash.CountSupervisorReports(ctx, nil, supervisorID, string(models.ReportSubmitted))
	if err != nil {
		return nil, fmt.Errorf("failed to count reports to review: %w", err)
	}

	assigned, err := dash.CountAssignedInternships(ctx, nil, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count assigned internships: %w", err)
	}

	return &DashboardStats{
		Role:                models.RoleSupervisor,
		ReportsToReview:     toReview,
		AssignedInternships: assigned,
	}, nil
}

func (s *dashboardService) internStats(ctx context.Context, internID int64) (*DashboardStats, error) {
	dash := s.repo.Dashboard()

	applications, err := dash.CountInternApplications(ctx, nil, internID)
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	reports, err := dash.CountInternReports(ctx, nil, internID)
	if err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	return &DashboardStats{
		Role:         models.RoleIntern,
		Applications: applications,
		Reports:      reports,
	}, nil
}
