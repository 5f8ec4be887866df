package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/cache"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
	"github.com/shaderl/internship-service/internal/storage"
	"github.com/shaderl/internship-service/internal/validator"
)

type reportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	storage   *storage.LocalStorage
	cache     *cache.CacheManager
	maxBytes  int64
}

func NewReportService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, store *storage.LocalStorage, cm *cache.CacheManager, maxBytes int64) ReportService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &reportService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		storage:   store,
		cache:     cm,
		maxBytes:  maxBytes,
	}
}

// Submit stores an intern's PDF report against an internship they applied to.
// The file is checked by content and stored under a generated name.
func (s *reportService) Submit(ctx context.Context, internID int64, req *SubmitReportRequest, upload *ReportUpload) (*models.Report, error) {
	if errs := s.validator.GetBusinessValidator().ValidateReportSubmit(req); errs.HasErrors() || upload == nil || upload.Body == nil {
		return nil, ErrReportFieldsReq
	}

	application, err := s.repo.Application().GetByInternAndInternship(ctx, nil, internID, req.InternshipID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrNotApplied
		}
		return nil, fmt.Errorf("failed to check application: %w", err)
	}
	if !application.Status.Active() {
		return nil, ErrNotApplied
	}

	if upload.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	body, err := storage.SniffPDF(upload.Body)
	if err != nil {
		if errors.Is(err, storage.ErrNotPDF) {
			return nil, ErrOnlyPDF
		}
		s.logger.Error("Failed to read upload", "error", err, "intern_id", internID)
		return nil, ErrUploadFailed
	}

	name := fmt.Sprintf("report_%d_%s.pdf", internID, uuid.NewString())
	size, err := s.storage.Save(ctx, name, body, s.maxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, ErrFileTooLarge
		}
		s.logger.Error("Failed to store report file", "error", err, "intern_id", internID)
		return nil, ErrUploadFailed
	}

	pages := 0
	if path, err := s.storage.Path(name); err == nil {
		pages = storage.PageCount(path)
	}

	report := &models.Report{
		InternshipID: req.InternshipID,
		InternID:     internID,
		PeriodLabel:  req.PeriodLabel,
		Notes:        req.Notes,
		FilePath:     name,
		OriginalName: filepath.Base(upload.Name),
		FileSize:     size,
		PageCount:    pages,
		Status:       models.ReportSubmitted,
		SubmittedAt:  time.Now().UTC(),
	}
	if err := s.repo.Report().Create(ctx, nil, report); err != nil {
		if rmErr := s.storage.Remove(name); rmErr != nil {
			s.logger.Error("Failed to remove orphaned report file", "error", rmErr, "file", name)
		}
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	cache.InvalidateDashboards(ctx, s.cache)
	s.logger.Info("Report submitted", "report_id", report.ID, "intern_id", internID, "pages", pages)
	return report, nil
}

// ReportableInternships lists internships with a pending or accepted
// application from the intern.
func (s *reportService) ReportableInternships(ctx context.Context, internID int64) ([]*models.Internship, error) {
	internships, err := s.repo.Application().ActiveInternships(ctx, nil, internID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reportable internships: %w", err)
	}
	return internships, nil
}

func (s *reportService) ListForIntern(ctx context.Context, internID int64) ([]*models.Report, error) {
	reports, err := s.repo.Report().ListByIntern(ctx, nil, internID, repositories.ReportFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *reportService) ListForSupervisor(ctx context.Context, supervisorID int64) ([]*models.Report, error) {
	reports, err := s.repo.Report().ListForSupervisor(ctx, nil, supervisorID, repositories.ReportFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *reportService) List(ctx context.Context) ([]*models.Report, error) {
	reports, err := s.repo.Report().List(ctx, nil, repositories.ReportFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// MarkReviewed is limited to supervisors assigned to the report's internship.
func (s *reportService) MarkReviewed(ctx context.Context, supervisorID int64, reportID uint) error {
	report, err := s.get(ctx, reportID)
	if err != nil {
		return err
	}

	assigned, err := s.repo.Internship().IsSupervisor(ctx, nil, report.InternshipID, supervisorID)
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if !assigned {
		return NewPermissionError(supervisorID, reportID, "report", "review", "not assigned to internship")
	}

	if err := s.repo.Report().MarkReviewed(ctx, nil, reportID, supervisorID, time.Now().UTC()); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrReportNotFound
		}
		return fmt.Errorf("failed to mark report reviewed: %w", err)
	}

	cache.InvalidateDashboards(ctx, s.cache)
	s.logger.Info("Report reviewed", "report_id", reportID, "supervisor_id", supervisorID)
	return nil
}

func (s *reportService) Open(ctx context.Context, viewer *auth.UserSnapshot, reportID uint) (*models.Report, *os.File, error) {
	if viewer == nil {
		return nil, nil, NewPermissionError(0, reportID, "report", "read", "anonymous")
	}

	report, err := s.get(ctx, reportID)
	if err != nil {
		return nil, nil, err
	}

	allowed, err := s.canRead(ctx, viewer, report)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, NewPermissionError(viewer.ID, reportID, "report", "read", "not owner or assigned supervisor")
	}

	f, err := s.storage.Open(report.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Report file missing", "report_id", reportID, "file", report.FilePath)
			return nil, nil, ErrReportNotFound
		}
		return nil, nil, fmt.Errorf("failed to open report file: %w", err)
	}
	return report, f, nil
}

func (s *reportService) canRead(ctx context.Context, viewer *auth.UserSnapshot, report *models.Report) (bool, error) {
	switch viewer.Role {
	case models.RoleAdmin:
		return true, nil
	case models.RoleIntern:
		return report.InternID == viewer.ID, nil
	case models.RoleSupervisor:
		assigned, err := s.repo.Internship().IsSupervisor(ctx, nil, report.InternshipID, viewer.ID)
		if err != nil {
			return false, fmt.Errorf("failed to check assignment: %w", err)
		}
		return assigned, nil
	}
	return false, nil
}

func (s *reportService) get(ctx context.Context, id uint) (*models.Report, error) {
	report, err := s.repo.Report().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}
