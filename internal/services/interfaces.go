package services

import (
	"context"
	"io"
	"os"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/validator"
)

// ===== REQUEST DTOs =====

// Use business validator types
type CreateUserRequest = validator.UserCreateRequest
type UpdateUserRequest = validator.UserUpdateRequest
type CreateInternshipRequest = validator.InternshipCreateRequest
type SubmitReportRequest = validator.ReportSubmitRequest

// UserStatus filters the users page by approval state
type UserStatus string

const (
	UserStatusAll      UserStatus = "all"
	UserStatusPending  UserStatus = "pending"
	UserStatusApproved UserStatus = "approved"
)

type UserListFilters struct {
	Role   string     `form:"role"`
	Status UserStatus `form:"status"`
	Query  string     `form:"q"`
}

// ReportUpload is the file half of a report submission.
type ReportUpload struct {
	Name string
	Size int64
	Body io.Reader
}

// ===== RESPONSE DTOs =====

type DashboardStats struct {
	Role models.UserRole `json:"role"`

	// Admin
	PendingInterns      int64 `json:"pending_interns,omitempty"`
	Internships         int64 `json:"internships,omitempty"`
	PendingApplications int64 `json:"pending_applications,omitempty"`
	SubmittedReports    int64 `json:"submitted_reports,omitempty"`

	// Supervisor
	ReportsToReview     int64 `json:"reports_to_review,omitempty"`
	AssignedInternships int64 `json:"assigned_internships,omitempty"`

	// Intern
	Applications int64 `json:"applications,omitempty"`
	Reports      int64 `json:"reports,omitempty"`
}

// ===== SERVICE INTERFACES =====

type UserService interface {
	Create(ctx context.Context, req *CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, id int64, req *UpdateUserRequest) (*models.User, error)
	Approve(ctx context.Context, id int64) error
	ApproveByEmail(ctx context.Context, email string) error
	Delete(ctx context.Context, actorID, id int64) error

	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filters UserListFilters) ([]*models.User, error)
	Pending(ctx context.Context) ([]*models.User, error)
	Supervisors(ctx context.Context) ([]*models.User, error)

	// Installer and CLI support
	HasAdmin(ctx context.Context) (bool, error)
	CreateFirstAdmin(ctx context.Context, name, email, password string) (*models.User, error)
	ResetPassword(ctx context.Context, email, password string) error

	ExportXLSX(ctx context.Context, filters UserListFilters, w io.Writer) error
}

type InternshipService interface {
	Create(ctx context.Context, adminID int64, req *CreateInternshipRequest) (*models.Internship, error)
	GetByID(ctx context.Context, id uint) (*models.Internship, error)
	List(ctx context.Context) ([]*models.Internship, error)
	ListForSupervisor(ctx context.Context, supervisorID int64) ([]*models.Internship, error)

	// AssignSupervisor reports false when the supervisor was already assigned.
	AssignSupervisor(ctx context.Context, internshipID uint, supervisorID int64) (bool, error)
}

type ApplicationService interface {
	// Apply reports false when the intern had already applied.
	Apply(ctx context.Context, internID int64, internshipID uint) (bool, error)
	ListForIntern(ctx context.Context, internID int64) ([]*models.Application, error)
	ListForInternship(ctx context.Context, internshipID uint) ([]*models.Application, error)
	List(ctx context.Context, status *models.ApplicationStatus) ([]*models.Application, error)
	Decide(ctx context.Context, id uint, decision models.ApplicationStatus) error
}

type ReportService interface {
	Submit(ctx context.Context, internID int64, req *SubmitReportRequest, upload *ReportUpload) (*models.Report, error)
	ReportableInternships(ctx context.Context, internID int64) ([]*models.Internship, error)
	ListForIntern(ctx context.Context, internID int64) ([]*models.Report, error)
	ListForSupervisor(ctx context.Context, supervisorID int64) ([]*models.Report, error)
	List(ctx context.Context) ([]*models.Report, error)
	MarkReviewed(ctx context.Context, supervisorID int64, reportID uint) error

	// Open returns the report and its file when viewer may read it. The
	// caller closes the file.
	Open(ctx context.Context, viewer *auth.UserSnapshot, reportID uint) (*models.Report, *os.File, error)
}

type DashboardService interface {
	Stats(ctx context.Context, user *auth.UserSnapshot) (*DashboardStats, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	User() UserService
	Internship() InternshipService
	Application() ApplicationService
	Report() ReportService
	Dashboard() DashboardService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
