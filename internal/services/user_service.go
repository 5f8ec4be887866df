package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/cache"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
	"github.com/shaderl/internship-service/internal/storage"
	"github.com/shaderl/internship-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	passwords auth.PasswordVerifier
	cache     *cache.CacheManager
	storage   *storage.LocalStorage
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, passwords auth.PasswordVerifier, cm *cache.CacheManager, store *storage.LocalStorage) UserService {
	if cm == nil {
		cm = cache.NewCacheManager(nil)
	}
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		passwords: passwords,
		cache:     cm,
		storage:   store,
	}
}

func (s *userService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if errs := s.validator.GetBusinessValidator().ValidateUserCreate(req); errs.HasErrors() {
		return nil, errs
	}

	role, _ := models.ParseRole(req.Role)
	approved := req.IsApproved || !role.RequiresApproval()

	user, err := s.insert(ctx, req.Name, req.Email, req.Password, role, approved)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created by admin", "user_id", user.ID, "role", role)
	return user, nil
}

func (s *userService) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*models.User, error) {
	if errs := s.validator.GetBusinessValidator().ValidateUserUpdate(req); errs.HasErrors() {
		return nil, errs
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, _ := models.ParseRole(req.Role)
	// A demoted admin could be deleted, which would bypass the delete guard.
	if user.Role == models.RoleAdmin && role != models.RoleAdmin {
		return nil, ErrCannotDemoteAdmin
	}
	user.Name = req.Name
	user.Email = req.Email
	user.Role = role
	user.IsApproved = req.IsApproved || !role.RequiresApproval()

	if err := s.repo.User().Update(ctx, user); err != nil {
		switch {
		case repositories.IsDuplicateError(err):
			return nil, ErrEmailInUse
		case repositories.IsNotFoundError(err):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	cache.InvalidateDashboards(ctx, s.cache)
	s.logger.Info("User updated", "user_id", id)
	return user, nil
}

// Approve lifts the approval gate for an intern.
func (s *userService) Approve(ctx context.Context, id int64) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role != models.RoleIntern {
		return ErrNotAnIntern
	}
	if user.IsApproved {
		return nil
	}

	if err := s.repo.User().Approve(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to approve user: %w", err)
	}

	cache.InvalidateDashboards(ctx, s.cache)
	s.logger.Info("Intern approved", "user_id", id)
	return nil
}

func (s *userService) ApproveByEmail(ctx context.Context, email string) error {
	user, err := s.repo.User().FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	return s.Approve(ctx, user.ID)
}

// Delete removes an account. Admin accounts and the actor's own account are
// protected. An intern's report rows go with the account, and so do the
// stored PDFs behind them.
func (s *userService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrCannotDeleteSelf
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == models.RoleAdmin {
		return ErrCannotDeleteAdmin
	}

	var files []string
	if user.Role == models.RoleIntern {
		reports, err := s.repo.Report().ListByIntern(ctx, nil, id, repositories.ReportFilters{})
		if err != nil {
			return fmt.Errorf("failed to list reports: %w", err)
		}
		for _, r := range reports {
			files = append(files, r.FilePath)
		}
	}

	if err := s.repo.User().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.removeFiles(ctx, files)
	cache.InvalidateInternships(ctx, s.cache)
	s.logger.Info("User deleted", "user_id", id, "actor_id", actorID, "report_files", len(files))
	return nil
}

// The rows are already gone, so a file that cannot be removed is only logged.
func (s *userService) removeFiles(ctx context.Context, files []string) {
	if s.storage == nil {
		return
	}
	for _, name := range files {
		if err := s.storage.Remove(name); err != nil {
			s.logger.WarnContext(ctx, "Failed to remove report file", "file", name, "error", err)
		}
	}
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, filters UserListFilters) ([]*models.User, error) {
	users, err := s.repo.User().List(ctx, toRepoFilters(filters))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Pending lists interns waiting for approval.
func (s *userService) Pending(ctx context.Context) ([]*models.User, error) {
	return s.List(ctx, UserListFilters{Role: string(models.RoleIntern), Status: UserStatusPending})
}

func (s *userService) Supervisors(ctx context.Context) ([]*models.User, error) {
	return s.List(ctx, UserListFilters{Role: string(models.RoleSupervisor)})
}

func (s *userService) HasAdmin(ctx context.Context) (bool, error) {
	count, err := s.repo.User().CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to count admins: %w", err)
	}
	return count > 0, nil
}

// CreateFirstAdmin bootstraps the installation. It refuses once any admin exists.
func (s *userService) CreateFirstAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	exists, err := s.HasAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminExists
	}

	req := validator.RegisterRequest{Name: name, Email: email, Password: password, Role: string(models.RoleAdmin)}
	if errs := s.validator.GetBusinessValidator().ValidateRegistration(&req); errs.HasErrors() {
		return nil, errs
	}

	user, err := s.insert(ctx, req.Name, req.Email, req.Password, models.RoleAdmin, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("First admin created", "user_id", user.ID)
	return user, nil
}

func (s *userService) ResetPassword(ctx context.Context, email, password string) error {
	req := validator.PasswordResetRequest{Email: email, Password: password}
	if errs := s.validator.GetBusinessValidator().ValidatePasswordReset(&req); errs.HasErrors() {
		return errs
	}

	user, err := s.repo.User().FindByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.User().UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("Password reset", "user_id", user.ID)
	return nil
}

var exportHeader = []interface{}{"ID", "Name", "Email", "Role", "Approved", "Created"}

// ExportXLSX writes one row per matching user to a single-sheet workbook.
func (s *userService) ExportXLSX(ctx context.Context, filters UserListFilters, w io.Writer) error {
	users, err := s.List(ctx, filters)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Error("Failed to close workbook", "error", err)
		}
	}()

	const sheet = "Users"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		approved := "No"
		if u.ApprovedForLogin() {
			approved = "Yes"
		}
		row := []interface{}{u.ID, u.Name, u.Email, u.Role.Title(), approved, u.CreatedAt.Format("2006-01-02 15:04")}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *userService) insert(ctx context.Context, name, email, password string, role models.UserRole, approved bool) (*models.User, error) {
	exists, err := s.repo.User().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailInUse
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsApproved:   approved,
	}
	if _, err := s.repo.User().Insert(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	cache.InvalidateDashboards(ctx, s.cache)
	return user, nil
}

func toRepoFilters(filters UserListFilters) repositories.UserFilters {
	out := repositories.UserFilters{Query: filters.Query}
	if role, ok := models.ParseRole(filters.Role); ok {
		out.Role = &role
	}

	var approved bool
	switch filters.Status {
	case UserStatusPending:
		approved = false
		out.Approved = &approved
	case UserStatusApproved:
		approved = true
		out.Approved = &approved
	}
	return out
}
