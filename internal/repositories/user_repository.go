package repositories

import (
	"context"

	"github.com/shaderl/internship-service/internal/models"
)

// UserFilters narrows user listings. Nil fields are not applied.
type UserFilters struct {
	Role     *models.UserRole
	Approved *bool
	Query    string // matched against name or email
	Limit    int
	Offset   int
}

// UserRepository is the credential store. Every statement is a single
// parameterized query; uniqueness violations surface as ErrDuplicate.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	Insert(ctx context.Context, user *models.User) (int64, error)
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Approve(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context, filters UserFilters) ([]*models.User, error)
	CountByRole(ctx context.Context, role models.UserRole) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}
