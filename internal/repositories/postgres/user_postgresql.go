package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
)

const userColumns = "id, name, email, password_hash, role, is_approved, created_at, updated_at"

// UserPostgreSQL is the credential store. It deliberately bypasses the ORM so
// every statement reads as the exact parameterized SQL that runs.
type UserPostgreSQL struct {
	db *sqlx.DB
}

func NewUserPostgreSQL(db *sqlx.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := u.db.Rebind("SELECT " + userColumns + " FROM users WHERE email = ?")
	if err := u.db.GetContext(ctx, &user, query, email); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := u.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	if err := u.db.GetContext(ctx, &user, query, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	query := u.db.Rebind("SELECT COUNT(*) FROM users WHERE email = ?")
	if err := u.db.GetContext(ctx, &count, query, email); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// Insert stores a new user and fills in its id and timestamps.
func (u *UserPostgreSQL) Insert(ctx context.Context, user *models.User) (int64, error) {
	now := time.Now().UTC()
	query := u.db.Rebind(`INSERT INTO users (name, email, password_hash, role, is_approved, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := u.db.QueryRowxContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, string(user.Role), user.IsApproved, now, now,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repositories.ErrDuplicate
		}
		return 0, fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return id, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	query := u.db.Rebind(`UPDATE users SET name = ?, email = ?, role = ?, is_approved = ?, updated_at = ?
		WHERE id = ?`)

	res, err := u.db.ExecContext(ctx, query, user.Name, user.Email, string(user.Role), user.IsApproved, now, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	user.UpdatedAt = now
	return expectOneRow(res, "update user")
}

func (u *UserPostgreSQL) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := u.db.Rebind("UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?")
	res, err := u.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return expectOneRow(res, "update password")
}

func (u *UserPostgreSQL) Approve(ctx context.Context, id int64) error {
	query := u.db.Rebind("UPDATE users SET is_approved = ?, updated_at = ? WHERE id = ?")
	res, err := u.db.ExecContext(ctx, query, true, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to approve user: %w", err)
	}
	return expectOneRow(res, "approve user")
}

func (u *UserPostgreSQL) Delete(ctx context.Context, id int64) error {
	query := u.db.Rebind("DELETE FROM users WHERE id = ?")
	res, err := u.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOneRow(res, "delete user")
}

func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	var (
		where []string
		args  []interface{}
	)
	if filters.Role != nil {
		where = append(where, "role = ?")
		args = append(args, string(*filters.Role))
	}
	if filters.Approved != nil {
		where = append(where, "is_approved = ?")
		args = append(args, *filters.Approved)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		pattern := "%" + strings.ToLower(q) + "%"
		args = append(args, pattern, pattern)
	}

	query := "SELECT " + userColumns + " FROM users"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
		if filters.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filters.Offset)
		}
	}

	var users []*models.User
	if err := u.db.SelectContext(ctx, &users, u.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (u *UserPostgreSQL) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	query := u.db.Rebind("SELECT COUNT(*) FROM users WHERE role = ?")
	if err := u.db.GetContext(ctx, &count, query, string(role)); err != nil {
		return 0, fmt.Errorf("failed to count users by role: %w", err)
	}
	return count, nil
}

// CountPending counts interns still waiting for approval.
func (u *UserPostgreSQL) CountPending(ctx context.Context) (int64, error) {
	var count int64
	query := u.db.Rebind("SELECT COUNT(*) FROM users WHERE role = ? AND is_approved = ?")
	if err := u.db.GetContext(ctx, &count, query, string(models.RoleIntern), false); err != nil {
		return 0, fmt.Errorf("failed to count pending users: %w", err)
	}
	return count, nil
}
