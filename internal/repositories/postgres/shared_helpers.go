package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/shaderl/internship-service/internal/repositories"
)

const pgUniqueViolation = "23505"

// isUniqueViolation recognises unique-constraint failures from both drivers.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// expectOneRow turns a zero-row update or delete into ErrNotFound.
func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// applyPagination applies limit/offset and a whitelisted order clause
// qualified with the given table.
func applyPagination(query *gorm.DB, table, orderBy string, limit, offset int) *gorm.DB {
	allowed := map[string]bool{
		"created_at DESC":   true,
		"submitted_at DESC": true,
		"title ASC":         true,
	}
	if !allowed[orderBy] {
		orderBy = "created_at DESC"
	}

	query = query.Order(table + "." + orderBy).Order(table + ".id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repositories.ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
