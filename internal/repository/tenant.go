package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/auth"
	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// DefaultPageSize is used when the caller does not ask for one
const DefaultPageSize = 20

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string    // The field to sort by (API field name)
	Order SortOrder // asc or desc
}

// DefaultSortConfig returns a default sort configuration (createdAt DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "createdAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the SQL ORDER BY clause from field mapping and sort config.
// fieldMap maps API field names to database column names; unknown fields fall back to defaultColumn.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// NormalizePage clamps page and page size to sane values
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ApplyClientFilter limits a projects query to the caller's own projects when the caller is a customer
func ApplyClientFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	if uc, ok := auth.FromContext(ctx); ok && uc.IsCustomer() {
		return query.Where("client_id = ?", uc.UserID)
	}
	return query
}

// ApplyProjectScope limits a query on a project-owned table to the caller's projects when the caller is a customer.
// column is the table's project id column.
func ApplyProjectScope(ctx context.Context, query *gorm.DB, column string) *gorm.DB {
	uc, ok := auth.FromContext(ctx)
	if !ok || !uc.IsCustomer() {
		return query
	}
	owned := query.Session(&gorm.Session{NewDB: true}).
		Model(&domain.Project{}).
		Select("id").
		Where("client_id = ?", uc.UserID)
	return query.Where(column+" IN (?)", owned)
}

// conn returns tx when the caller is inside a transaction
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// lockedFirst loads a row with SELECT ... FOR UPDATE
func lockedFirst(ctx context.Context, tx *gorm.DB, dest interface{}, id uuid.UUID) error {
	return tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(dest, "id = ?", id).Error
}

// updateVersioned writes columns only when the row still carries the expected version,
// and bumps the version. No matching row means someone else wrote first.
func updateVersioned(ctx context.Context, tx *gorm.DB, model interface{}, id uuid.UUID, version int, columns map[string]interface{}) error {
	columns["version"] = version + 1
	result := tx.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", id, version).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConcurrentUpdate
	}
	return nil
}

// notFound converts gorm's missing-row error into the domain error
func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity, id)
	}
	return err
}

// ledgerColumns returns the column updates for an embedded ledger
func ledgerColumns(l domain.Ledger) map[string]interface{} {
	return map[string]interface{}{
		"total_amount":     l.TotalAmount,
		"paid_amount":      l.PaidAmount,
		"remaining_amount": l.RemainingAmount,
		"payment_status":   l.PaymentStatus,
	}
}
