package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// LedgerPaymentFilters selects payment records for reporting
type LedgerPaymentFilters struct {
	ProjectID *uuid.UUID
	VendorID  *uuid.UUID
	Kind      *domain.LedgerKind
}

// LedgerPaymentRepository stores the immutable payment records of billable entities
type LedgerPaymentRepository struct {
	db *gorm.DB
}

// NewLedgerPaymentRepository creates a new ledger payment repository instance
func NewLedgerPaymentRepository(db *gorm.DB) *LedgerPaymentRepository {
	return &LedgerPaymentRepository{db: db}
}

// Create appends a payment record
func (r *LedgerPaymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *domain.LedgerPayment) error {
	return conn(r.db, tx).WithContext(ctx).Create(payment).Error
}

// ListByLedger returns the payments of one entity, oldest first
func (r *LedgerPaymentRepository) ListByLedger(ctx context.Context, kind domain.LedgerKind, ledgerID uuid.UUID) ([]domain.LedgerPayment, error) {
	var payments []domain.LedgerPayment
	err := r.db.WithContext(ctx).
		Where("ledger_kind = ? AND ledger_id = ?", kind, ledgerID).
		Order("paid_at ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

// ListAll returns payment records matching filters
func (r *LedgerPaymentRepository) ListAll(ctx context.Context, filters *LedgerPaymentFilters) ([]domain.LedgerPayment, error) {
	query := r.db.WithContext(ctx).Model(&domain.LedgerPayment{})
	if filters != nil {
		if filters.ProjectID != nil {
			query = query.Where("project_id = ?", *filters.ProjectID)
		}
		if filters.VendorID != nil {
			query = query.Where("vendor_id = ?", *filters.VendorID)
		}
		if filters.Kind != nil {
			query = query.Where("ledger_kind = ?", *filters.Kind)
		}
	}
	var payments []domain.LedgerPayment
	err := query.Order("paid_at ASC").Find(&payments).Error
	return payments, err
}
