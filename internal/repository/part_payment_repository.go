package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// PartPaymentRepository stores milestone installments
type PartPaymentRepository struct {
	db *gorm.DB
}

// NewPartPaymentRepository creates a new part payment repository instance
func NewPartPaymentRepository(db *gorm.DB) *PartPaymentRepository {
	return &PartPaymentRepository{db: db}
}

// Create appends an installment
func (r *PartPaymentRepository) Create(ctx context.Context, tx *gorm.DB, p *domain.PartPayment) error {
	return conn(r.db, tx).WithContext(ctx).Create(p).Error
}

// ListByMilestone returns a milestone's installments, oldest first
func (r *PartPaymentRepository) ListByMilestone(ctx context.Context, milestoneID uuid.UUID) ([]domain.PartPayment, error) {
	var payments []domain.PartPayment
	err := r.db.WithContext(ctx).
		Where("milestone_id = ?", milestoneID).
		Order("confirmed_at ASC").
		Find(&payments).Error
	return payments, err
}

// ListAll returns installments, optionally for one project
func (r *PartPaymentRepository) ListAll(ctx context.Context, projectID *uuid.UUID) ([]domain.PartPayment, error) {
	query := ApplyProjectScope(ctx, r.db.WithContext(ctx).Model(&domain.PartPayment{}), "project_id")
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}
	var payments []domain.PartPayment
	err := query.Order("confirmed_at ASC").Find(&payments).Error
	return payments, err
}
