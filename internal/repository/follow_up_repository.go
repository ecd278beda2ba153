package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// FollowUpRepository handles scheduled lead contacts
type FollowUpRepository struct {
	db *gorm.DB
}

// NewFollowUpRepository creates a new follow-up repository instance
func NewFollowUpRepository(db *gorm.DB) *FollowUpRepository {
	return &FollowUpRepository{db: db}
}

// Create inserts a follow-up
func (r *FollowUpRepository) Create(ctx context.Context, tx *gorm.DB, f *domain.FollowUp) error {
	return conn(r.db, tx).WithContext(ctx).Create(f).Error
}

// GetByID retrieves a follow-up
func (r *FollowUpRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.FollowUp, error) {
	var f domain.FollowUp
	if err := conn(r.db, tx).WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "follow-up", id)
	}
	return &f, nil
}

// Complete records the outcome of a follow-up
func (r *FollowUpRepository) Complete(ctx context.Context, tx *gorm.DB, f *domain.FollowUp) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&domain.FollowUp{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"completed_at": f.CompletedAt,
			"outcome":      f.Outcome,
		}).Error
}

// ListByLead returns a lead's follow-ups in schedule order, reading through tx when given
func (r *FollowUpRepository) ListByLead(ctx context.Context, tx *gorm.DB, leadID uuid.UUID) ([]domain.FollowUp, error) {
	var followUps []domain.FollowUp
	err := conn(r.db, tx).WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("scheduled_at ASC").
		Find(&followUps).Error
	return followUps, err
}
