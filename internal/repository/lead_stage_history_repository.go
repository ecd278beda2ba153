package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// LeadStageHistoryRepository appends and reads lead stage changes
type LeadStageHistoryRepository struct {
	db *gorm.DB
}

// NewLeadStageHistoryRepository creates a new history repository instance
func NewLeadStageHistoryRepository(db *gorm.DB) *LeadStageHistoryRepository {
	return &LeadStageHistoryRepository{db: db}
}

// Create appends a history entry
func (r *LeadStageHistoryRepository) Create(ctx context.Context, tx *gorm.DB, h *domain.LeadStageHistory) error {
	return conn(r.db, tx).WithContext(ctx).Create(h).Error
}

// ListByLead returns a lead's stage changes, oldest first
func (r *LeadStageHistoryRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.LeadStageHistory, error) {
	var history []domain.LeadStageHistory
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("changed_at ASC, created_at ASC").
		Find(&history).Error
	return history, err
}
