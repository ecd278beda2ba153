package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// MilestoneFilters selects payment milestones
type MilestoneFilters struct {
	ProjectID *uuid.UUID
	Status    *domain.MilestoneStatus
	// Unpaid excludes PAID milestones
	Unpaid bool
	// WithDueDate keeps only milestones that have a due date
	WithDueDate bool
}

// MilestoneRepository handles payment milestones
type MilestoneRepository struct {
	db *gorm.DB
}

// NewMilestoneRepository creates a new milestone repository instance
func NewMilestoneRepository(db *gorm.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// Create inserts milestones in one statement
func (r *MilestoneRepository) Create(ctx context.Context, tx *gorm.DB, milestones ...*domain.PaymentMilestone) error {
	if len(milestones) == 0 {
		return nil
	}
	return conn(r.db, tx).WithContext(ctx).Create(milestones).Error
}

// GetByID retrieves a milestone with its part payments, honoring the caller's scope
func (r *MilestoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentMilestone, error) {
	var m domain.PaymentMilestone
	query := r.db.WithContext(ctx).
		Preload("PartPayments", func(db *gorm.DB) *gorm.DB { return db.Order("confirmed_at ASC") }).
		Where("id = ?", id)
	query = ApplyProjectScope(ctx, query, "project_id")
	if err := query.First(&m).Error; err != nil {
		return nil, notFound(err, "milestone", id)
	}
	return &m, nil
}

// GetForUpdate locks a milestone row inside tx
func (r *MilestoneRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.PaymentMilestone, error) {
	var m domain.PaymentMilestone
	if err := lockedFirst(ctx, tx, &m, id); err != nil {
		return nil, notFound(err, "milestone", id)
	}
	return &m, nil
}

// Update writes the workflow and ledger fields when the version still matches the one read
func (r *MilestoneRepository) Update(ctx context.Context, tx *gorm.DB, m *domain.PaymentMilestone, readVersion int) error {
	columns := map[string]interface{}{
		"stage_name":                m.StageName,
		"description":               m.Description,
		"amount":                    m.Amount,
		"paid_amount":               m.PaidAmount,
		"remaining_amount":          m.RemainingAmount,
		"status":                    m.Status,
		"due_date":                  m.DueDate,
		"reminder_days":             m.ReminderDays,
		"display_order":             m.DisplayOrder,
		"admin_acknowledged":        m.AdminAcknowledged,
		"admin_acknowledged_by_id":  m.AdminAcknowledgedByID,
		"admin_acknowledged_at":     m.AdminAcknowledgedAt,
		"client_acknowledged":       m.ClientAcknowledged,
		"client_acknowledged_by_id": m.ClientAcknowledgedByID,
		"client_acknowledged_at":    m.ClientAcknowledgedAt,
		"client_notes":              m.ClientNotes,
		"last_rejected_at":          m.LastRejectedAt,
		"last_rejection_note":       m.LastRejectionNote,
		"paid_date":                 m.PaidDate,
	}
	if err := updateVersioned(ctx, conn(r.db, tx), &domain.PaymentMilestone{}, m.ID, readVersion, columns); err != nil {
		return err
	}
	m.Version = readVersion + 1
	return nil
}

// ListAll returns milestones in display order, reading through tx when given
func (r *MilestoneRepository) ListAll(ctx context.Context, tx *gorm.DB, filters *MilestoneFilters) ([]domain.PaymentMilestone, error) {
	query := conn(r.db, tx).WithContext(ctx).Model(&domain.PaymentMilestone{})
	if tx == nil {
		query = ApplyProjectScope(ctx, query, "project_id")
	}
	if filters != nil {
		if filters.ProjectID != nil {
			query = query.Where("project_id = ?", *filters.ProjectID)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.Unpaid {
			query = query.Where("status <> ?", domain.MilestonePaid)
		}
		if filters.WithDueDate {
			query = query.Where("due_date IS NOT NULL")
		}
	}
	var milestones []domain.PaymentMilestone
	err := query.Order("display_order ASC, created_at ASC").Find(&milestones).Error
	return milestones, err
}

// MaxDisplayOrder returns the highest display order used in a project
func (r *MilestoneRepository) MaxDisplayOrder(ctx context.Context, projectID uuid.UUID) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&domain.PaymentMilestone{}).
		Where("project_id = ?", projectID).
		Select("MAX(display_order)").
		Row().
		Scan(&max)
	if err != nil {
		return 0, err
	}
	return int(max.Int64), nil
}
