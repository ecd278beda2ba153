package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// LeadFilters defines filter options for lead listing
type LeadFilters struct {
	Stage        *domain.LeadStage
	AssignedToID *uuid.UUID
	Source       string
	Search       string
	// OpenOnly excludes WON and LOST leads
	OpenOnly bool
}

var leadSortableFields = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"name":            "name",
	"stage":           "stage",
	"estimatedBudget": "estimated_budget",
	"nextFollowUpAt":  "next_follow_up_at",
}

// LeadRepository handles sales leads
type LeadRepository struct {
	db *gorm.DB
}

// NewLeadRepository creates a new lead repository instance
func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a lead
func (r *LeadRepository) Create(ctx context.Context, tx *gorm.DB, lead *domain.Lead) error {
	return conn(r.db, tx).WithContext(ctx).Create(lead).Error
}

// GetByID retrieves a lead
func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	if err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "lead", id)
	}
	return &lead, nil
}

// GetForUpdate locks a lead row inside tx
func (r *LeadRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Lead, error) {
	var lead domain.Lead
	if err := lockedFirst(ctx, tx, &lead, id); err != nil {
		return nil, notFound(err, "lead", id)
	}
	return &lead, nil
}

// Update saves every mutable lead field
func (r *LeadRepository) Update(ctx context.Context, tx *gorm.DB, lead *domain.Lead) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&domain.Lead{}).
		Where("id = ?", lead.ID).
		Updates(map[string]interface{}{
			"name":              lead.Name,
			"phone":             lead.Phone,
			"email":             lead.Email,
			"source":            lead.Source,
			"location":          lead.Location,
			"estimated_budget":  lead.EstimatedBudget,
			"stage":             lead.Stage,
			"assigned_to_id":    lead.AssignedToID,
			"notes":             lead.Notes,
			"follow_up_count":   lead.FollowUpCount,
			"next_follow_up_at": lead.NextFollowUpAt,
			"last_contacted_at": lead.LastContactedAt,
			"lost_reason":       lead.LostReason,
			"project_id":        lead.ProjectID,
			"closed_at":         lead.ClosedAt,
		}).Error
}

// List returns a page of leads
func (r *LeadRepository) List(ctx context.Context, page, pageSize int, filters *LeadFilters, sort SortConfig) ([]domain.Lead, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)
	query := r.filtered(ctx, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leads []domain.Lead
	err := query.
		Order(BuildOrderClause(sort, leadSortableFields, "created_at")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&leads).Error
	return leads, total, err
}

// ListAll returns every lead matching filters
func (r *LeadRepository) ListAll(ctx context.Context, filters *LeadFilters) ([]domain.Lead, error) {
	var leads []domain.Lead
	err := r.filtered(ctx, filters).Find(&leads).Error
	return leads, err
}

func (r *LeadRepository) filtered(ctx context.Context, filters *LeadFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Lead{})
	if filters == nil {
		return query
	}
	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}
	if filters.AssignedToID != nil {
		query = query.Where("assigned_to_id = ?", *filters.AssignedToID)
	}
	if filters.Source != "" {
		query = query.Where("source = ?", filters.Source)
	}
	if filters.OpenOnly {
		query = query.Where("stage NOT IN ?", []domain.LeadStage{domain.LeadStageWon, domain.LeadStageLost})
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}
	return query
}
