package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// ProjectFilters defines filter options for project listing
type ProjectFilters struct {
	Status   *domain.ProjectStatus
	ClientID *uuid.UUID
	AdminID  *uuid.UUID
	Search   string
}

var projectSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"status":    "status",
	"budget":    "budget",
	"startDate": "start_date",
}

// ProjectRepository handles project and project stage data access
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project together with its stages
func (r *ProjectRepository) Create(ctx context.Context, tx *gorm.DB, project *domain.Project) error {
	return conn(r.db, tx).WithContext(ctx).Create(project).Error
}

// GetByID retrieves a project with its stages, honoring the caller's scope
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	query := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC") }).
		Where("id = ?", id)
	query = ApplyClientFilter(ctx, query)
	if err := query.First(&project).Error; err != nil {
		return nil, notFound(err, "project", id)
	}
	return &project, nil
}

// GetForUpdate locks a project row inside tx
func (r *ProjectRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	if err := lockedFirst(ctx, tx, &project, id); err != nil {
		return nil, notFound(err, "project", id)
	}
	return &project, nil
}

// List returns a page of projects visible to the caller
func (r *ProjectRepository) List(ctx context.Context, page, pageSize int, filters *ProjectFilters, sort SortConfig) ([]domain.Project, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	query := r.filtered(ctx, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []domain.Project
	err := query.
		Order(BuildOrderClause(sort, projectSortableFields, "created_at")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&projects).Error
	return projects, total, err
}

// ListAll returns every project visible to the caller matching filters
func (r *ProjectRepository) ListAll(ctx context.Context, filters *ProjectFilters) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.filtered(ctx, filters).Order("name ASC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) filtered(ctx context.Context, filters *ProjectFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.Project{})
	query = ApplyClientFilter(ctx, query)
	if filters == nil {
		return query
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	if filters.AdminID != nil {
		query = query.Where("admin_id = ?", *filters.AdminID)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(location) LIKE ?", pattern, pattern)
	}
	return query
}

// Update saves the editable project fields
func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", project.ID).
		Updates(map[string]interface{}{
			"name":          project.Name,
			"location":      project.Location,
			"description":   project.Description,
			"status":        project.Status,
			"budget":        project.Budget,
			"start_date":    project.StartDate,
			"end_date":      project.EndDate,
			"admin_id":      project.AdminID,
			"current_stage": project.CurrentStage,
		}).Error
}

// UpdateSpent stores the derived spent amount
func (r *ProjectRepository) UpdateSpent(ctx context.Context, tx *gorm.DB, id uuid.UUID, spent decimal.Decimal) error {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", id).
		Update("spent", spent)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "project", id)
	}
	return nil
}

// UpdateCurrentStage sets the name of the stage the project is in
func (r *ProjectRepository) UpdateCurrentStage(ctx context.Context, tx *gorm.DB, id uuid.UUID, stage string) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", id).
		Update("current_stage", stage).Error
}

// ListStages returns the stages of a project in display order
func (r *ProjectRepository) ListStages(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]domain.ProjectStage, error) {
	var stages []domain.ProjectStage
	err := conn(r.db, tx).WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("display_order ASC").
		Find(&stages).Error
	return stages, err
}

// UpdateStage saves a stage's status and timestamps
func (r *ProjectRepository) UpdateStage(ctx context.Context, tx *gorm.DB, stage *domain.ProjectStage) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&domain.ProjectStage{}).
		Where("id = ?", stage.ID).
		Updates(map[string]interface{}{
			"status":       stage.Status,
			"started_at":   stage.StartedAt,
			"completed_at": stage.CompletedAt,
		}).Error
}
