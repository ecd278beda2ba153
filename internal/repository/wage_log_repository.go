package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// WageLogFilters defines filter options for wage log listing
type WageLogFilters struct {
	ProjectID *uuid.UUID
	Category  string
	Status    *domain.WagePaymentStatus
	From      *time.Time
	To        *time.Time
}

// WageLogRepository handles wage log data access
type WageLogRepository struct {
	db *gorm.DB
}

// NewWageLogRepository creates a new wage log repository instance
func NewWageLogRepository(db *gorm.DB) *WageLogRepository {
	return &WageLogRepository{db: db}
}

// Create inserts a wage log
func (r *WageLogRepository) Create(ctx context.Context, log *domain.WageLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// GetByID retrieves a wage log visible to the caller
func (r *WageLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.WageLog, error) {
	var log domain.WageLog
	query := ApplyProjectScope(ctx, r.db.WithContext(ctx).Where("id = ?", id), "project_id")
	if err := query.First(&log).Error; err != nil {
		return nil, notFound(err, "wage log", id)
	}
	return &log, nil
}

// GetForUpdate locks a wage log row inside tx
func (r *WageLogRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.WageLog, error) {
	var log domain.WageLog
	if err := lockedFirst(ctx, tx, &log, id); err != nil {
		return nil, notFound(err, "wage log", id)
	}
	return &log, nil
}

// Update saves a wage log's editable and derived fields
func (r *WageLogRepository) Update(ctx context.Context, tx *gorm.DB, log *domain.WageLog) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&domain.WageLog{}).
		Where("id = ?", log.ID).
		Updates(map[string]interface{}{
			"work_date":       log.WorkDate,
			"category":        log.Category,
			"worker_count":    log.WorkerCount,
			"shift_kind":      log.ShiftKind,
			"shift_fraction":  log.ShiftFraction,
			"hours_worked":    log.HoursWorked,
			"rate_per_worker": log.RatePerWorker,
			"total_wage":      log.TotalWage,
			"payment_status":  log.PaymentStatus,
			"paid_at":         log.PaidAt,
			"quality_issue":   log.QualityIssue,
			"mistake_noted":   log.MistakeNoted,
			"notes":           log.Notes,
		}).Error
}

// List returns a page of wage logs, newest work date first
func (r *WageLogRepository) List(ctx context.Context, page, pageSize int, filters *WageLogFilters) ([]domain.WageLog, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)
	query := r.filtered(ctx, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []domain.WageLog
	err := query.
		Order("work_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}

// ListAll returns every wage log matching filters
func (r *WageLogRepository) ListAll(ctx context.Context, filters *WageLogFilters) ([]domain.WageLog, error) {
	var logs []domain.WageLog
	err := r.filtered(ctx, filters).Order("work_date ASC").Find(&logs).Error
	return logs, err
}

func (r *WageLogRepository) filtered(ctx context.Context, filters *WageLogFilters) *gorm.DB {
	query := ApplyProjectScope(ctx, r.db.WithContext(ctx).Model(&domain.WageLog{}), "project_id")
	if filters == nil {
		return query
	}
	if filters.ProjectID != nil {
		query = query.Where("project_id = ?", *filters.ProjectID)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.Status != nil {
		query = query.Where("payment_status = ?", *filters.Status)
	}
	if filters.From != nil {
		query = query.Where("work_date >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("work_date <= ?", *filters.To)
	}
	return query
}
