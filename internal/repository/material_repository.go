package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// MaterialFilters defines filter options for material listing
type MaterialFilters struct {
	ProjectID     *uuid.UUID
	MaterialType  string
	PaymentStatus *domain.PaymentStatus
	Search        string
}

// MaterialRepository handles project material purchases
type MaterialRepository struct {
	db *gorm.DB
}

// NewMaterialRepository creates a new material repository instance
func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create inserts a material purchase
func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

// GetByID retrieves a material visible to the caller
func (r *MaterialRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Material, error) {
	var material domain.Material
	query := ApplyProjectScope(ctx, r.db.WithContext(ctx).Where("id = ?", id), "project_id")
	if err := query.First(&material).Error; err != nil {
		return nil, notFound(err, "material", id)
	}
	return &material, nil
}

// GetForUpdate locks a material row inside tx
func (r *MaterialRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Material, error) {
	var material domain.Material
	if err := lockedFirst(ctx, tx, &material, id); err != nil {
		return nil, notFound(err, "material", id)
	}
	return &material, nil
}

// Update writes the material when its version still matches the one read
func (r *MaterialRepository) Update(ctx context.Context, tx *gorm.DB, m *domain.Material, readVersion int) error {
	columns := ledgerColumns(m.Ledger)
	columns["name"] = m.Name
	columns["material_type"] = m.MaterialType
	columns["quantity"] = m.Quantity
	columns["unit"] = m.Unit
	columns["unit_price"] = m.UnitPrice
	columns["supplier_name"] = m.SupplierName
	columns["purchase_date"] = m.PurchaseDate
	if err := updateVersioned(ctx, conn(r.db, tx), &domain.Material{}, m.ID, readVersion, columns); err != nil {
		return err
	}
	m.Version = readVersion + 1
	return nil
}

// List returns a page of materials, newest first
func (r *MaterialRepository) List(ctx context.Context, page, pageSize int, filters *MaterialFilters) ([]domain.Material, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)
	query := r.filtered(ctx, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var materials []domain.Material
	err := query.
		Order("purchase_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&materials).Error
	return materials, total, err
}

// ListAll returns every material matching filters
func (r *MaterialRepository) ListAll(ctx context.Context, filters *MaterialFilters) ([]domain.Material, error) {
	var materials []domain.Material
	err := r.filtered(ctx, filters).Find(&materials).Error
	return materials, err
}

func (r *MaterialRepository) filtered(ctx context.Context, filters *MaterialFilters) *gorm.DB {
	query := ApplyProjectScope(ctx, r.db.WithContext(ctx).Model(&domain.Material{}), "project_id")
	if filters == nil {
		return query
	}
	if filters.ProjectID != nil {
		query = query.Where("project_id = ?", *filters.ProjectID)
	}
	if filters.MaterialType != "" {
		query = query.Where("material_type = ?", filters.MaterialType)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	return query
}
