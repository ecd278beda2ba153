package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// RawMaterialOrderFilters defines filter options for raw material order listing
type RawMaterialOrderFilters struct {
	ProjectID     *uuid.UUID
	PaymentStatus *domain.PaymentStatus
	Search        string
}

// RawMaterialOrderRepository handles bulk raw material purchases
type RawMaterialOrderRepository struct {
	db *gorm.DB
}

// NewRawMaterialOrderRepository creates a new raw material order repository instance
func NewRawMaterialOrderRepository(db *gorm.DB) *RawMaterialOrderRepository {
	return &RawMaterialOrderRepository{db: db}
}

// Create inserts an order
func (r *RawMaterialOrderRepository) Create(ctx context.Context, order *domain.RawMaterialOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// GetByID retrieves an order
func (r *RawMaterialOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RawMaterialOrder, error) {
	var order domain.RawMaterialOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "raw material order", id)
	}
	return &order, nil
}

// GetForUpdate locks an order row inside tx
func (r *RawMaterialOrderRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.RawMaterialOrder, error) {
	var order domain.RawMaterialOrder
	if err := lockedFirst(ctx, tx, &order, id); err != nil {
		return nil, notFound(err, "raw material order", id)
	}
	return &order, nil
}

// Update writes the order when its version still matches the one read
func (r *RawMaterialOrderRepository) Update(ctx context.Context, tx *gorm.DB, o *domain.RawMaterialOrder, readVersion int) error {
	columns := ledgerColumns(o.Ledger)
	columns["project_id"] = o.ProjectID
	columns["supplier_name"] = o.SupplierName
	columns["material_name"] = o.MaterialName
	columns["quantity"] = o.Quantity
	columns["unit"] = o.Unit
	columns["unit_price"] = o.UnitPrice
	columns["order_date"] = o.OrderDate
	if err := updateVersioned(ctx, conn(r.db, tx), &domain.RawMaterialOrder{}, o.ID, readVersion, columns); err != nil {
		return err
	}
	o.Version = readVersion + 1
	return nil
}

// List returns a page of orders, newest first
func (r *RawMaterialOrderRepository) List(ctx context.Context, page, pageSize int, filters *RawMaterialOrderFilters) ([]domain.RawMaterialOrder, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)
	query := r.filtered(ctx, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []domain.RawMaterialOrder
	err := query.
		Order("order_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

// ListAll returns every order matching filters
func (r *RawMaterialOrderRepository) ListAll(ctx context.Context, filters *RawMaterialOrderFilters) ([]domain.RawMaterialOrder, error) {
	var orders []domain.RawMaterialOrder
	err := r.filtered(ctx, filters).Find(&orders).Error
	return orders, err
}

func (r *RawMaterialOrderRepository) filtered(ctx context.Context, filters *RawMaterialOrderFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&domain.RawMaterialOrder{})
	if filters == nil {
		return query
	}
	if filters.ProjectID != nil {
		query = query.Where("project_id = ?", *filters.ProjectID)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.Search != "" {
		pattern := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(material_name) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	return query
}
