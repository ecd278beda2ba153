package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// VendorOrderFilters defines filter options for vendor order listing
type VendorOrderFilters struct {
	VendorID      *uuid.UUID
	ProjectID     *uuid.UUID
	PaymentStatus *domain.PaymentStatus
}

// VendorOrderRepository handles orders placed with vendors
type VendorOrderRepository struct {
	db *gorm.DB
}

// NewVendorOrderRepository creates a new vendor order repository instance
func NewVendorOrderRepository(db *gorm.DB) *VendorOrderRepository {
	return &VendorOrderRepository{db: db}
}

// Create inserts an order
func (r *VendorOrderRepository) Create(ctx context.Context, tx *gorm.DB, order *domain.VendorOrder) error {
	return conn(r.db, tx).WithContext(ctx).Create(order).Error
}

// GetByID retrieves a vendor order
func (r *VendorOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.VendorOrder, error) {
	var order domain.VendorOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "vendor order", id)
	}
	return &order, nil
}

// GetForUpdate locks an order row inside tx
func (r *VendorOrderRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.VendorOrder, error) {
	var order domain.VendorOrder
	if err := lockedFirst(ctx, tx, &order, id); err != nil {
		return nil, notFound(err, "vendor order", id)
	}
	return &order, nil
}

// Update writes the order when its version still matches the one read
func (r *VendorOrderRepository) Update(ctx context.Context, tx *gorm.DB, o *domain.VendorOrder, readVersion int) error {
	columns := ledgerColumns(o.Ledger)
	columns["project_id"] = o.ProjectID
	columns["description"] = o.Description
	columns["material_type"] = o.MaterialType
	columns["quantity"] = o.Quantity
	columns["unit"] = o.Unit
	columns["unit_price"] = o.UnitPrice
	columns["order_date"] = o.OrderDate
	if err := updateVersioned(ctx, conn(r.db, tx), &domain.VendorOrder{}, o.ID, readVersion, columns); err != nil {
		return err
	}
	o.Version = readVersion + 1
	return nil
}

// List returns a page of orders, newest first
func (r *VendorOrderRepository) List(ctx context.Context, page, pageSize int, filters *VendorOrderFilters) ([]domain.VendorOrder, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)
	query := r.filtered(r.db.WithContext(ctx), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []domain.VendorOrder
	err := query.
		Order("order_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}

// ListAll returns every order matching filters, reading through tx when given
func (r *VendorOrderRepository) ListAll(ctx context.Context, tx *gorm.DB, filters *VendorOrderFilters) ([]domain.VendorOrder, error) {
	var orders []domain.VendorOrder
	err := r.filtered(conn(r.db, tx).WithContext(ctx), filters).Find(&orders).Error
	return orders, err
}

func (r *VendorOrderRepository) filtered(db *gorm.DB, filters *VendorOrderFilters) *gorm.DB {
	query := db.Model(&domain.VendorOrder{})
	if filters == nil {
		return query
	}
	if filters.VendorID != nil {
		query = query.Where("vendor_id = ?", *filters.VendorID)
	}
	if filters.ProjectID != nil {
		query = query.Where("project_id = ?", *filters.ProjectID)
	}
	if filters.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filters.PaymentStatus)
	}
	return query
}
