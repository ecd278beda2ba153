package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vitneshimmanuvel/dsqaubackend/internal/domain"
)

// VendorFilters defines filter options for vendor listing
type VendorFilters struct {
	Category string
	Search   string
	// WithPending keeps only vendors that are still owed money
	WithPending bool
}

var vendorSortableFields = map[string]string{
	"createdAt":     "created_at",
	"name":          "name",
	"category":      "category",
	"totalAmount":   "total_amount",
	"pendingAmount": "pending_amount",
	"totalOrders":   "total_orders",
}

// VendorRepository handles vendor data access
type VendorRepository struct {
	db *gorm.DB
}

// NewVendorRepository creates a new vendor repository instance
func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// Create inserts a vendor
func (r *VendorRepository) Create(ctx context.Context, vendor *domain.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

// GetByID retrieves a vendor by ID
func (r *VendorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "vendor", id)
	}
	return &vendor, nil
}

// GetForUpdate locks a vendor row inside tx
func (r *VendorRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	if err := lockedFirst(ctx, tx, &vendor, id); err != nil {
		return nil, notFound(err, "vendor", id)
	}
	return &vendor, nil
}

// UpdateProfile saves a vendor's contact details
func (r *VendorRepository) UpdateProfile(ctx context.Context, vendor *domain.Vendor) error {
	return r.db.WithContext(ctx).
		Model(&domain.Vendor{}).
		Where("id = ?", vendor.ID).
		Updates(map[string]interface{}{
			"name":           vendor.Name,
			"contact_person": vendor.ContactPerson,
			"phone":          vendor.Phone,
			"email":          vendor.Email,
			"category":       vendor.Category,
			"address":        vendor.Address,
		}).Error
}

// UpdateCounters stores the vendor's order aggregate. Callers hold the vendor lock.
func (r *VendorRepository) UpdateCounters(ctx context.Context, tx *gorm.DB, vendor *domain.Vendor) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&domain.Vendor{}).
		Where("id = ?", vendor.ID).
		Updates(map[string]interface{}{
			"total_orders":   vendor.TotalOrders,
			"total_amount":   vendor.TotalAmount,
			"pending_amount": vendor.PendingAmount,
			"total_paid":     vendor.TotalPaid,
		}).Error
}

// List returns a page of vendors
func (r *VendorRepository) List(ctx context.Context, page, pageSize int, filters *VendorFilters, sort SortConfig) ([]domain.Vendor, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Vendor{})
	if filters != nil {
		if filters.Category != "" {
			query = query.Where("category = ?", filters.Category)
		}
		if filters.Search != "" {
			pattern := "%" + strings.ToLower(filters.Search) + "%"
			query = query.Where("LOWER(name) LIKE ? OR LOWER(contact_person) LIKE ?", pattern, pattern)
		}
		if filters.WithPending {
			query = query.Where("pending_amount > 0")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vendors []domain.Vendor
	err := query.
		Order(BuildOrderClause(sort, vendorSortableFields, "name")).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&vendors).Error
	return vendors, total, err
}
